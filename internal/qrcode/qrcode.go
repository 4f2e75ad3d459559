package qrcode

import (
	"net/url"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// BoardURL is the display link for a table under base, e.g.
// "http://host:8080" -> "http://host:8080/board.html?table=<id>".
func BoardURL(base, tableID string) string {
	q := url.Values{"table": {tableID}}
	return strings.TrimRight(base, "/") + "/board.html?" + q.Encode()
}

// Generate creates a QR code PNG image for the given URL. A non-positive
// size means DefaultSize.
func Generate(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return qr.Encode(link, qr.Medium, size)
}
