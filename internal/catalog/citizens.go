package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"citykiller/internal/engine"
)

//go:embed data/citizens.json
var baseDeck []byte

//go:embed data/citizens.schema.json
var deckSchemaJSON string

var deckSchema = jsonschema.MustCompileString("citizens.schema.json", deckSchemaJSON)

var ErrDuplicateCitizen = errors.New("duplicate citizen id")

type deckFile struct {
	Citizens []engine.Citizen `json:"citizens"`
}

// LoadCitizens reads a citizen deck document, validates it against the deck
// schema and returns the cards in file order.
func LoadCitizens(r io.Reader) ([]engine.Citizen, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read citizen deck: %w", err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse citizen deck: %w", err)
	}
	if err := deckSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate citizen deck: %w", err)
	}

	var deck deckFile
	if err := json.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("decode citizen deck: %w", err)
	}

	seen := make(map[int]bool, len(deck.Citizens))
	for _, c := range deck.Citizens {
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCitizen, c.ID)
		}
		seen[c.ID] = true
	}
	return deck.Citizens, nil
}

// BaseCitizens returns the embedded base-game deck.
func BaseCitizens() ([]engine.Citizen, error) {
	return LoadCitizens(bytes.NewReader(baseDeck))
}

// LoadCitizensFile loads a deck from disk.
func LoadCitizensFile(path string) ([]engine.Citizen, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCitizens(f)
}

// Citizens loads the deck at path, or the base deck when path is empty.
func Citizens(path string) ([]engine.Citizen, error) {
	if path == "" {
		return BaseCitizens()
	}
	return LoadCitizensFile(path)
}
