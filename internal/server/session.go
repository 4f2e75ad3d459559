package server

import "github.com/google/uuid"

// GenerateViewerID creates a unique viewer ID.
func GenerateViewerID() string {
	return uuid.NewString()
}
