package model

import (
	"strings"

	"github.com/google/uuid"
)

// temporaryPrefix marks ids that were never issued by the store.
const temporaryPrefix = "tmp-"

// GenerateID creates a new node id.
func GenerateID() string {
	return uuid.New().String()
}

func newTemporaryID() string {
	return temporaryPrefix + GenerateID()
}

// IsTemporaryID reports whether id belongs to a placeholder node.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, temporaryPrefix)
}
