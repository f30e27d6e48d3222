package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a random UUID in canonical form. Auction, bid and
// transaction IDs all come from here.
func GenerateID() string {
	return uuid.NewString()
}
