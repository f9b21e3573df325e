// Package id generates book identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length of a book id. NanoIDs use a URL-safe alphabet, so ids can be used
// as path segments without escaping.
const Length = 16

// New returns a fresh NanoID of Length characters.
func New() (string, error) {
	v, err := gonanoid.New(Length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return v, nil
}
