// Package shortcode generates the random tokens used as short codes.
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet holds the characters a short code is built from. Only
// alphanumerics are used so a code never needs escaping in a path.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	MinLength = 7
	MaxLength = 14
)

// Generator produces short codes of a fixed length. It does not check
// uniqueness; the store rejects duplicates on insert.
type Generator struct {
	length int
}

func NewGenerator(length int) (*Generator, error) {
	const op = "shortcode.NewGenerator"

	if length < MinLength || length > MaxLength {
		return nil, fmt.Errorf("%s: length must be between %d and %d, got %d", op, MinLength, MaxLength, length)
	}

	return &Generator{length: length}, nil
}

func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}
