// Package codegen produces random short codes for links.
// Generators should be safe for concurrent use.
package codegen

import (
	"crypto/rand"
	"errors"
	"io"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// maxUnbiased is the largest multiple of len(alphabet) that fits in a byte.
	// Bytes at or above it are discarded so every character is equally likely.
	maxUnbiased = 256 - (256 % len(alphabet))
)

// Generator generates short codes of a given length.
type Generator interface {
	Generate(length int) (string, error)
}

type base62Generator struct {
	src io.Reader
}

// NewBase62 returns a Generator drawing from crypto/rand.
func NewBase62() Generator {
	return &base62Generator{src: rand.Reader}
}

// NewBase62From returns a Generator drawing from src. Intended for tests.
func NewBase62From(src io.Reader) Generator {
	return &base62Generator{src: src}
}

// Generate returns a random base62 string of exactly length characters.
func (g *base62Generator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(out) < length {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
