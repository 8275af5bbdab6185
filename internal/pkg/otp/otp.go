// Package otp issues six-digit one-time passcodes.
package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	minCode = 100000
	maxCode = 999999
)

// Generator draws codes uniformly from [100000, 999999].
type Generator struct {
	src io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{src: rand.Reader}
}

// Next returns a fresh code. The leading digit is never zero.
func (g *Generator) Next() (string, error) {
	n, err := rand.Int(g.src, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+minCode), nil
}
