// Package apikey generates the signing credential pair used for join tokens.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	keyBytes    = 9
	secretBytes = 32
)

// Run generates an API key/secret pair and writes exports.
func Run(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	key := make([]byte, keyBytes)
	if _, err := io.ReadFull(reader, key); err != nil {
		return fmt.Errorf("generate api key: %w", err)
	}
	secret := make([]byte, secretBytes)
	if _, err := io.ReadFull(reader, secret); err != nil {
		return fmt.Errorf("generate api secret: %w", err)
	}

	if _, err := fmt.Fprintf(out, "export GATHER_SPACE_LIVEKIT_API_KEY=API%s\n", base64.RawURLEncoding.EncodeToString(key)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export GATHER_SPACE_LIVEKIT_API_SECRET=%s\n", base64.RawURLEncoding.EncodeToString(secret)); err != nil {
		return err
	}
	return nil
}
