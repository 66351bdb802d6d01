package staging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// contentCipher protects staged content at rest.
type contentCipher interface {
	seal(data []byte) ([]byte, error)
	open(data []byte) ([]byte, error)
}

type plaintext struct{}

func (plaintext) seal(data []byte) ([]byte, error) { return data, nil }
func (plaintext) open(data []byte) ([]byte, error) { return data, nil }

// ageCipher encrypts staged content with an X25519 identity kept on the local
// host. Staged files never leave the machine, so the identity is stored
// unencrypted with 0600 permissions.
type ageCipher struct {
	identity *age.X25519Identity
}

// loadOrCreateIdentity reads the identity at keyPath, generating one if the
// file does not exist.
func loadOrCreateIdentity(keyPath string) (*ageCipher, error) {
	data, err := os.ReadFile(keyPath)
	if errors.Is(err, os.ErrNotExist) {
		return createIdentity(keyPath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading staging key: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing staging key: %w", err)
	}
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			return &ageCipher{identity: x}, nil
		}
	}
	return nil, fmt.Errorf("no X25519 identity found in %s", keyPath)
}

func createIdentity(keyPath string) (*ageCipher, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating staging key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing staging key: %w", err)
	}
	return &ageCipher{identity: identity}, nil
}

func (c *ageCipher) seal(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, c.identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *ageCipher) open(data []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), c.identity)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}
	return out, nil
}
