package bom

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// ErrDigestMismatch is returned when a document no longer matches its recorded digest.
var ErrDigestMismatch = errors.New("document digest mismatch")

// Digest returns the sha256 content digest of encoded document bytes.
func Digest(data []byte) digest.Digest {
	return digest.FromBytes(data)
}

// VerifyDigest reports whether the file at path still has digest d.
func VerifyDigest(path string, d digest.Digest) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid digest %q: %w", d, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	verifier := d.Verifier()
	if _, err := io.Copy(verifier, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !verifier.Verified() {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, path)
	}
	return nil
}
