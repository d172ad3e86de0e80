// Package sign produces and checks detached OpenPGP signatures of BOM documents.
//
// Signatures are ASCII-armored and written next to the document with an
// ".asc" suffix, the layout used by Maven repositories.
package sign

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Extension is appended to a document path to name its signature file.
const Extension = ".asc"

// Sentinel errors for signing.
var (
	// ErrNoKeys indicates a key file holds no usable keys.
	ErrNoKeys = errors.New("no keys found")

	// ErrNoPrivateKey indicates a keyring has no entity able to sign.
	ErrNoPrivateKey = errors.New("no private key found")

	// ErrBadSignature indicates a signature does not match the document or keyring.
	ErrBadSignature = errors.New("signature verification failed")
)

// ReadKeyFile reads an armored or binary keyring.
func ReadKeyFile(path string) (openpgp.EntityList, error) {
	//nolint:gosec // G304: key path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	return ReadKeyRing(data)
}

// ReadKeyRing parses armored keyring data, falling back to the binary form.
func ReadKeyRing(data []byte) (openpgp.EntityList, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}
	if len(entities) == 0 {
		return nil, ErrNoKeys
	}
	return entities, nil
}

// Signer signs documents with one private key.
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner picks the first entity of keyring that carries a private key and
// decrypts it with passphrase when it is protected.
func NewSigner(keyring openpgp.EntityList, passphrase []byte) (*Signer, error) {
	for _, e := range keyring {
		if e.PrivateKey == nil {
			continue
		}
		if e.PrivateKey.Encrypted {
			if err := e.DecryptPrivateKeys(passphrase); err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
		}
		return &Signer{entity: e}, nil
	}
	return nil, ErrNoPrivateKey
}

// KeyID returns the upper-case hex ID of the signing key.
func (s *Signer) KeyID() string {
	return s.entity.PrimaryKey.KeyIdString()
}

// Sign writes an armored detached signature of message to w.
func (s *Signer) Sign(w io.Writer, message io.Reader) error {
	if err := openpgp.ArmoredDetachSign(w, s.entity, message, nil); err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	return nil
}

// SignFile signs the file at path and writes the signature to path+Extension.
// It returns the signature path.
func (s *Signer) SignFile(path string) (string, error) {
	//nolint:gosec // G304: path is the document just written by the generator
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var sig bytes.Buffer
	if err := s.Sign(&sig, f); err != nil {
		return "", err
	}

	sigPath := path + Extension
	if err := os.WriteFile(sigPath, sig.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", sigPath, err)
	}
	return sigPath, nil
}

// Verify checks an armored detached signature of message against keyring and
// returns the signing entity.
func Verify(keyring openpgp.KeyRing, message, signature io.Reader) (*openpgp.Entity, error) {
	signer, err := openpgp.CheckArmoredDetachedSignature(keyring, message, signature, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
	}
	return signer, nil
}

// VerifyFile checks the signature at path+Extension for the file at path.
func VerifyFile(keyring openpgp.KeyRing, path string) (*openpgp.Entity, error) {
	//nolint:gosec // G304: path is supplied by the operator
	doc, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer doc.Close()

	sigPath := path + Extension
	//nolint:gosec // G304: derived from path
	sig, err := os.Open(sigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", sigPath, err)
	}
	defer sig.Close()

	return Verify(keyring, doc, sig)
}
