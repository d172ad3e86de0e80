// Package hashing computes the fixed set of content digests recorded for every
// component in a BOM.
//
// The algorithm list is stable: every successful call returns exactly one [Hash] per
// entry of [Algorithms], in that order, with lower-case hex values. The names match the
// CycloneDX hash-alg enumeration.
package hashing

import (
	"bytes"
	"crypto/md5"  //nolint:gosec // MD5 is part of the recorded digest set, not used for security
	"crypto/sha1" //nolint:gosec // SHA-1 is part of the recorded digest set, not used for security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// Algorithm names a digest algorithm using CycloneDX spelling.
type Algorithm string

// Supported algorithms.
const (
	MD5     Algorithm = "MD5"
	SHA1    Algorithm = "SHA-1"
	SHA256  Algorithm = "SHA-256"
	SHA384  Algorithm = "SHA-384"
	SHA512  Algorithm = "SHA-512"
	SHA3256 Algorithm = "SHA3-256"
	SHA3384 Algorithm = "SHA3-384"
	SHA3512 Algorithm = "SHA3-512"
)

// Algorithms is the fixed, ordered list of digests computed by File and Reader.
var Algorithms = []Algorithm{MD5, SHA1, SHA256, SHA384, SHA512, SHA3256, SHA3384, SHA3512}

// Hash is a single (algorithm, hex digest) pair.
type Hash struct {
	Algorithm Algorithm
	Value     string
}

func newHash(alg Algorithm) hash.Hash {
	switch alg {
	case MD5:
		return md5.New() //nolint:gosec
	case SHA1:
		return sha1.New() //nolint:gosec
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	case SHA3256:
		return sha3.New256()
	case SHA3384:
		return sha3.New384()
	case SHA3512:
		return sha3.New512()
	default:
		panic(fmt.Sprintf("hashing: unsupported algorithm %q", alg))
	}
}

// File reads the file at path once and returns its digests.
// On any I/O failure it returns an error and no hashes.
func File(path string) ([]Hash, error) {
	//nolint:gosec // G304: path comes from the resolved build graph
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	hashes, err := Reader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hashes, nil
}

// Reader consumes r and returns its digests.
func Reader(r io.Reader) ([]Hash, error) {
	digesters := make([]hash.Hash, len(Algorithms))
	writers := make([]io.Writer, len(Algorithms))
	for i, alg := range Algorithms {
		digesters[i] = newHash(alg)
		writers[i] = digesters[i]
	}

	if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
		return nil, err
	}

	hashes := make([]Hash, len(Algorithms))
	for i, alg := range Algorithms {
		hashes[i] = Hash{Algorithm: alg, Value: hex.EncodeToString(digesters[i].Sum(nil))}
	}
	return hashes, nil
}

// Bytes returns the digests of data.
func Bytes(data []byte) []Hash {
	// Writes to hash.Hash never fail.
	hashes, _ := Reader(bytes.NewReader(data))
	return hashes
}
