package hashing

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.jar")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestFile_KnownDigests(t *testing.T) {
	path := writeFile(t, "hello")

	hashes, err := File(path)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}

	want := map[Algorithm]string{
		MD5:    "5d41402abc4b2a76b9719d911017c592",
		SHA1:   "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		SHA256: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
	}
	for _, h := range hashes {
		if expected, ok := want[h.Algorithm]; ok && h.Value != expected {
			t.Errorf("%s = %s, want %s", h.Algorithm, h.Value, expected)
		}
	}
}

func TestReader_EmptyInput(t *testing.T) {
	hashes, err := Reader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	for _, h := range hashes {
		if h.Algorithm == SHA3256 && h.Value != "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a" {
			t.Errorf("SHA3-256 of empty input = %s", h.Value)
		}
	}
}

func TestFile_FixedAlgorithmOrder(t *testing.T) {
	hashes, err := File(writeFile(t, "some jar bytes"))
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if len(hashes) != len(Algorithms) {
		t.Fatalf("got %d hashes, want %d", len(hashes), len(Algorithms))
	}
	for i, alg := range Algorithms {
		if hashes[i].Algorithm != alg {
			t.Errorf("hashes[%d].Algorithm = %s, want %s", i, hashes[i].Algorithm, alg)
		}
		if hashes[i].Value == "" || strings.ToLower(hashes[i].Value) != hashes[i].Value {
			t.Errorf("hashes[%d].Value = %q, want lower-case hex", i, hashes[i].Value)
		}
	}
}

func TestFile_Deterministic(t *testing.T) {
	path := writeFile(t, "repeatable content")

	first, err := File(path)
	if err != nil {
		t.Fatalf("first File() error = %v", err)
	}
	second, err := File(path)
	if err != nil {
		t.Fatalf("second File() error = %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("digest %s differs between runs: %s vs %s", first[i].Algorithm, first[i].Value, second[i].Value)
		}
	}

	if got := Bytes([]byte("repeatable content")); got[0] != first[0] {
		t.Errorf("Bytes() = %v, want %v", got[0], first[0])
	}
}

func TestFile_Missing(t *testing.T) {
	hashes, err := File(filepath.Join(t.TempDir(), "missing.jar"))
	if err == nil {
		t.Fatal("File() on missing file should fail")
	}
	if hashes != nil {
		t.Errorf("File() returned partial result %v", hashes)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v should wrap fs.ErrNotExist", err)
	}
}

func TestFile_Directory(t *testing.T) {
	if _, err := File(t.TempDir()); err == nil {
		t.Error("File() on a directory should fail")
	}
}
