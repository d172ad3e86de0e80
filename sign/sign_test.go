package sign

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func newEntity(t *testing.T, name string) *openpgp.Entity {
	t.Helper()
	e, err := openpgp.NewEntity(name, "test", name+"@example.com", nil)
	if err != nil {
		t.Fatalf("NewEntity() error = %v", err)
	}
	return e
}

func armorPrivate(t *testing.T, e *openpgp.Entity, encrypted bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if encrypted {
		err = e.SerializePrivateWithoutSigning(w, nil)
	} else {
		err = e.SerializePrivate(w, nil)
	}
	if err != nil {
		t.Fatalf("serialize private key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func armorPublic(t *testing.T, e *openpgp.Entity) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Serialize(w); err != nil {
		t.Fatalf("serialize public key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSignFile_RoundTrip(t *testing.T) {
	e := newEntity(t, "release")
	dir := t.TempDir()

	keyPath := filepath.Join(dir, "key.asc")
	if err := os.WriteFile(keyPath, armorPrivate(t, e, false), 0o600); err != nil {
		t.Fatal(err)
	}
	keyring, err := ReadKeyFile(keyPath)
	if err != nil {
		t.Fatalf("ReadKeyFile() error = %v", err)
	}
	signer, err := NewSigner(keyring, nil)
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	if signer.KeyID() != e.PrimaryKey.KeyIdString() {
		t.Errorf("KeyID() = %s, want %s", signer.KeyID(), e.PrimaryKey.KeyIdString())
	}

	doc := filepath.Join(dir, "bom.xml")
	if err := os.WriteFile(doc, []byte("<bom/>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sigPath, err := signer.SignFile(doc)
	if err != nil {
		t.Fatalf("SignFile() error = %v", err)
	}
	if sigPath != doc+Extension {
		t.Errorf("SignFile() path = %s, want %s", sigPath, doc+Extension)
	}
	sig, _ := os.ReadFile(sigPath)
	if !strings.HasPrefix(string(sig), "-----BEGIN PGP SIGNATURE-----") {
		t.Errorf("signature is not armored: %q", sig)
	}

	pub, err := ReadKeyRing(armorPublic(t, e))
	if err != nil {
		t.Fatalf("ReadKeyRing(public) error = %v", err)
	}
	got, err := VerifyFile(pub, doc)
	if err != nil {
		t.Fatalf("VerifyFile() error = %v", err)
	}
	if got.PrimaryKey.KeyId != e.PrimaryKey.KeyId {
		t.Error("VerifyFile() returned a different signer")
	}

	if err := os.WriteFile(doc, []byte("<bom>tampered</bom>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyFile(pub, doc); !errors.Is(err, ErrBadSignature) {
		t.Errorf("VerifyFile() after tampering error = %v, want ErrBadSignature", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	signer, err := NewSigner(openpgp.EntityList{newEntity(t, "a")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var sig bytes.Buffer
	if err := signer.Sign(&sig, strings.NewReader("content")); err != nil {
		t.Fatal(err)
	}

	other := openpgp.EntityList{newEntity(t, "b")}
	if _, err := Verify(other, strings.NewReader("content"), &sig); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify() error = %v, want ErrBadSignature", err)
	}
}

func TestNewSigner_Passphrase(t *testing.T) {
	e := newEntity(t, "protected")
	if err := e.EncryptPrivateKeys([]byte("secret"), nil); err != nil {
		t.Fatal(err)
	}
	data := armorPrivate(t, e, true)

	keyring, err := ReadKeyRing(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSigner(keyring, []byte("wrong")); err == nil {
		t.Error("NewSigner() with wrong passphrase expected error")
	}

	keyring, err = ReadKeyRing(data)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := NewSigner(keyring, []byte("secret"))
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	var sig bytes.Buffer
	if err := signer.Sign(&sig, strings.NewReader("content")); err != nil {
		t.Errorf("Sign() error = %v", err)
	}
}

func TestNewSigner_PublicOnly(t *testing.T) {
	pub, err := ReadKeyRing(armorPublic(t, newEntity(t, "pub")))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSigner(pub, nil); !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("NewSigner() error = %v, want ErrNoPrivateKey", err)
	}
}

func TestReadKeyRing_Invalid(t *testing.T) {
	if _, err := ReadKeyRing([]byte("not a key")); err == nil {
		t.Error("ReadKeyRing() expected error")
	}
	if _, err := ReadKeyFile(filepath.Join(t.TempDir(), "missing.asc")); err == nil {
		t.Error("ReadKeyFile() of missing file expected error")
	}
}
