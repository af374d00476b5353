// Package signing derives a deterministic Ed25519 key from an operator
// passphrase and produces detached signatures over evidence manifests. The
// same passphrase always yields the same key, so verification needs only the
// passphrase, not a key file.
package signing

import (
	"crypto/ed25519"
	"encoding/hex"

	"golang.org/x/crypto/argon2"

	"aigov/internal/encoding"
	"aigov/internal/errors"
)

// Argon2id parameters. Fixed so key derivation stays reproducible across
// releases.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// keySalt is a domain-separation constant, not a secret.
var keySalt = []byte("aigov-evidence-signing-v1")

// Signer holds a derived Ed25519 keypair.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewSigner derives a keypair from the passphrase.
func NewSigner(passphrase string) (*Signer, error) {
	if passphrase == "" {
		return nil, errors.New(errors.ValidationFailed, "signing passphrase must not be empty")
	}
	seed := argon2.IDKey([]byte(passphrase), keySalt, argonTime, argonMemory, argonThreads, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// PublicKeyHex returns the hex-encoded public key.
func (s *Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.pub)
}

// Signature is the detached signature document written next to the manifest.
type Signature struct {
	Algorithm string `json:"algorithm"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// Sign signs the raw manifest bytes and returns the serialized signature
// document.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	sig := ed25519.Sign(s.priv, data)
	return encoding.Marshal(Signature{
		Algorithm: "ed25519-argon2id",
		PublicKey: s.PublicKeyHex(),
		Signature: hex.EncodeToString(sig),
	})
}

// Verify checks a signature document against the raw manifest bytes using the
// signer's own key. A mismatched public key fails before the signature check.
func (s *Signer) Verify(data []byte, sigDoc Signature) error {
	if sigDoc.PublicKey != s.PublicKeyHex() {
		return errors.New(errors.ValidationFailed, "signature public key does not match passphrase-derived key")
	}
	raw, err := hex.DecodeString(sigDoc.Signature)
	if err != nil {
		return errors.Wrap(errors.ValidationFailed, "decode signature", err)
	}
	if !ed25519.Verify(s.pub, data, raw) {
		return errors.New(errors.ValidationFailed, "signature does not match manifest bytes")
	}
	return nil
}
