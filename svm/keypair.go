package svm

// This file contains the ed25519 signer abstraction used to authorize
// units of work.

import (
	"crypto/ed25519"

	"github.com/hdevalence/ed25519consensus"
)

const (
	// PrivateKeyLen is seed|publicKey, matching crypto/ed25519.
	PrivateKeyLen = ed25519.PrivateKeySize
	SignatureLen  = ed25519.SignatureSize
)

// Keypair holds an ed25519 private key and addresses accounts by its
// public half.
type Keypair struct {
	priv [PrivateKeyLen]byte
}

// NewKeypair generates a fresh random keypair.
func NewKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	kp := &Keypair{}
	copy(kp.priv[:], priv)
	return kp, nil
}

// Pubkey returns the public key half. The public key is the last 32
// bytes of the private key.
func (k *Keypair) Pubkey() Pubkey {
	var p Pubkey
	copy(p[:], k.priv[ed25519.SeedSize:])
	return p
}

// Sign returns a signature over msg.
func (k *Keypair) Sign(msg []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(k.priv[:], msg))
	return sig
}

// Verify reports whether s is a valid signature of msg by p. ZIP-215
// verification keeps acceptance criteria identical across
// implementations.
func Verify(msg []byte, p Pubkey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}
