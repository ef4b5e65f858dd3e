package cek

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// SignatureHeader is the request header carrying the platform's signature
// over the raw request body. API Gateway lowercases it.
const SignatureHeader = "signaturecek"

// Verifier checks the platform's RSA-SHA256 signature on inbound requests.
type Verifier struct {
	key *rsa.PublicKey
}

// NewVerifier parses a PEM-encoded RSA public key. The key is published by
// the platform and supplied through configuration, not baked in.
func NewVerifier(pemKey []byte) (*Verifier, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("cek: no PEM block in public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		// Older key material may be PKCS#1 encoded.
		if rsaPub, rsaErr := x509.ParsePKCS1PublicKey(block.Bytes); rsaErr == nil {
			return &Verifier{key: rsaPub}, nil
		}
		return nil, fmt.Errorf("cek: parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("cek: public key is not RSA")
	}
	return &Verifier{key: rsaPub}, nil
}

// Verify checks the base64 signature against the raw request body. Any
// failure, decode or crypto, means the request must be rejected.
func (v *Verifier) Verify(signatureB64 string, body []byte) error {
	if v == nil || v.key == nil {
		return errors.New("cek: verifier not initialized")
	}
	if signatureB64 == "" {
		return errors.New("cek: missing signature")
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("cek: decode signature: %w", err)
	}

	digest := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(v.key, crypto.SHA256, digest[:], sig); err != nil {
		return fmt.Errorf("cek: signature mismatch: %w", err)
	}
	return nil
}
