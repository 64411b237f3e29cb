package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Verifier authenticates webhook bodies with an HMAC-SHA256 over the
// compact serialization of the body's data object, hex encoded.
type Verifier struct {
	Secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{Secret: []byte(secret)}
}

// Sign returns the signature the provider sends for the given data object.
func (v *Verifier) Sign(data []byte) (string, error) {
	var canonical bytes.Buffer
	if err := json.Compact(&canonical, data); err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, v.Secret)
	mac.Write(canonical.Bytes())
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// SignBody signs the data object of a full webhook body.
func (v *Verifier) SignBody(body []byte) (string, error) {
	data, err := RawData(body)
	if err != nil {
		return "", err
	}
	return v.Sign(data)
}

func (v *Verifier) Verify(body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	if len(v.Secret) == 0 {
		return ErrInvalidSignature
	}

	provided, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return ErrInvalidSignature
	}

	data, err := RawData(body)
	if err != nil {
		return err
	}

	expected, err := v.Sign(data)
	if err != nil {
		return ErrMalformedEvent
	}
	want, _ := hex.DecodeString(expected)

	if !hmac.Equal(want, provided) {
		return ErrInvalidSignature
	}
	return nil
}
