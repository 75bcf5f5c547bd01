package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrSigningDisabled  = errors.New("signing disabled: no key configured")
)

// Signer produces HMAC-SHA256 signatures over decision responses so callers
// can check a response was issued by this engine.
type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

// NewSigner returns nil for an empty key. A nil Signer signs nothing and
// verifies nothing.
func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if secretKey == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (s *Signer) Enabled() bool {
	return s != nil
}

func (s *Signer) Sign(data []byte) string {
	if s == nil {
		return ""
	}
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(data []byte, signature string) error {
	if s == nil {
		return ErrSigningDisabled
	}
	expected := s.Sign(data)

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		s.logger.Warn("Signature verification failed", slog.Int("body_bytes", len(data)))
		return ErrInvalidSignature
	}
	return nil
}

// SignDecision binds the decision id to the encoded response body.
func (s *Signer) SignDecision(decisionID string, body []byte) string {
	return s.Sign(decisionPayload(decisionID, body))
}

func (s *Signer) VerifyDecision(decisionID string, body []byte, signature string) error {
	if err := s.Verify(decisionPayload(decisionID, body), signature); err != nil {
		return fmt.Errorf("decision %s: %w", decisionID, err)
	}
	return nil
}

func decisionPayload(decisionID string, body []byte) []byte {
	payload := make([]byte, 0, len(decisionID)+1+len(body))
	payload = append(payload, decisionID...)
	payload = append(payload, ':')
	return append(payload, body...)
}
