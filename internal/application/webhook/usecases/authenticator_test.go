package usecases

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/tracksync/internal/shared/config"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestAuthenticator(t *testing.T) {
	body := []byte(`{"type":"Issue","action":"update","data":{"id":"lin-1"}}`)
	validSig := sign("s3cret", body)

	tests := []struct {
		name          string
		cfg           config.WebhookConfig
		authorization string
		signature     string
		wantErr       bool
	}{
		{"nothing configured accepts", config.WebhookConfig{}, "", "", false},
		{"bearer match", config.WebhookConfig{BearerToken: "tok"}, "Bearer tok", "", false},
		{"bearer scheme is case-insensitive", config.WebhookConfig{BearerToken: "tok"}, "bearer tok", "", false},
		{"bearer mismatch", config.WebhookConfig{BearerToken: "tok"}, "Bearer other", "", true},
		{"bearer missing", config.WebhookConfig{BearerToken: "tok"}, "", "", true},
		{"raw signature", config.WebhookConfig{SigningSecret: "s3cret"}, "", validSig, false},
		{"prefixed signature", config.WebhookConfig{SigningSecret: "s3cret"}, "", "sha256=" + validSig, false},
		{"wrong signature", config.WebhookConfig{SigningSecret: "s3cret"}, "", sign("other", body), true},
		{"non-hex signature", config.WebhookConfig{SigningSecret: "s3cret"}, "", "zz-not-hex", true},
		{"either credential suffices", config.WebhookConfig{BearerToken: "tok", SigningSecret: "s3cret"}, "Bearer nope", validSig, false},
		{"both wrong", config.WebhookConfig{BearerToken: "tok", SigningSecret: "s3cret"}, "Bearer nope", "abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAuthenticator(tt.cfg).Authenticate(tt.authorization, tt.signature, body)
			if tt.wantErr {
				assert.True(t, apperrors.IsWebhookAuthError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAuthenticator_SignatureCoversExactBody(t *testing.T) {
	a := NewAuthenticator(config.WebhookConfig{SigningSecret: "s3cret"})
	body := []byte(`{"a":1}`)
	sig := sign("s3cret", body)

	assert.NoError(t, a.Authenticate("", sig, body))
	assert.Error(t, a.Authenticate("", sig, []byte(`{"a": 1}`)))
}

func TestAuthenticator_Open(t *testing.T) {
	assert.True(t, NewAuthenticator(config.WebhookConfig{BearerToken: "  "}).Open())
	assert.False(t, NewAuthenticator(config.WebhookConfig{SigningSecret: "x"}).Open())
}
