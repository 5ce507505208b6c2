package webhook

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tracksync/internal/application/webhook/usecases"
	"github.com/orris-inc/tracksync/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/tracksync/internal/shared/errors"
)

type mockProcessEventUC struct {
	err error
	got usecases.ProcessEventCommand
}

func (m *mockProcessEventUC) Execute(_ context.Context, cmd usecases.ProcessEventCommand) error {
	m.got = cmd
	return m.err
}

func TestHandler_HandleLinear(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantSuccess bool
		wantType    string
	}{
		{"processed", nil, http.StatusOK, true, ""},
		{"auth failure is rejected", errors.NewWebhookAuthError("invalid webhook authentication"), http.StatusUnauthorized, false, "webhook_auth_failed"},
		{"malformed payload is acknowledged", errors.NewValidationError("malformed webhook payload"), http.StatusOK, false, "validation_error"},
		{"store failure is acknowledged", errors.NewInternalError("failed to process webhook event"), http.StatusOK, false, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockProcessEventUC{err: tt.err}
			h := NewHandler(uc, testutil.NewMockLogger())

			body := []byte(`{"type":"Issue","action":"update","data":{"id":"lin-1"}}`)
			c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/webhooks/linear", body)
			c.Request.Header.Set("Authorization", "Bearer tok")
			c.Request.Header.Set("Linear-Signature", "sha256=abc")
			c.Request.Header.Set("Linear-Delivery", "d-1")

			h.HandleLinear(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantType != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantType, resp.Error.Type)
			}

			assert.Equal(t, body, uc.got.Body, "the raw body reaches signature verification untouched")
			assert.Equal(t, "Bearer tok", uc.got.Authorization)
			assert.Equal(t, "sha256=abc", uc.got.Signature)
			assert.Equal(t, "d-1", uc.got.DeliveryID)
		})
	}
}

func TestHandler_HandleLinear_OversizedBody(t *testing.T) {
	uc := &mockProcessEventUC{}
	h := NewHandler(uc, testutil.NewMockLogger())

	body := append([]byte(`{"type":"Issue","data":{"description":"`), bytes.Repeat([]byte("x"), maxBodyBytes)...)
	c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/webhooks/linear", body)
	c.Request.Header.Set("Linear-Signature", "sha256=abc")

	h.HandleLinear(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Contains(t, resp.Error.Message, "too large")
	assert.Nil(t, uc.got.Body, "a truncated body never reaches signature verification")
}
