package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.NotEmpty(t, id)

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, id, other)

	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"solaris"}`))
		var p payload
		require.NoError(t, DecodeJSON(req, &p))
		assert.Equal(t, "solaris", p.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})

	t.Run("trailing garbage", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type form struct {
		Email string `validate:"required,email"`
	}

	assert.NoError(t, ValidateRequest(form{Email: "a@b.co"}))
	assert.Error(t, ValidateRequest(form{Email: "nope"}))
}

type selfValidating struct {
	OK bool
}

func (s selfValidating) Validate() error {
	if !s.OK {
		return assert.AnError
	}
	return nil
}

func TestValidateRequestCustomValidator(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(selfValidating{OK: true}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{OK: false}), assert.AnError)
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusNotFound, "book not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "book not found")
	assert.Contains(t, rec.Body.String(), GetTraceID(ctx))
}
