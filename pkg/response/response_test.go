package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/plateup-dev/plateup/pkg/errors"
)

func record(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fn(c)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestSuccessEnvelope(t *testing.T) {
	rec, body := record(t, func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "abc"})
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorEnvelopeFromAppError(t *testing.T) {
	rec, body := record(t, func(c *gin.Context) {
		Error(c, appErrors.ErrEmailTaken)
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, body.Success)
	require.Equal(t, "EMAIL_TAKEN", body.Error.Code)
}

func TestErrorEnvelopeFromPlainError(t *testing.T) {
	rec, body := record(t, func(c *gin.Context) {
		Error(c, errors.New("boom"))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.Code)
	// Internal details must not leak to clients.
	require.NotContains(t, body.Error.Message, "boom")
}
