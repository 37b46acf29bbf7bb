package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_Defaults(t *testing.T) {
	rw := Wrap(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.StatusCode())
	assert.Zero(t, rw.BytesWritten())
	assert.False(t, rw.WroteHeader())
}

func TestWrap_Idempotent(t *testing.T) {
	rw := Wrap(httptest.NewRecorder())
	assert.Same(t, rw, Wrap(rw))
}

func TestResponseWriter_Records(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	n, err := rw.Write([]byte(`{"success":true}`))

	assert.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, http.StatusCreated, rw.StatusCode())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 16, rw.BytesWritten())
	assert.True(t, rw.WroteHeader())
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)
	_, _ = rw.Write([]byte("a"))
	_, _ = rw.Write([]byte("bc"))

	assert.Equal(t, http.StatusOK, rw.StatusCode())
	assert.Equal(t, 3, rw.BytesWritten())
}

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)
	rw.Flush()

	assert.True(t, rec.Flushed)
	assert.True(t, rw.WroteHeader())
	assert.Same(t, rec, rw.Unwrap())
}
