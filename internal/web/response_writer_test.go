package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriter_WriteHeader(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)
	rw.WriteHeader(http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rw.Status())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, rw.Written())
}

func TestResponseWriter_WriteHeader_HTMX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		code       int
		underlying int
	}{
		{"200 stays 200", http.StatusOK, http.StatusOK},
		{"303 stays 303", http.StatusSeeOther, http.StatusSeeOther},
		{"404 becomes 200", http.StatusNotFound, http.StatusOK},
		{"422 becomes 200", http.StatusUnprocessableEntity, http.StatusOK},
		{"500 becomes 200", http.StatusInternalServerError, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			rw := NewResponseWriter(w, true)
			rw.WriteHeader(tt.code)

			assert.Equal(t, tt.code, rw.Status())
			assert.Equal(t, tt.underlying, w.Code)
		})
	}
}

func TestResponseWriter_WriteHeader_OnlyOnce(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)
	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusCreated, rw.Status())
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestResponseWriter_Write(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), rw.Size())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestResponseWriter_OnBeforeWrite(t *testing.T) {
	t.Parallel()

	t.Run("hooks run in order before the header", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		rw := NewResponseWriter(w, false)
		var order []int
		rw.OnBeforeWrite(func() {
			order = append(order, 1)
			rw.Header().Set("X-Hook", "yes")
		})
		rw.OnBeforeWrite(func() { order = append(order, 2) })

		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("x"))

		assert.Equal(t, []int{1, 2}, order)
		assert.Equal(t, "yes", w.Header().Get("X-Hook"))
	})

	t.Run("hooks run on implicit write", func(t *testing.T) {
		t.Parallel()

		rw := NewResponseWriter(httptest.NewRecorder(), false)
		called := 0
		rw.OnBeforeWrite(func() { called++ })

		_, _ = rw.Write([]byte("a"))
		_, _ = rw.Write([]byte("b"))
		assert.Equal(t, 1, called)
	})

	t.Run("late hooks are dropped", func(t *testing.T) {
		t.Parallel()

		rw := NewResponseWriter(httptest.NewRecorder(), false)
		rw.WriteHeader(http.StatusOK)
		called := false
		rw.OnBeforeWrite(func() { called = true })
		_, _ = rw.Write([]byte("a"))
		assert.False(t, called)
	})
}

func TestResponseWriter_Unwrap(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)
	assert.Same(t, w, rw.Unwrap())

	rw.Flush()
	assert.True(t, w.Flushed)
}

func TestResponseWriter_Tee(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w, false)
	var copied strings.Builder
	rw.Tee(&copied)

	_, _ = rw.Write([]byte("cached "))
	_, _ = rw.Write([]byte("page"))
	assert.Equal(t, "cached page", copied.String())
	assert.Equal(t, "cached page", w.Body.String())
}
