package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleClientExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req paddleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"aW1n"}, req.Images)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[[{"text":"WORK PERMIT","confidence":0.99},{"text":"work permit","confidence":0.9},{"text":" FIN G1234567N ","confidence":0.95}]]}`))
	}))
	defer srv.Close()

	text, err := NewPaddleClient(srv.URL, nil).ExtractText(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "WORK PERMIT\nFIN G1234567N", text)
}

func TestPaddleClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Write([]byte(`{"results":[]}`))
			return
		}
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewPaddleClient(srv.URL, nil).ExtractText(context.Background(), []byte("img"))
	assert.ErrorContains(t, err, "status 503")

	_, err = NewPaddleClient(srv.URL+"/empty", nil).ExtractText(context.Background(), []byte("img"))
	assert.ErrorContains(t, err, "no text")
}
