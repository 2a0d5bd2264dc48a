package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath, gotAuth, gotContentType string
		var gotBody []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)

			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		c := New(srv.URL, "https://cdn.example.com", "secret")

		url, err := c.Upload(context.Background(), []byte("payload"), "receipt.PNG", "image/png", "receipts")

		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", gotAuth)
		assert.Equal(t, "image/png", gotContentType)
		assert.Equal(t, []byte("payload"), gotBody)

		// Object names are random but keep the lowercased extension.
		assert.True(t, strings.HasPrefix(gotPath, "/receipts/"))
		assert.True(t, strings.HasSuffix(gotPath, ".png"))
		assert.Equal(t, "https://cdn.example.com"+gotPath, url)
	})

	t.Run("PublicBaseDefaultsToBase", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := New(srv.URL, "", "")

		url, err := c.Upload(context.Background(), []byte("payload"), "proof.jpg", "image/jpeg", "expense-images")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, srv.URL+"/expense-images/"))
	})

	t.Run("UpstreamFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		c := New(srv.URL, "", "bad-token")

		url, err := c.Upload(context.Background(), []byte("payload"), "receipt.png", "image/png", "receipts")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Empty(t, url)
	})
}
