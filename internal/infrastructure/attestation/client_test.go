package attestation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsHash(t *testing.T) {
	// keccak256("") is a well-known constant.
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", NewsHash(""))
	assert.Len(t, NewsHash("hello"), 66)
	assert.Equal(t, NewsHash("hello"), NewsHash("hello"))
}

func TestClient_IsAttested(t *testing.T) {
	attested := NewsHash("recorded article")
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		switch {
		case strings.Contains(r.URL.Path, attested):
			_, _ = w.Write([]byte(`{"verified": true}`))
		case strings.Contains(r.URL.Path, NewsHash("pending article")):
			_, _ = w.Write([]byte(`{"verified": false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "secret", time.Second, 8)
	ctx := context.Background()

	ok, err := c.IsAttested(ctx, "recorded article")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsAttested(ctx, "recorded article")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), calls.Load(), "positive answers are cached")

	ok, err = c.IsAttested(ctx, "pending article")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.IsAttested(ctx, "never seen")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, NewsHash("slow")) {
			time.Sleep(200 * time.Millisecond)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 50*time.Millisecond, 0)

	_, err := c.IsAttested(context.Background(), "broken")
	assert.ErrorContains(t, err, "unexpected status")

	_, err = c.IsAttested(context.Background(), "slow")
	assert.Error(t, err)
}

func TestClient_Disabled(t *testing.T) {
	var nilClient *Client
	ok, err := nilClient.IsAttested(context.Background(), "x")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewClient("", "", 0, 0).IsAttested(context.Background(), "x")
	assert.NoError(t, err)
	assert.False(t, ok)
}
