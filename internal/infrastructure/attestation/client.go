package attestation

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"

	"ZipTales/internal/metrics"
	"ZipTales/internal/ports"
)

const defaultCacheSize = 1024

// Client asks an attestation gateway whether a news hash has been recorded on chain.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	cache    *lru.Cache[string, bool]
}

var _ ports.Attestor = (*Client)(nil)

// NewClient creates a reusable HTTP client. Positive answers are memoized in an LRU of cacheSize entries.
func NewClient(endpoint, apiKey string, timeout time.Duration, cacheSize int) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, _ := lru.New[string, bool](cacheSize)

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
	}
}

// NewsHash is the keccak256 of the UTF-8 content, hex encoded with a 0x prefix.
func NewsHash(content string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(content))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// IsAttested reports whether the gateway knows the content hash. A 404 means "not attested".
func (c *Client) IsAttested(ctx context.Context, content string) (bool, error) {
	if c == nil || c.endpoint == "" {
		return false, nil
	}

	hash := NewsHash(content)
	if verified, ok := c.cache.Get(hash); ok {
		metrics.RecordAttestation("cached")
		return verified, nil
	}

	verified, err := c.lookup(ctx, hash)
	if err != nil {
		metrics.RecordAttestation("error")
		return false, err
	}
	if verified {
		metrics.RecordAttestation("attested")
	} else {
		metrics.RecordAttestation("absent")
	}

	// Attestations are append-only on chain, so only positive answers are stable.
	if verified {
		c.cache.Add(hash, true)
	}
	return verified, nil
}

func (c *Client) lookup(ctx context.Context, hash string) (bool, error) {
	target := fmt.Sprintf("%s/news/%s/verified", c.endpoint, url.PathEscape(hash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return body.Verified, nil
}
