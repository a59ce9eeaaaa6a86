package phoneauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
)

// ErrNotSignedIn is returned by record calls made without an identity.
var ErrNotSignedIn = errors.New("phoneauth: not signed in")

// SDKClient talks to the identity service. It implements IdentityProvider,
// AuthStateSource, ChallengeRenderer and RecordStore.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     *slog.Logger

	authMu      sync.Mutex
	current     *Identity
	confirmed   *Identity
	resolved    bool
	resolveOnce sync.Once
	subs        map[*authSubscriber]struct{}
}

// NewSDKClient builds a client. tokens may be nil for an in-memory store.
func NewSDKClient(baseURL string, tokens TokenStore) *SDKClient {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Tokens: tokens,
		Logger: slog.Default(),
		subs:   make(map[*authSubscriber]struct{}),
	}
}

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

func (c *SDKClient) do(ctx context.Context, method, path, token string, body any, headers map[string]string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON reads the body and decodes it into target when the status is
// expectedStatus. Otherwise it returns a *ServiceError, or an *APIError when
// the body is not a service error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, body)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseErrorResponse(status int, body []byte) error {
	if se, ok := decodeServiceError(status, body); ok {
		return se
	}
	return &APIError{StatusCode: status, Body: string(body)}
}

// providerError files a send or confirm failure under a ProviderKind.
func providerError(err error) error {
	var se *ServiceError
	if !errors.As(err, &se) {
		return &ProviderError{Kind: Unavailable, Err: err}
	}
	kind := Unavailable
	switch se.Code {
	case CodeRateLimited:
		kind = RateLimited
	case CodeInvalidPhone:
		kind = InvalidPhone
	case CodeChallengeRejected:
		kind = ChallengeRejected
	case CodeInvalidCode:
		kind = InvalidCode
	case CodeExpired:
		kind = Expired
	}
	return &ProviderError{Kind: kind, Err: se}
}

// Livez calls the liveness probe.
func (c *SDKClient) Livez(ctx context.Context) (HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/livez", "", nil, nil)
	if err != nil {
		return HealthResponse{}, err
	}
	var out HealthResponse
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// Keys fetches the public keys that verify identity tokens.
func (c *SDKClient) Keys(ctx context.Context) (jwtx.JWKS, error) {
	resp, err := c.do(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil, nil)
	if err != nil {
		return jwtx.JWKS{}, err
	}
	var out jwtx.JWKS
	return out, decodeJSON(resp, &out, http.StatusOK)
}
