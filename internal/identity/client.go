package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lumira/pkg/domain"
)

// ErrUnauthenticated indicates the bearer credential is missing, malformed,
// or rejected by the identity provider. It is never retried: an invalid
// credential does not become valid on a second attempt.
var ErrUnauthenticated = errors.New("unauthenticated")

// Client calls the identity provider over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs an identity provider client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Me validates the bearer token with the provider and returns the resolved
// user. Provider rejections and transport failures both surface as
// ErrUnauthenticated; the caller cannot distinguish a bad token from an
// unreachable provider and must not proceed either way.
func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/users/me", nil)
	if err != nil {
		return domain.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: identity provider unreachable: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.User{}, fmt.Errorf("%w: identity provider returned %s", ErrUnauthenticated, resp.Status)
	}
	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domain.User{}, fmt.Errorf("%w: decode identity response: %v", ErrUnauthenticated, err)
	}
	if strings.TrimSpace(user.ID) == "" {
		return domain.User{}, fmt.Errorf("%w: identity response missing user id", ErrUnauthenticated)
	}
	return user, nil
}
