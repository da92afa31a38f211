// Package profile provides read-only access to user profiles: an HTTP client
// for the profile API and an optional Redis read-through cache. Lookups are
// best-effort; any failure surfaces as domain.ErrProfileUnavailable so
// callers can fall back to cached snapshots.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"placelists/internal/domain"
)

type httpStore struct {
	client  *http.Client
	baseURL string
}

// NewHTTPStore returns a ProfileStore that calls the profile API at baseURL.
func NewHTTPStore(client *http.Client, baseURL string) domain.ProfileStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpStore{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *httpStore) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrProfileUnavailable
	}
	endpoint := fmt.Sprintf("%s/users/%s", s.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProfileUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProfileUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: profile api returned status %d", domain.ErrProfileUnavailable, resp.StatusCode)
	}

	var p domain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProfileUnavailable, err)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}
