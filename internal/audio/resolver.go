// Package audio covers the audio collaborator boundary: resolving a
// playable URL for the current hit of a game, and pooling the playback
// handles so consumers do not churn a new handle per event.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Source resolves the playable audio resource for a game's current hit. The
// session container asks for a fresh resolution whenever the engine signals
// that a new hit is playable; it never plays audio itself.
type Source interface {
	HitAudioURL(ctx context.Context, gameID string) (string, error)
}

// Resolver asks the game server for the current hit's audio URL.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// NewResolver creates a resolver against the given server. A nil client
// falls back to a short-timeout default.
func NewResolver(baseURL string, client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// HitAudioURL fetches the playable URL for the game's current hit.
func (r *Resolver) HitAudioURL(ctx context.Context, gameID string) (string, error) {
	url := fmt.Sprintf("%s/api/games/%s/hit/src", r.baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build hit audio request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch hit audio url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch hit audio url: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode hit audio response: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("hit audio response carries no url")
	}
	return body.URL, nil
}
