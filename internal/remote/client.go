// Package remote talks to a starcatch leaderboard service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
)

// Client implements leaderboard.Store against the HTTP API.
type Client struct {
	base *url.URL
	http *http.Client
}

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("leaderboard service returned %d", e.Status)
	}
	return fmt.Sprintf("leaderboard service returned %d: %s", e.Status, e.Message)
}

// New returns a client for the service at baseURL. A nil httpClient uses a
// client with a five second timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("leaderboard url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported leaderboard url scheme %q", parsed.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{base: parsed, http: httpClient}, nil
}

type scoresBody struct {
	Entries []model.Entry `json:"entries"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

// TopScores implements leaderboard.Store.
func (c *Client) TopScores(ctx context.Context, n int) ([]model.Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	endpoint := c.endpoint("/api/v1/scores")
	endpoint.RawQuery = url.Values{"limit": []string{strconv.Itoa(n)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	var body scoresBody
	if err := c.do(req, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return leaderboard.Rank(body.Entries, n), nil
}

// AddScore implements leaderboard.Store. Input is validated locally before
// anything is sent.
func (c *Client) AddScore(ctx context.Context, name string, score int) error {
	normalized, err := leaderboard.NormalizeName(name)
	if err != nil {
		return err
	}
	if score < 0 {
		return fmt.Errorf("%w: got %d", leaderboard.ErrInvalidScore, score)
	}
	payload, err := json.Marshal(map[string]any{"name": normalized, "score": score})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/v1/scores").String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, http.StatusCreated, nil)
}

func (c *Client) endpoint(path string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return &u
}

func (c *Client) do(req *http.Request, want int, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach leaderboard service: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode leaderboard response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	statusErr := &StatusError{Status: resp.StatusCode}
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body); err == nil {
		statusErr.Code = body.Error.Code
		statusErr.Message = body.Error.Message
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		switch body.Error.Field {
		case "name":
			return fmt.Errorf("%w: %s", leaderboard.ErrInvalidName, statusErr.Error())
		case "score":
			return fmt.Errorf("%w: %s", leaderboard.ErrInvalidScore, statusErr.Error())
		}
	}
	return statusErr
}
