package volume

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultWebAPITimeout bounds a single volume request.
const DefaultWebAPITimeout = 8 * time.Second

// VolumeSetter sets the playback volume of the user's active device.
type VolumeSetter interface {
	SetVolume(ctx context.Context, accessToken string, percent int) error
}

// WebAPI calls the player volume endpoint of the Spotify Web API.
type WebAPI struct {
	baseURL    string
	httpClient *http.Client
}

// NewWebAPI creates a Web API client for baseURL, e.g. "https://api.spotify.com".
func NewWebAPI(baseURL string, timeout time.Duration) *WebAPI {
	if timeout <= 0 {
		timeout = DefaultWebAPITimeout
	}
	return &WebAPI{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient returns a copy of w using httpClient.
func (w *WebAPI) WithHTTPClient(httpClient *http.Client) *WebAPI {
	clone := *w
	clone.httpClient = httpClient
	return &clone
}

// SetVolume issues PUT /v1/me/player/volume?volume_percent=<percent>.
// 204 and 202 are success. A 401 yields an error matching ErrUnauthorized.
func (w *WebAPI) SetVolume(ctx context.Context, accessToken string, percent int) error {
	endpoint := w.baseURL + "/v1/me/player/volume?" + url.Values{
		"volume_percent": {strconv.Itoa(percent)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build volume request: %w", err)
	}
	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusAccepted:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
}

// errorMessage extracts error.message from a Web API error body, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return strings.TrimSpace(string(body))
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &detail); err == nil && detail.Message != "" {
		return detail.Message
	}

	// Token endpoint style: {"error": "invalid_token"}.
	var code string
	if err := json.Unmarshal(payload.Error, &code); err == nil && code != "" {
		return code
	}
	return strings.TrimSpace(string(body))
}
