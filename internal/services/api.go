// API gateway for making HTTP requests to the BookyWarm backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/shared"
)

// HTTPError is an application failure: the backend answered with a non-2xx
// status and (usually) a structured error message.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// APIService provides methods for making raw HTTP requests to the backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	tokens     models.TokenStore
}

// NewAPIService creates a new API gateway instance for the BookyWarm backend.
func NewAPIService(baseURL string, client *http.Client, tokens models.TokenStore) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
		tokens:     tokens,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Do performs a request to the specified path. A non-nil body is marshalled
// as JSON. For authenticated calls the stored credential is attached as a
// bearer header; if the slot is empty the call still fires and the backend
// rejects it.
//
// Non-2xx responses return the response alongside a [*HTTPError]; transport
// failures return an error wrapping [shared.ErrConnection]. Never retries.
func (a *APIService) Do(ctx context.Context, method, path string, body any, authenticated bool) (*APIResponse, error) {
	fullURL := a.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated && a.tokens != nil {
		token, err := a.tokens.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiResp, &HTTPError{Status: resp.StatusCode, Message: errorMessage(apiResp)}
	}

	return apiResp, nil
}

// Get performs an unauthenticated GET request to the specified path.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil, false)
}

// Decode unmarshals the response body into out.
func (r *APIResponse) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the backend's error field, falling back to the
// standard status text.
func errorMessage(resp *APIResponse) string {
	if resp.IsJSON {
		if obj, ok := resp.JSONData.(map[string]any); ok {
			if msg, ok := obj["error"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

// IsUnauthorized reports whether err is a 401 from the backend, the signal
// that the stored credential is stale and the session must be torn down.
func IsUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusUnauthorized
}

// IsConnectionError reports whether err is a transport-level failure.
func IsConnectionError(err error) bool {
	return errors.Is(err, shared.ErrConnection)
}

// UserMessage renders an error the way the view layer shows it: server
// messages verbatim, transport failures as a generic connectivity message.
func UserMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	if IsConnectionError(err) {
		return shared.ErrConnection.Error()
	}
	return err.Error()
}
