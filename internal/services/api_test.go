package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookywarm/wyrm/internal/shared"
	tu "github.com/bookywarm/wyrm/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com", customClient, nil)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil, nil)

			if srv.baseURL != "http://127.0.0.1:5000" {
				t.Errorf("expected default baseURL 'http://127.0.0.1:5000', got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Successful GET With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("unauthenticated call should not carry a bearer header")
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			resp, err := srv.Do(context.Background(), http.MethodGet, "/test", nil, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Authenticated Call Attaches Bearer Header", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer T1" {
					t.Errorf("expected 'Bearer T1', got %q", got)
				}
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, tu.NewMemoryTokenStore("T1"))
			if _, err := srv.Do(context.Background(), http.MethodGet, "/test", nil, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Authenticated Call Without Credential Still Fires", func(t *testing.T) {
			var sawRequest bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sawRequest = true
				if r.Header.Get("Authorization") != "" {
					t.Error("empty slot should not produce a bearer header")
				}
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "missing token"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, tu.NewMemoryTokenStore(""))
			_, err := srv.Do(context.Background(), http.MethodGet, "/test", nil, true)

			if !sawRequest {
				t.Fatal("gateway must not short-circuit on an empty credential slot")
			}
			if !IsUnauthorized(err) {
				t.Errorf("expected 401 HTTPError, got %v", err)
			}
		})

		t.Run("POST Marshals Body As JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected application/json, got %s", ct)
				}
				var body map[string]any
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode body: %v", err)
				}
				if body["rating"] != float64(5) {
					t.Errorf("expected rating 5, got %v", body["rating"])
				}
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			_, err := srv.Do(context.Background(), http.MethodPost, "/test", map[string]int{"rating": 5}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Non-2xx Maps To HTTPError With Server Message", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			resp, err := srv.Do(context.Background(), http.MethodGet, "/test", nil, false)

			var he *HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if he.Status != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", he.Status)
			}
			if he.Message != "not found" {
				t.Errorf("expected message 'not found', got %q", he.Message)
			}
			if resp == nil || resp.StatusCode != http.StatusNotFound {
				t.Error("expected raw response alongside the error")
			}
		})

		t.Run("Non-2xx Without Error Field Falls Back To Status Text", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("upstream broke"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			_, err := srv.Do(context.Background(), http.MethodGet, "/test", nil, false)

			var he *HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if he.Message != http.StatusText(http.StatusBadGateway) {
				t.Errorf("expected status text fallback, got %q", he.Message)
			}
		})

		t.Run("Transport Failure Wraps ErrConnection", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			}

			srv := NewAPIService("http://example.com", client, nil)
			_, err := srv.Do(context.Background(), http.MethodGet, "/test", nil, false)

			if !IsConnectionError(err) {
				t.Errorf("expected connection error, got %v", err)
			}
			if IsUnauthorized(err) {
				t.Error("transport failure must not classify as unauthorized")
			}
		})
	})

	t.Run("UserMessage", func(t *testing.T) {
		t.Run("Application Failure Is Verbatim", func(t *testing.T) {
			err := &HTTPError{Status: 409, Message: "El email ya está registrado"}
			if got := UserMessage(err); got != "El email ya está registrado" {
				t.Errorf("expected verbatim server message, got %q", got)
			}
		})

		t.Run("Transport Failure Is Generic", func(t *testing.T) {
			err := shared.ErrConnection
			if got := UserMessage(err); got != shared.ErrConnection.Error() {
				t.Errorf("expected generic connectivity message, got %q", got)
			}
		})
	})
}
