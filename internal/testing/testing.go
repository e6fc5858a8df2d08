// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/bookywarm/wyrm/internal/models"
)

// MemoryTokenStore is an in-memory [models.TokenStore] double. Substituting
// it for the SQLite store makes controller tests deterministic.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string

	GetErr error
	SetErr error
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// MockBackend is a configurable test double for [services.Backend]. Each
// method delegates to the corresponding function field when set and counts
// its calls.
type MockBackend struct {
	RegisterFn     func(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	LoginFn        func(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ProfileFn      func(ctx context.Context) (*models.UserProfile, error)
	SearchFn       func(ctx context.Context, query string) ([]models.SearchResult, error)
	SaveBookFn     func(ctx context.Context, req models.SaveBookRequest) error
	MyBooksFn      func(ctx context.Context) ([]models.LibraryEntry, error)
	UpdateRatingFn func(ctx context.Context, ratingID, rating int) error
	DeleteRatingFn func(ctx context.Context, ratingID int) error

	SearchCalls  int
	MyBooksCalls int
}

func (m *MockBackend) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, req)
	}
	return &models.RegisterResponse{}, nil
}

func (m *MockBackend) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return &models.LoginResponse{}, nil
}

func (m *MockBackend) Profile(ctx context.Context) (*models.UserProfile, error) {
	if m.ProfileFn != nil {
		return m.ProfileFn(ctx)
	}
	return &models.UserProfile{}, nil
}

func (m *MockBackend) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	m.SearchCalls++
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query)
	}
	return nil, nil
}

func (m *MockBackend) SaveBook(ctx context.Context, req models.SaveBookRequest) error {
	if m.SaveBookFn != nil {
		return m.SaveBookFn(ctx, req)
	}
	return nil
}

func (m *MockBackend) MyBooks(ctx context.Context) ([]models.LibraryEntry, error) {
	m.MyBooksCalls++
	if m.MyBooksFn != nil {
		return m.MyBooksFn(ctx)
	}
	return nil, nil
}

func (m *MockBackend) UpdateRating(ctx context.Context, ratingID, rating int) error {
	if m.UpdateRatingFn != nil {
		return m.UpdateRatingFn(ctx, ratingID, rating)
	}
	return nil
}

func (m *MockBackend) DeleteRating(ctx context.Context, ratingID int) error {
	if m.DeleteRatingFn != nil {
		return m.DeleteRatingFn(ctx, ratingID)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// CountingRoundTripper counts requests before delegating to the wrapped transport.
type CountingRoundTripper struct {
	Transport http.RoundTripper
	Calls     int
}

func (c *CountingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	c.Calls++
	t := c.Transport
	if t == nil {
		t = http.DefaultTransport
	}
	return t.RoundTrip(req)
}

var _ io.Writer = (*FWriter)(nil)
