// BookyWarm REST API implementation of [Backend]
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bookywarm/wyrm/internal/models"
)

// Backend defines the typed surface of the BookyWarm REST API consumed by the
// controllers.
type Backend interface {
	// Register creates a new account. Success does not log the user in.
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)

	// Login exchanges credentials for a bearer token and the user profile.
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)

	// Profile fetches the authenticated user's profile.
	Profile(ctx context.Context) (*models.UserProfile, error)

	// Search queries the external book catalog. The endpoint is public.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)

	// SaveBook saves a catalog result with a rating to the user's library.
	SaveBook(ctx context.Context, req models.SaveBookRequest) error

	// MyBooks fetches the authoritative snapshot of the user's library.
	MyBooks(ctx context.Context) ([]models.LibraryEntry, error)

	// UpdateRating changes the rating of an existing library entry.
	UpdateRating(ctx context.Context, ratingID, rating int) error

	// DeleteRating removes a library entry.
	DeleteRating(ctx context.Context, ratingID int) error
}

// BackendService implements [Backend] on top of the [APIService] gateway.
type BackendService struct {
	api *APIService
}

var _ Backend = (*BackendService)(nil)

// NewBackendService creates a typed client over the given gateway.
func NewBackendService(api *APIService) *BackendService {
	return &BackendService{api: api}
}

func (b *BackendService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	resp, err := b.api.Do(ctx, http.MethodPost, "/api/register", req, false)
	if err != nil {
		return nil, err
	}

	var out models.RegisterResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BackendService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	resp, err := b.api.Do(ctx, http.MethodPost, "/api/login", req, false)
	if err != nil {
		return nil, err
	}

	var out models.LoginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BackendService) Profile(ctx context.Context) (*models.UserProfile, error) {
	resp, err := b.api.Do(ctx, http.MethodGet, "/api/profile", nil, true)
	if err != nil {
		return nil, err
	}

	var out models.UserProfile
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BackendService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	path := "/api/books/search?q=" + url.QueryEscape(query)

	resp, err := b.api.Do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}

	var out []models.SearchResult
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BackendService) SaveBook(ctx context.Context, req models.SaveBookRequest) error {
	if !models.ValidRating(req.Rating) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", req.Rating)
	}

	_, err := b.api.Do(ctx, http.MethodPost, "/api/books/save", req, true)
	return err
}

func (b *BackendService) MyBooks(ctx context.Context) ([]models.LibraryEntry, error) {
	resp, err := b.api.Do(ctx, http.MethodGet, "/api/my-books", nil, true)
	if err != nil {
		return nil, err
	}

	var out []models.LibraryEntry
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BackendService) UpdateRating(ctx context.Context, ratingID, rating int) error {
	if !models.ValidRating(rating) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	path := fmt.Sprintf("/api/ratings/%d", ratingID)
	_, err := b.api.Do(ctx, http.MethodPut, path, models.UpdateRatingRequest{Rating: rating}, true)
	return err
}

func (b *BackendService) DeleteRating(ctx context.Context, ratingID int) error {
	path := fmt.Sprintf("/api/ratings/%d", ratingID)
	_, err := b.api.Do(ctx, http.MethodDelete, path, nil, true)
	return err
}
