// package models defines the wire types exchanged with the BookyWarm API
package models

import "strings"

// SessionKey is the storage slot name for the bearer token. It matches the
// localStorage key used by the web client.
const SessionKey = "access_token"

// TokenStore is the single-slot persistence contract for the session
// credential. An empty string from Get means no credential is stored.
//
// The slot is last-write-wins and strictly single-writer: only the session
// controller calls Set and Clear.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// UserProfile is the authenticated user's profile as returned by GET /api/profile.
type UserProfile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SearchResult is a catalog match from GET /api/books/search. Results are
// ephemeral: each new search replaces the previous set wholesale.
type SearchResult struct {
	GoogleBooksID string   `json:"google_books_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description"`
	CoverImage    string   `json:"cover_image"`
}

// Author returns the display author for a search result: the first entry of
// the authors list, matching what the save endpoint expects as a single string.
func (r SearchResult) Author() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}

// AuthorLine joins all authors for display.
func (r SearchResult) AuthorLine() string {
	return strings.Join(r.Authors, ", ")
}

// Book is the book payload nested inside a library entry.
type Book struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverImage string `json:"cover_image_url"`
}

// LibraryEntry is a saved rating from GET /api/my-books, unique by RatingID.
// The set of entries is the authoritative snapshot of the user's library as
// of the last fetch; the client never mutates an entry locally.
type LibraryEntry struct {
	RatingID int  `json:"rating_id"`
	Rating   int  `json:"rating"`
	Book     Book `json:"book"`
}

// RegisterRequest is the body for POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the server's success message.
type RegisterResponse struct {
	Mensaje string `json:"mensaje"`
}

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the logged-in user.
type LoginResponse struct {
	Mensaje     string      `json:"mensaje"`
	AccessToken string      `json:"access_token"`
	Usuario     UserProfile `json:"usuario"`
}

// SaveBookRequest is the body for POST /api/books/save.
type SaveBookRequest struct {
	GoogleBooksID string `json:"google_books_id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Rating        int    `json:"rating"`
	CoverImageURL string `json:"cover_image_url"`
}

// UpdateRatingRequest is the body for PUT /api/ratings/{id}.
type UpdateRatingRequest struct {
	Rating int `json:"rating"`
}

// ValidRating reports whether a rating is in the 1..5 domain.
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
