package controller

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bookywarm/wyrm/internal/models"
	"github.com/bookywarm/wyrm/internal/services"
)

// Session drives the top-level view switch between the auth forms and the
// dashboard. It is the exclusive owner of the token store: credentials are
// created on successful login and destroyed on logout or on rejection of a
// protected call.
type Session struct {
	backend services.Backend
	tokens  models.TokenStore
	logger  *log.Logger
}

// NewSession creates a session controller over the given backend and token store.
func NewSession(backend services.Backend, tokens models.TokenStore, logger *log.Logger) *Session {
	return &Session{backend: backend, tokens: tokens, logger: logger}
}

// Restore resolves the session state on load: a stored credential is
// validated with a profile fetch. Any failure of that fetch clears the
// credential, so a stale token never lingers past startup.
func (s *Session) Restore(ctx context.Context) SessionSnapshot {
	token, err := s.tokens.Get()
	if err != nil {
		s.logger.Error("failed to read credential slot", "error", err)
		return SessionSnapshot{State: Unauthenticated, Error: err.Error()}
	}
	if token == "" {
		return SessionSnapshot{State: Unauthenticated}
	}

	profile, err := s.backend.Profile(ctx)
	if err != nil {
		s.logger.Warn("stored credential rejected, clearing", "error", err)
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Error("failed to clear credential", "error", clearErr)
		}
		return SessionSnapshot{State: Unauthenticated, Error: services.UserMessage(err)}
	}

	return SessionSnapshot{State: Authenticated, Profile: profile}
}

// Login exchanges credentials for a bearer token. Success stores the token
// and enters Authenticated; failure makes no transition and surfaces the
// server message (or a generic connectivity message) inline.
func (s *Session) Login(ctx context.Context, email, password string) SessionSnapshot {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SessionSnapshot{State: Unauthenticated, Error: "email y contraseña son obligatorios"}
	}

	resp, err := s.backend.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return SessionSnapshot{State: Unauthenticated, Error: services.UserMessage(err)}
	}

	if err := s.tokens.Set(resp.AccessToken); err != nil {
		s.logger.Error("failed to persist credential", "error", err)
		return SessionSnapshot{State: Unauthenticated, Error: err.Error()}
	}

	s.logger.Info("logged in", "username", resp.Usuario.Username)
	profile := resp.Usuario
	return SessionSnapshot{State: Authenticated, Profile: &profile, Notice: resp.Mensaje}
}

// Register creates an account. Success is NOT a login: the state machine
// stays where it is and the success message is shown so the user can log in.
func (s *Session) Register(ctx context.Context, username, email, password string) SessionSnapshot {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return SessionSnapshot{State: Unauthenticated, Error: "todos los campos son obligatorios"}
	}

	resp, err := s.backend.Register(ctx, models.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return SessionSnapshot{State: Unauthenticated, Error: services.UserMessage(err)}
	}

	return SessionSnapshot{State: Unauthenticated, Notice: resp.Mensaje}
}

// Logout destroys the credential. No network call is involved.
func (s *Session) Logout() SessionSnapshot {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Error("failed to clear credential", "error", err)
	}
	s.logger.Info("logged out")
	return SessionSnapshot{State: Unauthenticated}
}

// Invalidate is the stale-credential recovery path: a protected call came
// back 401, so the token is destroyed and the view falls back to the auth
// forms. This is the only error class that causes a state transition.
func (s *Session) Invalidate() SessionSnapshot {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Error("failed to clear credential", "error", err)
	}
	s.logger.Warn("session expired")
	return SessionSnapshot{State: Unauthenticated, Error: "la sesión ha expirado, inicia sesión de nuevo"}
}
