package http

import (
	"github.com/go-account-api/internal/application/auth"
	"github.com/go-account-api/internal/application/profile"
	"github.com/go-account-api/internal/transport/http/middleware"
)

// Deps holds the application services and token verifier the router needs.
type Deps struct {
	Auth    auth.Service
	Profile profile.Service
	// Tokens verifies bearer tokens on authenticated routes.
	Tokens middleware.TokenVerifier
}
