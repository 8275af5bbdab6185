package handler

import (
	"context"
	"net/http"

	"github.com/go-account-api/internal/application/auth"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/transport/http/middleware"
)

// AuthHandler handles registration, login and password recovery endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.Register(ctx, req)
	})
}

func (h *AuthHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusCreated, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.VerifyRegistration(ctx, req)
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.LoginWithPassword(ctx, req)
	})
}

func (h *AuthHandler) RequestLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.RequestLoginOTP(ctx, req)
	})
}

func (h *AuthHandler) VerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.VerifyLoginOTP(ctx, req)
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.ForgotPassword(ctx, req)
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.ResetPassword(ctx, req)
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context) (*auth.Result, error) {
		return h.svc.ChangePassword(ctx, email, req)
	})
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, call func(context.Context) (*auth.Result, error)) {
	res, err := call(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, status, MessageEnvelope{Message: res.Message, Token: res.Token})
}
