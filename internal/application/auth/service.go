package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/id"
	"github.com/go-account-api/internal/pkg/password"
	"github.com/go-account-api/internal/pkg/validate"
)

// Result is what every operation hands back to the transport layer:
// a user-facing message and, for flows that authenticate, a signed token.
type Result struct {
	Message string
	Token   string
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*Result, error)
	VerifyRegistration(ctx context.Context, req domain.OTPVerifyRequest) (*Result, error)
	LoginWithPassword(ctx context.Context, req domain.LoginRequest) (*Result, error)
	RequestLoginOTP(ctx context.Context, req domain.EmailRequest) (*Result, error)
	VerifyLoginOTP(ctx context.Context, req domain.OTPVerifyRequest) (*Result, error)
	ForgotPassword(ctx context.Context, req domain.EmailRequest) (*Result, error)
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (*Result, error)
	ChangePassword(ctx context.Context, email string, req domain.ChangePasswordRequest) (*Result, error)
}

type accountStore interface {
	GetAccount(ctx context.Context, email string) (*domain.Account, error)
	SaveAccount(ctx context.Context, a *domain.Account) error
	GetPending(ctx context.Context, email string) (*domain.PendingAccount, error)
	PutPending(ctx context.Context, p *domain.PendingAccount) error
	Promote(ctx context.Context, a *domain.Account, code string) error
}

type notifier interface {
	SendOTP(ctx context.Context, email, code string, purpose domain.ChallengePurpose) error
}

type tokenSigner interface {
	Sign(email string) (string, error)
}

type otpGenerator interface {
	Next() (string, error)
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type service struct {
	store    accountStore
	notifier notifier
	tokens   tokenSigner
	otp      otpGenerator
	hasher   passwordHasher
	locker   locker
	otpTTL   time.Duration
	now      func() time.Time
}

type ServiceDeps struct {
	Store    accountStore
	Notifier notifier
	Tokens   tokenSigner
	OTP      otpGenerator
	Hasher   passwordHasher
	Locker   locker
	OTPTTL   time.Duration
	Now      func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:    deps.Store,
		notifier: deps.Notifier,
		tokens:   deps.Tokens,
		otp:      deps.OTP,
		hasher:   deps.Hasher,
		locker:   deps.Locker,
		otpTTL:   deps.OTPTTL,
		now:      now,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	var hash string
	if req.Password != "" {
		if err := checkStrength(req.Password); err != nil {
			return nil, err
		}
		var err error
		if hash, err = s.hasher.Hash(req.Password); err != nil {
			return nil, err
		}
	}
	code, err := s.otp.Next()
	if err != nil {
		return nil, err
	}

	err = s.withLock(ctx, req.Email, func() error {
		if _, err := s.store.GetAccount(ctx, req.Email); err == nil {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		now := s.now().UTC()
		return s.store.PutPending(ctx, &domain.PendingAccount{
			Email:        req.Email,
			Name:         req.Name,
			Phone:        req.Phone,
			PasswordHash: hash,
			OTPCode:      code,
			OTPExpiresAt: now.Add(s.otpTTL),
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.sendOTP(ctx, req.Email, code, domain.PurposeRegistration)
	return &Result{Message: "OTP sent to email"}, nil
}

func (s *service) VerifyRegistration(ctx context.Context, req domain.OTPVerifyRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	err := s.withLock(ctx, req.Email, func() error {
		p, err := s.store.GetPending(ctx, req.Email)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if err := checkChallenge(p.PendingChallenge(), req.OTP, domain.PurposeRegistration, now); err != nil {
			return err
		}
		return s.store.Promote(ctx, &domain.Account{
			AccountID:    id.New(),
			Name:         p.Name,
			Email:        p.Email,
			PasswordHash: p.PasswordHash,
			Phone:        p.Phone,
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, p.OTPCode)
	})
	if err != nil {
		return nil, err
	}

	return s.signed(req.Email, "Registration successful")
}

func (s *service) LoginWithPassword(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	a, err := s.store.GetAccount(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !a.Verified {
		return nil, fmt.Errorf("account not verified: %w", domain.ErrNotFound)
	}
	if !s.hasher.Verify(req.Password, a.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrInvalidCredentials)
	}
	return s.signed(a.Email, "Login successful")
}

func (s *service) RequestLoginOTP(ctx context.Context, req domain.EmailRequest) (*Result, error) {
	if err := s.issueChallenge(ctx, req, domain.PurposeLogin); err != nil {
		return nil, err
	}
	return &Result{Message: "OTP sent to email"}, nil
}

func (s *service) ForgotPassword(ctx context.Context, req domain.EmailRequest) (*Result, error) {
	if err := s.issueChallenge(ctx, req, domain.PurposePasswordReset); err != nil {
		return nil, err
	}
	return &Result{Message: "Reset OTP sent to email"}, nil
}

func (s *service) VerifyLoginOTP(ctx context.Context, req domain.OTPVerifyRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}

	err := s.withLock(ctx, req.Email, func() error {
		a, err := s.store.GetAccount(ctx, req.Email)
		if err != nil {
			return err
		}
		if err := s.consumeChallenge(a, req.OTP, domain.PurposeLogin); err != nil {
			return err
		}
		return s.store.SaveAccount(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	return s.signed(req.Email, "Login successful")
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	if req.NewPassword != req.ConfirmPassword {
		return nil, domain.NewValidationError("new password and confirm password do not match")
	}
	strengthErr := checkStrength(req.NewPassword)
	var hash string
	if strengthErr == nil {
		var err error
		if hash, err = s.hasher.Hash(req.NewPassword); err != nil {
			return nil, err
		}
	}

	err := s.withLock(ctx, req.Email, func() error {
		a, err := s.store.GetAccount(ctx, req.Email)
		if err != nil {
			return err
		}
		if a.Challenge == nil {
			return fmt.Errorf("no active code: %w", domain.ErrInvalidOTP)
		}
		if err := checkChallenge(*a.Challenge, req.OTP, domain.PurposePasswordReset, s.now().UTC()); err != nil {
			return err
		}
		if strengthErr != nil {
			return strengthErr
		}
		a.PasswordHash = hash
		a.Challenge = nil
		a.UpdatedAt = s.now().UTC()
		return s.store.SaveAccount(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	return s.signed(req.Email, "Password reset successful")
}

func (s *service) ChangePassword(ctx context.Context, email string, req domain.ChangePasswordRequest) (*Result, error) {
	email = normalizeEmail(email)
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	strengthErr := checkStrength(req.NewPassword)
	var hash string
	if strengthErr == nil {
		var err error
		if hash, err = s.hasher.Hash(req.NewPassword); err != nil {
			return nil, err
		}
	}

	err := s.withLock(ctx, email, func() error {
		a, err := s.store.GetAccount(ctx, email)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(req.OldPassword, a.PasswordHash) {
			return fmt.Errorf("old password incorrect: %w", domain.ErrInvalidCredentials)
		}
		if strengthErr != nil {
			return strengthErr
		}
		a.PasswordHash = hash
		a.Challenge = nil
		a.UpdatedAt = s.now().UTC()
		return s.store.SaveAccount(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Message: "Password changed successfully"}, nil
}

// issueChallenge stores a fresh code in the account's single OTP slot,
// replacing whatever was there, and then sends it.
func (s *service) issueChallenge(ctx context.Context, req domain.EmailRequest, purpose domain.ChallengePurpose) error {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(&req); err != nil {
		return err
	}
	code, err := s.otp.Next()
	if err != nil {
		return err
	}

	err = s.withLock(ctx, req.Email, func() error {
		a, err := s.store.GetAccount(ctx, req.Email)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		a.Challenge = &domain.Challenge{Code: code, Purpose: purpose, ExpiresAt: now.Add(s.otpTTL)}
		a.UpdatedAt = now
		return s.store.SaveAccount(ctx, a)
	})
	if err != nil {
		return err
	}

	s.sendOTP(ctx, req.Email, code, purpose)
	return nil
}

// consumeChallenge checks code against the account's slot and clears it on success.
func (s *service) consumeChallenge(a *domain.Account, code string, purpose domain.ChallengePurpose) error {
	if a.Challenge == nil {
		return fmt.Errorf("no active code: %w", domain.ErrInvalidOTP)
	}
	now := s.now().UTC()
	if err := checkChallenge(*a.Challenge, code, purpose, now); err != nil {
		return err
	}
	a.Challenge = nil
	a.UpdatedAt = now
	return nil
}

func checkChallenge(c domain.Challenge, code string, purpose domain.ChallengePurpose, now time.Time) error {
	if c.Expired(now) {
		return fmt.Errorf("code expired, request a new one: %w", domain.ErrExpired)
	}
	if subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) != 1 || c.Purpose != purpose {
		return fmt.Errorf("invalid code: %w", domain.ErrInvalidOTP)
	}
	return nil
}

func checkStrength(pw string) error {
	if v := password.Validate(pw); len(v) > 0 {
		return &domain.ValidationError{Violations: v}
	}
	return nil
}

func (s *service) withLock(ctx context.Context, email string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, email)
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	defer unlock()
	return fn()
}

// sendOTP runs after the state change has committed. Delivery failures are
// logged only: the stored code stays valid and the user can ask for a new one.
func (s *service) sendOTP(ctx context.Context, email, code string, purpose domain.ChallengePurpose) {
	if err := s.notifier.SendOTP(ctx, email, code, purpose); err != nil {
		slog.Warn("failed to deliver OTP", "email", email, "purpose", purpose, "err", err)
	}
}

func (s *service) signed(email, msg string) (*Result, error) {
	token, err := s.tokens.Sign(email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Result{Message: msg, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
