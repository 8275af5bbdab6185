package domain

import "time"

// PendingAccount is a registration whose email has not been confirmed yet.
// It is overwritten by every register call for the same email and deleted on promotion.
type PendingAccount struct {
	Email        string    `json:"email" dynamodbav:"email"`
	Name         string    `json:"name" dynamodbav:"name"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash,omitempty"`
	OTPCode      string    `json:"-" dynamodbav:"otp_code"`
	OTPExpiresAt time.Time `json:"otp_expires_at" dynamodbav:"otp_expires_at"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

// Account is a confirmed identity. Email and AccountID never change after creation.
type Account struct {
	AccountID    string     `json:"id" dynamodbav:"account_id"`
	Name         string     `json:"name" dynamodbav:"name"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Phone        string     `json:"phone" dynamodbav:"phone"`
	Address      *string    `json:"address,omitempty" dynamodbav:"address,omitempty"`
	Verified     bool       `json:"verified" dynamodbav:"verified"`
	Challenge    *Challenge `json:"-" dynamodbav:"challenge,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// PendingChallenge returns the registration OTP as a Challenge.
func (p *PendingAccount) PendingChallenge() Challenge {
	return Challenge{Code: p.OTPCode, Purpose: PurposeRegistration, ExpiresAt: p.OTPExpiresAt}
}
