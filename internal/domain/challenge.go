package domain

import "time"

// ChallengePurpose tags what an account-level OTP was issued for.
type ChallengePurpose string

const (
	PurposeRegistration  ChallengePurpose = "registration"
	PurposeLogin         ChallengePurpose = "login"
	PurposePasswordReset ChallengePurpose = "password_reset"
)

// Challenge is the single OTP slot attached to an Account. Issuing a new
// challenge for any purpose replaces the previous one.
type Challenge struct {
	Code      string           `json:"code" dynamodbav:"code"`
	Purpose   ChallengePurpose `json:"purpose" dynamodbav:"purpose"`
	ExpiresAt time.Time        `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether now is strictly after the expiry instant.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
