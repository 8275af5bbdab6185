package smtp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/go-account-api/internal/domain"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<html>
<body style="font-family: Arial, sans-serif; background-color:#f4f6f8; padding:20px;">
  <div style="max-width:600px; margin:auto; background:white; border-radius:10px; padding:30px;">
    <h2 style="color:#2e7d32; text-align:center;">Smart E-Waste Management</h2>
    <p>{{.Intro}}</p>
    <div style="text-align:center; margin:30px 0;">
      <span style="font-size:28px; letter-spacing:5px; background:#e8f5e9; padding:15px 25px; border-radius:8px; color:#1b5e20; font-weight:bold;">{{.Code}}</span>
    </div>
    <p>This code is valid for <b>{{.Validity}}</b>.</p>
    <p>If you did not request this, please ignore this email.</p>
  </div>
</body>
</html>`))

var subjects = map[domain.ChallengePurpose]string{
	domain.PurposeRegistration:  "Verify your email",
	domain.PurposeLogin:         "Your login code",
	domain.PurposePasswordReset: "Reset your password",
}

var intros = map[domain.ChallengePurpose]string{
	domain.PurposeRegistration:  "Thank you for registering. Use the code below to verify your email.",
	domain.PurposeLogin:         "Use the code below to sign in.",
	domain.PurposePasswordReset: "Use the code below to reset your password.",
}

// OTPNotifier delivers one-time passcodes by email.
type OTPNotifier struct {
	mailer   Mailer
	validity time.Duration
}

func NewOTPNotifier(mailer Mailer, validity time.Duration) *OTPNotifier {
	return &OTPNotifier{mailer: mailer, validity: validity}
}

func (n *OTPNotifier) SendOTP(_ context.Context, email, code string, purpose domain.ChallengePurpose) error {
	subject, ok := subjects[purpose]
	if !ok {
		return fmt.Errorf("unknown otp purpose %q", purpose)
	}
	var body bytes.Buffer
	err := otpTemplate.Execute(&body, struct {
		Intro, Code, Validity string
	}{intros[purpose], code, humanMinutes(n.validity)})
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}
	return n.mailer.SendEmail(email, subject, body.String())
}

// humanMinutes renders d as whole minutes, e.g. "10 minutes". Anything under
// two minutes reads "1 minute".
func humanMinutes(d time.Duration) string {
	m := int(d.Minutes())
	if m <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
