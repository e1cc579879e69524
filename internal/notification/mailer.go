// Package notification delivers transactional email: OTP codes and KYC decisions.
package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Mailer sends the system's transactional emails.
type Mailer interface {
	// SendOTP sends code for purpose ("signup" or "signin"). name may be empty.
	SendOTP(ctx context.Context, email, code, purpose, name string) error
	// SendKYCNotification reports a KYC decision. status is "approved" or "rejected".
	SendKYCNotification(ctx context.Context, email, status, notes string) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Subjects.
const (
	SubjectSignupOTP   = "Verify your account - OTP Code"
	SubjectSigninOTP   = "Sign in to your account - OTP Code"
	SubjectKYCApproved = "KYC Verification Approved"
	SubjectKYCUpdate   = "KYC Verification Update"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	otpTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/otp.html"))
	kycTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/kyc.html"))
)

// Renderer builds OTP and KYC messages. OTPExpiryMinutes is shown in OTP emails.
type Renderer struct {
	OTPExpiryMinutes int
}

// OTPMessage renders the OTP email for purpose.
func (r Renderer) OTPMessage(email, code, purpose, name string) (*Message, error) {
	subject, title, action := SubjectSigninOTP, "Sign in to your account", "sign in to your account"
	if purpose == "signup" {
		subject, title, action = SubjectSignupOTP, "Verify your account", "verify your account"
	}
	if name == "" {
		name = NameFromEmail(email)
	}
	html, err := render(otpTemplate, map[string]any{
		"Title":         title,
		"Action":        action,
		"Name":          name,
		"Code":          code,
		"ExpiryMinutes": r.OTPExpiryMinutes,
		"Year":          time.Now().Year(),
	})
	if err != nil {
		return nil, err
	}
	return &Message{To: email, Subject: subject, HTML: html}, nil
}

// KYCMessage renders the KYC decision email.
func (r Renderer) KYCMessage(email, status, notes string) (*Message, error) {
	approved := status == "approved"
	subject := SubjectKYCUpdate
	if approved {
		subject = SubjectKYCApproved
	}
	html, err := render(kycTemplate, map[string]any{
		"Title":    subject,
		"Name":     NameFromEmail(email),
		"Approved": approved,
		"Notes":    notes,
		"Year":     time.Now().Year(),
	})
	if err != nil {
		return nil, err
	}
	return &Message{To: email, Subject: subject, HTML: html}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

// NameFromEmail derives a display name from the local part of email: "john.doe@x.com" -> "John Doe".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '_' || r == '-' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
