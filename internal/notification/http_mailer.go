package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// DefaultAPIURL is the Brevo transactional email endpoint.
const DefaultAPIURL = "https://api.brevo.com/v3/smtp/email"

// HTTPMailer sends email through a Brevo-compatible transactional email API.
type HTTPMailer struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	HTTPClient *http.Client
	Renderer   Renderer
}

// NewHTTPMailer returns a mailer that posts to baseURL (DefaultAPIURL when empty) with apiKey.
func NewHTTPMailer(apiKey, baseURL, fromEmail, fromName string, otpExpiryMinutes int) *HTTPMailer {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &HTTPMailer{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		FromEmail:  fromEmail,
		FromName:   fromName,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		Renderer:   Renderer{OTPExpiryMinutes: otpExpiryMinutes},
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// SendOTP renders and sends the OTP email. Does not log the code.
func (m *HTTPMailer) SendOTP(ctx context.Context, email, code, purpose, name string) error {
	msg, err := m.Renderer.OTPMessage(email, code, purpose, name)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}

// SendKYCNotification renders and sends the KYC decision email.
func (m *HTTPMailer) SendKYCNotification(ctx context.Context, email, status, notes string) error {
	msg, err := m.Renderer.KYCMessage(email, status, notes)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}

// Send posts msg to the API. Any non-2xx response is an error.
func (m *HTTPMailer) Send(ctx context.Context, msg *Message) error {
	if m.APIKey == "" {
		return errors.New("mail: API key not configured")
	}
	raw, err := json.Marshal(sendRequest{
		Sender:      address{Email: m.FromEmail, Name: m.FromName},
		To:          []address{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", m.APIKey)
	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
