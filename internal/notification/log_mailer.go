package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer stands in for a real mailer when no API key is configured. It logs who would have
// been mailed, never the code.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a LogMailer writing to logger (zap.L() when nil).
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.L()
	}
	return &LogMailer{logger: logger.Named("mail")}
}

func (m *LogMailer) SendOTP(ctx context.Context, email, code, purpose, name string) error {
	m.logger.Info("otp email (not sent, mail disabled)", zap.String("to", email), zap.String("purpose", purpose))
	return nil
}

func (m *LogMailer) SendKYCNotification(ctx context.Context, email, status, notes string) error {
	m.logger.Info("kyc email (not sent, mail disabled)", zap.String("to", email), zap.String("status", status))
	return nil
}
