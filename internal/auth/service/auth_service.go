package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"servease/backend/internal/audit"
	"servease/backend/internal/db"
	"servease/backend/internal/devotp"
	"servease/backend/internal/notification"
	"servease/backend/internal/otp"
	otpdomain "servease/backend/internal/otp/domain"
	"servease/backend/internal/security"
	sessiondomain "servease/backend/internal/session/domain"
	userdomain "servease/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the HTTP handler maps them to status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("user with this email already exists")
	ErrAccountTypeNotAllowed  = errors.New("account type not allowed for signup")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidOTP             = errors.New("invalid or expired OTP")
	ErrMissingRefreshToken    = errors.New("refresh token is required")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
)

// MinPasswordLength is the minimum accepted signup password length.
const MinPasswordLength = 8

// TokenPair is returned by signin OTP verification and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// OTPRepo is the minimal OTP repository needed by the auth service.
type OTPRepo interface {
	Create(ctx context.Context, o *otpdomain.OTP) error
	FindLatestUnused(ctx context.Context, userID, codeHash string, purpose otpdomain.Purpose) (*otpdomain.OTP, error)
	MarkUsed(ctx context.Context, id string) (bool, error)
}

// RefreshTokenRepo is the minimal refresh token repository needed by the auth service.
type RefreshTokenRepo interface {
	Create(ctx context.Context, t *sessiondomain.RefreshToken) error
	GetByID(ctx context.Context, id string) (*sessiondomain.RefreshToken, error)
	RevokeIfActive(ctx context.Context, id string) (bool, error)
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
}

// OTPSender delivers issued codes. Failures are logged, never surfaced to the caller.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code, purpose, name string) error
}

// AuthService implements signup, OTP verification, signin, refresh rotation and logout.
type AuthService struct {
	users       UserRepo
	otps        OTPRepo
	refresh     RefreshTokenRepo
	sender      OTPSender
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	otpTTL      time.Duration
	devOTPStore devotp.Store
	auditLogger audit.AuditLogger
	now         func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// When devOTPStore is non-nil, issued codes are kept there for GET /dev/otp instead of being mailed.
// auditLogger may be nil.
func NewAuthService(
	users UserRepo,
	otps OTPRepo,
	refresh RefreshTokenRepo,
	sender OTPSender,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	otpTTL time.Duration,
	devOTPStore devotp.Store,
	auditLogger audit.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		otps:        otps,
		refresh:     refresh,
		sender:      sender,
		hasher:      hasher,
		tokens:      tokens,
		otpTTL:      otpTTL,
		devOTPStore: devOTPStore,
		auditLogger: auditLogger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates the account and sends a signup OTP. Customers start ACTIVE, providers PENDING.
// tenantID may be empty.
func (s *AuthService) Signup(ctx context.Context, email, password string, accountType userdomain.AccountType, tenantID string) error {
	email = NormalizeEmail(email)
	if !accountType.Valid() || accountType == userdomain.AccountTypeAdmin {
		return ErrAccountTypeNotAllowed
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := &userdomain.User{
		ID:            uuid.New().String(),
		Email:         email,
		PasswordHash:  hashed,
		AccountType:   accountType,
		AccountStatus: userdomain.InitialStatus(accountType),
		TenantID:      tenantID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailAlreadyRegistered
		}
		return err
	}
	if err := s.issueOTP(ctx, user, otpdomain.PurposeSignup); err != nil {
		return err
	}
	s.logEvent(ctx, tenantID, user.ID, "signup", "user", string(accountType))
	return nil
}

// VerifySignupOTP consumes a signup code. Unknown email, wrong, expired and used codes all
// return ErrInvalidOTP.
func (s *AuthService) VerifySignupOTP(ctx context.Context, email, code string) error {
	_, err := s.verifyOTP(ctx, email, code, otpdomain.PurposeSignup)
	return err
}

// Signin checks the password and sends a signin OTP. No token is issued here.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Signin(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.logEvent(ctx, "", "", "login_failure", "session", email)
		return ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.logEvent(ctx, user.TenantID, user.ID, "login_failure", "session", email)
		return ErrInvalidCredentials
	}
	if err := s.issueOTP(ctx, user, otpdomain.PurposeSignin); err != nil {
		return err
	}
	s.logEvent(ctx, user.TenantID, user.ID, "signin", "session", "otp_sent")
	return nil
}

// VerifySigninOTP consumes a signin code and mints an access/refresh pair.
func (s *AuthService) VerifySigninOTP(ctx context.Context, email, code string) (*TokenPair, error) {
	user, err := s.verifyOTP(ctx, email, code, otpdomain.PurposeSignin)
	if err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.TenantID, user.ID, "login", "session", "")
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is revoked with a
// conditional update, so it can be exchanged at most once even under concurrent requests.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}
	tokenID, userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	rec, err := s.refresh.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != userID || !rec.Usable(s.now()) {
		return nil, ErrInvalidRefreshToken
	}
	if !security.SecretHashEqual(refreshToken, rec.TokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	revoked, err := s.refresh.RevokeIfActive(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.TenantID, user.ID, "refresh", "session", "")
	return pair, nil
}

// Logout revokes the caller's refresh tokens. With refreshToken set only that token is revoked,
// and only if it belongs to userID; an unknown or foreign token is a no-op. Without it every
// active refresh token of the user is revoked.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		n, err := s.refresh.RevokeAllByUser(ctx, userID)
		if err != nil {
			return err
		}
		s.logEvent(ctx, "", userID, "logout", "session", fmt.Sprintf("all:%d", n))
		return nil
	}
	tokenID, subject, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil || subject != userID {
		return nil
	}
	rec, err := s.refresh.GetByID(ctx, tokenID)
	if err != nil {
		return err
	}
	if rec == nil || rec.UserID != userID || !security.SecretHashEqual(refreshToken, rec.TokenHash) {
		return nil
	}
	if _, err := s.refresh.RevokeIfActive(ctx, rec.ID); err != nil {
		return err
	}
	s.logEvent(ctx, "", userID, "logout", "session", rec.ID)
	return nil
}

func (s *AuthService) verifyOTP(ctx context.Context, email, code string, purpose otpdomain.Purpose) (*userdomain.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || code == "" {
		return nil, ErrInvalidOTP
	}
	rec, err := s.otps.FindLatestUnused(ctx, user.ID, security.HashSecret(code), purpose)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Expired(s.now()) {
		return nil, ErrInvalidOTP
	}
	consumed, err := s.otps.MarkUsed(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidOTP
	}
	return user, nil
}

func (s *AuthService) issueOTP(ctx context.Context, user *userdomain.User, purpose otpdomain.Purpose) error {
	code, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	now := s.now()
	rec := &otpdomain.OTP{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CodeHash:  security.HashSecret(code),
		Purpose:   purpose,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.otps.Create(ctx, rec); err != nil {
		return err
	}
	if s.devOTPStore != nil {
		s.devOTPStore.Put(ctx, user.Email, string(purpose), code, rec.ExpiresAt)
		return nil
	}
	if s.sender == nil {
		return nil
	}
	name := user.Name
	if name == "" {
		name = notification.NameFromEmail(user.Email)
	}
	if err := s.sender.SendOTP(ctx, user.Email, code, string(purpose), name); err != nil {
		zap.L().Warn("auth: otp email failed",
			zap.String("user_id", user.ID),
			zap.String("purpose", string(purpose)),
			zap.Error(err))
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *userdomain.User) (*TokenPair, error) {
	access, _, err := s.tokens.IssueAccess(security.Subject{
		UserID:        user.ID,
		Email:         user.Email,
		AccountType:   string(user.AccountType),
		AccountStatus: string(user.AccountStatus),
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	tokenID := uuid.New().String()
	refresh, expiresAt, err := s.tokens.IssueRefresh(tokenID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.refresh.Create(ctx, &sessiondomain.RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: security.HashSecret(refresh),
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) logEvent(ctx context.Context, tenantID, userID, action, resource, metadata string) {
	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, tenantID, userID, action, resource, metadata)
	}
}
