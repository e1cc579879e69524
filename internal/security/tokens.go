package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or signed for someone else.
var ErrInvalidToken = errors.New("invalid token")

// Token uses carried in the typ claim. Each validator accepts only its own kind.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Subject is the identity embedded in an access token.
type Subject struct {
	UserID        string
	Email         string
	AccountType   string
	AccountStatus string
}

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	TokenUse      string `json:"typ"`
	Email         string `json:"email"`
	AccountType   string `json:"accountType"`
	AccountStatus string `json:"accountStatus"`
}

// RefreshClaims holds JWT claims for the refresh token. ID (jti) is the stored refresh token record id.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenUse string `json:"typ"`
}

// TokenProvider issues and validates JWT access and refresh tokens using RS256 or ES256.
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	method     jwt.SigningMethod
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with privateKey. The algorithm follows
// the key type. issuer and audience are set on every token and required on validation.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	var method jwt.SigningMethod
	switch privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return nil, ErrInvalidKey
	}
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		method:     method,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL returns the lifetime of issued access tokens.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the lifetime of issued refresh tokens.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access JWT carrying the subject's identity.
func (p *TokenProvider) IssueAccess(sub Subject) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: p.registered(sub.UserID, "", now, expiresAt),
		TokenUse:         TokenUseAccess,
		Email:            sub.Email,
		AccountType:      sub.AccountType,
		AccountStatus:    sub.AccountStatus,
	}
	token, err = jwt.NewWithClaims(p.method, claims).SignedString(p.privateKey)
	return token, expiresAt, err
}

// IssueRefresh issues a long-lived refresh JWT whose jti is tokenID. The caller persists a
// record under tokenID holding HashSecret(token) and expiresAt.
func (p *TokenProvider) IssueRefresh(tokenID, userID string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: p.registered(userID, tokenID, now, expiresAt),
		TokenUse:         TokenUseRefresh,
	}
	token, err = jwt.NewWithClaims(p.method, claims).SignedString(p.privateKey)
	return token, expiresAt, err
}

// ValidateAccess checks signature, expiry, issuer, audience and the access typ, and returns the claims.
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := p.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenUse != TokenUseAccess || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefresh checks the refresh token and returns its jti and subject.
func (p *TokenProvider) ValidateRefresh(tokenString string) (tokenID, userID string, err error) {
	claims := &RefreshClaims{}
	if err := p.parse(tokenString, claims); err != nil {
		return "", "", err
	}
	if claims.TokenUse != TokenUseRefresh || claims.ID == "" || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.ID, claims.Subject, nil
}

func (p *TokenProvider) registered(subject, jti string, now, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		Issuer:    p.issuer,
		Audience:  jwt.ClaimStrings{p.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (p *TokenProvider) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return p.publicKey, nil },
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
