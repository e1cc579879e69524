package domain

import (
	"errors"
	"time"
)

// AccountType classifies what a user does on the marketplace.
type AccountType string

const (
	AccountTypeCustomer            AccountType = "customer"
	AccountTypeProviderIndependent AccountType = "service-provider-independent"
	AccountTypeProviderBusiness    AccountType = "service-provider-business"
	AccountTypeAdmin               AccountType = "admin"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCustomer, AccountTypeProviderIndependent, AccountTypeProviderBusiness, AccountTypeAdmin:
		return true
	}
	return false
}

// IsProvider reports whether t is one of the service-provider types.
func (t AccountType) IsProvider() bool {
	return t == AccountTypeProviderIndependent || t == AccountTypeProviderBusiness
}

// ProviderTypes lists the account types allowed to offer services.
var ProviderTypes = []AccountType{AccountTypeProviderIndependent, AccountTypeProviderBusiness}

// AccountStatus is the lifecycle gate checked before most operations.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "ACTIVE"
	AccountStatusPending     AccountStatus = "PENDING"
	AccountStatusSuspended   AccountStatus = "SUSPENDED"
	AccountStatusBlocked     AccountStatus = "BLOCKED"
	AccountStatusBlacklisted AccountStatus = "BLACKLISTED"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusPending, AccountStatusSuspended, AccountStatusBlocked, AccountStatusBlacklisted:
		return true
	}
	return false
}

// InitialStatus is the status a new account of type t starts with: customers are active at
// once, providers wait for KYC approval.
func InitialStatus(t AccountType) AccountStatus {
	if t == AccountTypeCustomer {
		return AccountStatusActive
	}
	return AccountStatusPending
}

// User is the core account entity. PasswordHash is an argon2id encoded string.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	AccountType   AccountType
	AccountStatus AccountStatus
	RoleID        string // empty when no role
	TenantID      string
	CityID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !u.AccountType.Valid() {
		return errors.New("invalid account type")
	}
	if u.AccountStatus == "" {
		u.AccountStatus = InitialStatus(u.AccountType)
	}
	if !u.AccountStatus.Valid() {
		return errors.New("invalid account status")
	}
	return nil
}
