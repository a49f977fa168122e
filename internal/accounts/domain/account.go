package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRole is granted to every self-registered account.
const DefaultRole = "customer"

// Account is the persisted account record. CredentialHash never leaves the
// service layer; handlers only ever see AccountView.
type Account struct {
	ID             uuid.UUID
	Email          string
	CredentialHash string // argon2id PHC string (bcrypt for migrated accounts)
	DisplayName    string
	Phone          *string
	IsActive       bool
	IsVerified     bool
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Roles returns the roles carried in issued tokens.
func (a Account) Roles() []string {
	return []string{a.Role}
}

// View returns the public projection of the account.
func (a Account) View() AccountView {
	var phone *string
	if a.Phone != nil {
		p := *a.Phone
		phone = &p
	}
	return AccountView{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Phone:       phone,
		IsActive:    a.IsActive,
		IsVerified:  a.IsVerified,
		Role:        a.Role,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountView is an Account without its credential hash.
type AccountView struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Phone       *string
	IsActive    bool
	IsVerified  bool
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountPatch lists profile fields to change. Nil fields are left as they
// are.
type AccountPatch struct {
	DisplayName *string
	Phone       *string
}

// Apply copies the provided fields onto a and reports whether anything was
// set.
func (p AccountPatch) Apply(a *Account) bool {
	changed := false
	if p.DisplayName != nil {
		a.DisplayName = *p.DisplayName
		changed = true
	}
	if p.Phone != nil {
		phone := *p.Phone
		a.Phone = &phone
		changed = true
	}
	return changed
}
