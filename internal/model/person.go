package model

import "time"

// Privilege is the access level attached to a person. It is stored as a
// small integer in persons.privilege.
type Privilege uint8

const (
	PrivilegeInvalid       Privilege = 0
	PrivilegeStandard      Privilege = 1
	PrivilegeAdministrator Privilege = 2
)

// String returns the role name used in JWT claims and API responses.
func (p Privilege) String() string {
	switch p {
	case PrivilegeStandard:
		return "RESIDENT"
	case PrivilegeAdministrator:
		return "ADMINISTRATOR"
	default:
		return "INVALID"
	}
}

// PrivilegeFromRole maps a role claim back to a Privilege. Unknown role
// names resolve to PrivilegeInvalid so a forged claim never gains access.
func PrivilegeFromRole(role string) Privilege {
	switch role {
	case "RESIDENT":
		return PrivilegeStandard
	case "ADMINISTRATOR":
		return PrivilegeAdministrator
	default:
		return PrivilegeInvalid
	}
}

// Person mirrors the `persons` table. One person owns exactly one account.
type Person struct {
	ID             uint64    // persons.id
	FirstName      string    // persons.first_name
	LastName       string    // persons.last_name
	PersonalNumber string    // persons.personal_number (YYYYMMDD-XXXX)
	Email          string    // persons.email (unique)
	Privilege      Privilege // persons.privilege
	CreatedAt      time.Time // persons.created_at
}

// Account mirrors the `accounts` table. The username is the external
// identity handle used by every core operation.
type Account struct {
	ID           uint64    // accounts.id
	PersonID     uint64    // accounts.person_id (unique, references persons.id)
	Username     string    // accounts.username (unique, alphanumeric)
	PasswordHash string    // accounts.password_hash (bcrypt)
	CreatedAt    time.Time // accounts.created_at
}

// PersonInfo is the joined person+account projection the directory returns.
// Every privileged operation resolves the caller through this record first.
type PersonInfo struct {
	PersonID       uint64    `json:"-"`
	AccountID      uint64    `json:"-"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PersonalNumber string    `json:"personal_number"`
	Email          string    `json:"email"`
	Privilege      Privilege `json:"-"`
	PasswordHash   string    `json:"-"`
}
