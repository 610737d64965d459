// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the access level attached to a user account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter" // external collaborator ("CTV") who refers candidates
	RoleCandidate Role = "candidate"
)

// UserStatus is the admin approval state of an account. New registrations
// start as Pending and cannot log in until an admin sets them Active.
type UserStatus string

const (
	UserPending  UserStatus = "Pending"
	UserActive   UserStatus = "Active"
	UserRejected UserStatus = "Rejected"
)

// ValidUserStatus reports whether s is one of the three accepted states.
func ValidUserStatus(s UserStatus) bool {
	switch s {
	case UserPending, UserActive, UserRejected:
		return true
	}
	return false
}

// BankInfo holds the payout details a recruiter provides for commission
// transfers. All fields are optional free text.
type BankInfo struct {
	BankName      string `json:"bankName,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

// User is a registered account: an admin, a recruiter, or a candidate.
//
// The JSON field names (including "_id") match the wire format the dashboard
// frontend already speaks, so they are kept as-is rather than renamed to Go
// conventions. Password holds the bcrypt hash; it round-trips through the
// store but must never reach a client; handlers return Sanitized() copies.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	BankInfo  *BankInfo  `json:"bankInfo,omitempty"`
	Credit    int        `json:"credit"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Sanitized returns a copy of the user with the password hash removed.
// Every handler response goes through this before serialization.
func (u *User) Sanitized() *User {
	c := *u
	c.Password = ""
	return &c
}
