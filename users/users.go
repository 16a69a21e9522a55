package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a directory role
type RoleType string

const (
	RoleAdministrator RoleType = "administrator" // Full access to the admin console
	RoleManager       RoleType = "ems_manager"   // Manages employees, leaves, tasks and payroll
	RoleEmployee      RoleType = "employee"      // Mobile access only
)

// User is an identity in the user directory. Employees reference it by ID.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"display_name,omitempty"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	PasswordHash string     `json:"-"` // never serialize
	Roles        []RoleType `json:"roles,omitempty"`
	ExternalID   string     `json:"-"` // subject at an external provider, empty for local users
	CreatedAt    time.Time  `json:"created_at"`
}

// Name returns the display name, falling back to first and last name.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanManage reports whether the user may use the admin console.
func (u *User) CanManage() bool {
	return u.HasRole(RoleAdministrator) || u.HasRole(RoleManager)
}

// ParseRoles parses a comma separated role list, ignoring unknown roles.
func ParseRoles(s string) []RoleType {
	var roles []RoleType
	for _, r := range strings.Split(s, ",") {
		switch role := RoleType(strings.TrimSpace(r)); role {
		case RoleAdministrator, RoleManager, RoleEmployee:
			roles = append(roles, role)
		}
	}
	return roles
}

// JoinRoles is the inverse of ParseRoles.
func JoinRoles(roles []RoleType) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ",")
}

// ValidatePassword rejects passwords that cannot be hashed or are blank.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) > 72 {
		return fmt.Errorf("password must be at most 72 bytes")
	}
	for _, char := range password {
		if unicode.IsControl(char) {
			return fmt.Errorf("password must not contain control characters")
		}
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
