package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-ems-server/employees"
	"github.com/jrsteele09/go-ems-server/internal/config"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DemoUsername = "demo"
	DemoPassword = "demo"
	DemoCode     = "EMP001"
)

// InitialiseSystem seeds the local directory: the demo employee when enabled,
// then the administrator. The demo account goes first so it takes identity 1
// and its fixed code matches what provisioning would assign.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	if s.config.GetDirectoryType() != config.DirectoryLocal {
		log.Info().Str("directory", s.config.GetDirectoryType()).Msg("external directory, skipping local account bootstrap")
		return nil
	}

	if s.config.GetSeedDemo() {
		if err := s.createDemoEmployee(ctx); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to seed demo employee: %w", err)
		}
	}

	generatedPassword, err := s.createAdmin(ctx, s.config.GetAdminUsername(), s.config.GetAdminPassword())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap admin: %w", err)
	}
	if generatedPassword != "" {
		log.Warn().
			Str("username", s.config.GetAdminUsername()).
			Str("password", generatedPassword).
			Msg("created administrator, save this password, it will not be displayed again")
	}
	return nil
}

func (s *Server) createDemoEmployee(ctx context.Context) error {
	user, err := s.store.Users().GetByUsername(ctx, DemoUsername)
	if errors.Is(err, errors.ErrIdentityNotFound) {
		hash, err := users.HashPassword(DemoPassword)
		if err != nil {
			return fmt.Errorf("[server createDemoEmployee] failed to hash password: %w", err)
		}
		user = &users.User{
			Username:     DemoUsername,
			Email:        "demo@example.com",
			DisplayName:  "Demo Employee",
			FirstName:    "Demo",
			LastName:     "Employee",
			PasswordHash: hash,
			Roles:        []users.RoleType{users.RoleEmployee},
		}
		if err := s.store.Users().Upsert(ctx, user); err != nil {
			return fmt.Errorf("[server createDemoEmployee] failed to create demo user: %w", err)
		}
		log.Info().Int64("user_id", user.ID).Msg("created demo user")
	} else if err != nil {
		return fmt.Errorf("[server createDemoEmployee] failed to look up demo user: %w", err)
	}

	_, err = s.store.Employees().GetByUserID(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errors.ErrEmployeeNotFound) {
		return fmt.Errorf("[server createDemoEmployee] failed to look up demo employee: %w", err)
	}
	emp := &employees.Employee{
		UserID:     user.ID,
		Code:       DemoCode,
		Department: "IT",
		Position:   "Software Developer",
		Salary:     decimal.NewFromInt(5000),
		HireDate:   "2023-01-15",
		Phone:      "+1234567890",
		Status:     employees.StatusActive,
	}
	if err := s.store.Employees().Create(ctx, emp); err != nil {
		return fmt.Errorf("[server createDemoEmployee] failed to create demo employee: %w", err)
	}
	return nil
}

// createAdmin creates the administrator if the username is free. It returns
// the password only when one was generated.
func (s *Server) createAdmin(ctx context.Context, username, password string) (generatedPassword string, err error) {
	_, err = s.store.Users().GetByUsername(ctx, username)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, errors.ErrIdentityNotFound) {
		return "", fmt.Errorf("[server createAdmin] failed to look up admin: %w", err)
	}

	if password == "" {
		// Generate a secure random password
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createAdmin] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[server createAdmin] failed to hash password: %w", err)
	}
	admin := &users.User{
		Username:     username,
		DisplayName:  "System Administrator",
		FirstName:    "System",
		LastName:     "Administrator",
		PasswordHash: passwordHash,
		Roles:        []users.RoleType{users.RoleAdministrator},
	}
	if err := s.store.Users().Upsert(ctx, admin); err != nil {
		return "", fmt.Errorf("[server createAdmin] failed to create admin: %w", err)
	}
	return generatedPassword, nil
}
