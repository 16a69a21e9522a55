// Command adduser creates or updates a user in the local directory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/go-ems-server/internal/config"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/store/sqlstore"
	"github.com/jrsteele09/go-ems-server/users"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := config.Load()

	flags := flag.NewFlagSet("adduser", flag.ContinueOnError)
	flags.SetOutput(stderr)
	username := flags.String("user", "", "username (required)")
	password := flags.String("password", "", "password, prompted for when omitted")
	email := flags.String("email", "", "email address")
	name := flags.String("name", "", "display name")
	role := flags.String("role", "", "comma separated roles: administrator, ems_manager, employee (default employee for new users)")
	dbPath := flags.String("db", c.GetSqlitePath(), "sqlite database path")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*username) == "" {
		fmt.Fprintln(stderr, "adduser: -user is required")
		flags.Usage()
		return 2
	}
	roles := users.ParseRoles(*role)
	if *role != "" && len(roles) == 0 {
		fmt.Fprintf(stderr, "adduser: unknown role %q\n", *role)
		return 2
	}

	if *password == "" {
		p, err := readPassword(stdin, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "adduser: %v\n", err)
			return 1
		}
		*password = p
	}
	if err := users.ValidatePassword(*password); err != nil {
		fmt.Fprintf(stderr, "adduser: %v\n", err)
		return 1
	}

	db, err := sqlstore.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "adduser: %v\n", err)
		return 1
	}
	defer db.Close()

	created, err := saveUser(context.Background(), db.Users(), &users.User{
		Username:    strings.TrimSpace(*username),
		Email:       strings.TrimSpace(*email),
		DisplayName: strings.TrimSpace(*name),
		Roles:       roles,
	}, *password)
	if err != nil {
		fmt.Fprintf(stderr, "adduser: %v\n", err)
		return 1
	}

	action := "updated"
	if created {
		action = "created"
	}
	fmt.Fprintf(stdout, "%s user %q\n", action, *username)
	return 0
}

// saveUser writes u with a fresh password hash. Fields left empty keep the
// values of an existing user with the same username.
func saveUser(ctx context.Context, repo users.UserRepo, u *users.User, password string) (created bool, err error) {
	existing, err := repo.GetByUsername(ctx, u.Username)
	switch {
	case err == nil:
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		u.FirstName, u.LastName = existing.FirstName, existing.LastName
		if u.Email == "" {
			u.Email = existing.Email
		}
		if u.DisplayName == "" {
			u.DisplayName = existing.DisplayName
		}
		if len(u.Roles) == 0 {
			u.Roles = existing.Roles
		}
	case errors.Is(err, errors.ErrIdentityNotFound):
		created = true
		if len(u.Roles) == 0 {
			u.Roles = []users.RoleType{users.RoleEmployee}
		}
	default:
		return false, err
	}

	u.PasswordHash, err = users.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := repo.Upsert(ctx, u); err != nil {
		return false, err
	}
	return created, nil
}

// readPassword prompts without echo on a terminal and reads a line otherwise.
func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stdout, "Password: ")
		p, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(p), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
