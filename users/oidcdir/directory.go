// Package oidcdir authenticates mobile logins against an external OpenID
// Connect provider using the resource owner password grant, and mirrors each
// verified identity into the local user repo so it gets a stable numeric id.
package oidcdir

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
	"github.com/jrsteele09/go-ems-server/users"
	"golang.org/x/oauth2"
)

type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

type Directory struct {
	repo         users.UserRepo
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	httpClient   *http.Client
}

var _ users.Directory = (*Directory)(nil)

type Option func(*Directory)

// WithHTTPClient sets the client used for discovery, key fetches and token requests.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Directory) {
		d.httpClient = client
	}
}

// idClaims are the ID token claims copied into the local user.
type idClaims struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	PreferredUsername string `json:"preferred_username"`
	Roles             []any  `json:"roles"`
}

// New discovers the provider at cfg.Issuer.
func New(ctx context.Context, repo users.UserRepo, cfg Config, options ...Option) (*Directory, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("[oidcdir New] issuer and client id are required")
	}

	d := &Directory{repo: repo}
	for _, opt := range options {
		opt(d)
	}

	provider, err := oidc.NewProvider(d.clientContext(ctx), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("[oidcdir New] failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	d.oauth2Config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}
	d.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return d, nil
}

func (d *Directory) Authenticate(ctx context.Context, username, password string) (*users.User, error) {
	ctx = d.clientContext(ctx)

	tok, err := d.oauth2Config.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			msg := rErr.ErrorDescription
			if msg == "" {
				msg = errors.ErrInvalidCredentials.Message
			}
			return nil, &errors.Error{Kind: errors.KindAuthentication, Message: msg, Err: err}
		}
		return nil, errors.Wrapf(err, "[oidcdir Authenticate] token request")
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("[oidcdir Authenticate] provider returned no id_token")
	}

	idToken, err := d.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &errors.Error{Kind: errors.KindAuthentication, Message: "Identity provider returned an invalid token", Err: err}
	}

	var claims idClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrapf(err, "[oidcdir Authenticate] claims")
	}

	user, err := d.repo.GetByExternalID(ctx, idToken.Subject)
	if errors.Is(err, errors.ErrIdentityNotFound) {
		user = &users.User{ExternalID: idToken.Subject}
	} else if err != nil {
		return nil, errors.Wrapf(err, "[oidcdir Authenticate] GetByExternalID")
	}

	user.Username = claims.PreferredUsername
	if user.Username == "" {
		user.Username = strings.TrimSpace(username)
	}
	user.Email = claims.Email
	user.DisplayName = claims.Name
	user.FirstName = claims.GivenName
	user.LastName = claims.FamilyName
	user.Roles = users.ParseRoles(strings.Join(utils.ToStringSlice(claims.Roles), ","))
	if len(user.Roles) == 0 {
		user.Roles = []users.RoleType{users.RoleEmployee}
	}

	if err := d.repo.Upsert(ctx, user); err != nil {
		return nil, errors.Wrapf(err, "[oidcdir Authenticate] Upsert")
	}
	return user, nil
}

func (d *Directory) Lookup(ctx context.Context, id int64) (*users.User, error) {
	return d.repo.GetByID(ctx, id)
}

func (d *Directory) clientContext(ctx context.Context) context.Context {
	if d.httpClient == nil {
		return ctx
	}
	return context.WithValue(oidc.ClientContext(ctx, d.httpClient), oauth2.HTTPClient, d.httpClient)
}
