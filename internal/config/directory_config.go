package config

import "strings"

const (
	DirectoryLocal = "local"
	DirectoryOIDC  = "oidc"
)

type DirectoryConfig interface {
	GetDirectoryType() string
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCScopes() []string
}

type Directory struct{}

var _ DirectoryConfig = Directory{}

func (Directory) GetDirectoryType() string {
	if GetEnv("DIRECTORY", DirectoryLocal) == DirectoryOIDC {
		return DirectoryOIDC
	}
	return DirectoryLocal
}

func (Directory) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (Directory) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Directory) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (Directory) GetOIDCScopes() []string {
	return strings.Fields(GetEnv("OIDC_SCOPES", "openid profile email"))
}
