package config

type BootstrapConfig interface {
	GetSeedDemo() bool
	GetAdminUsername() string
	GetAdminPassword() string
}

type Bootstrap struct{}

var _ BootstrapConfig = Bootstrap{}

// GetSeedDemo creates the demo/demo account and sample employees. On by default in DEV only.
func (Bootstrap) GetSeedDemo() bool {
	return GetBool("SEED_DEMO", isDev())
}

func (Bootstrap) GetAdminUsername() string {
	return GetEnv("ADMIN_USERNAME", "admin")
}

// GetAdminPassword is empty when a password should be generated on first start.
func (Bootstrap) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}
