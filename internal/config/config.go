package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	StoreConfig
	AttendanceConfig
	DirectoryConfig
	BootstrapConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetLocation() *time.Location
	GetReadTimeout() time.Duration
	GetWriteTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Store
	Attendance
	Directory
	Bootstrap
}

func New() Config {
	return mainConfig{}
}

// Load reads an optional .env file into the process environment and returns
// the environment backed config. Variables already set win over the file.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return New()
}
