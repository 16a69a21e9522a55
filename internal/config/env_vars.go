package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	timezoneVar    = "APP_TIMEZONE"
	readTimeoutVar = "HTTP_READ_TIMEOUT"
	writeTimeout   = "HTTP_WRITE_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "EMS Server")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, "DEV"))
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetLocation returns the single location used for calendar dates and
// wall clock timestamps. Unknown zone names fall back to the host's zone.
func (EnvVars) GetLocation() *time.Location {
	name := GetEnv(timezoneVar, "")
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func (EnvVars) GetReadTimeout() time.Duration {
	return GetDuration(readTimeoutVar, 15*time.Second)
}

func (EnvVars) GetWriteTimeout() time.Duration {
	return GetDuration(writeTimeout, 15*time.Second)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func isDev() bool {
	return EnvVars{}.GetEnv() == "DEV"
}
