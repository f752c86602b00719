package config

import (
	"fmt"
	"strings"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

type EnvVars struct {
	Port      string `env:"PORT" envDefault:"3000"`
	AppName   string `env:"APP_NAME" envDefault:"InfoNow"`
	Env       string `env:"ENV" envDefault:"DEV"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "3000"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return EnvDevelopment
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) IsProduction() bool {
	env := e.GetEnv()
	return env == EnvProduction || env == "PRODUCTION"
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetAPIPrefix returns the path prefix shared by every API route, without a trailing slash.
func (e EnvVars) GetAPIPrefix() string {
	return strings.TrimRight(e.APIPrefix, "/")
}
