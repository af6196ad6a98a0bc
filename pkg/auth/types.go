package auth

import "time"

const (
	// DefaultAPIEndpoint is the hosted control plane
	DefaultAPIEndpoint = "https://aetherngine.com"

	// DefaultRuntime is used when nothing else names a runtime
	DefaultRuntime = "node:20"

	// DefaultBuildTimeout is the build subprocess limit in seconds
	DefaultBuildTimeout = 300
)

// Config is the persisted client configuration
type Config struct {
	APIEndpoint    string `json:"api_endpoint"`
	AuthToken      string `json:"auth_token,omitempty"`
	DefaultRuntime string `json:"default_runtime"`
	BuildTimeout   int    `json:"build_timeout"`

	// Email of the logged-in user, for display only
	Email string `json:"email,omitempty"`
}

// DefaultConfig returns a Config with every default applied
func DefaultConfig() *Config {
	return &Config{
		APIEndpoint:    DefaultAPIEndpoint,
		DefaultRuntime: DefaultRuntime,
		BuildTimeout:   DefaultBuildTimeout,
	}
}

// IsAuthenticated reports whether a token is present
func (c *Config) IsAuthenticated() bool {
	return c.AuthToken != ""
}

// BuildTimeoutDuration returns BuildTimeout as a duration
func (c *Config) BuildTimeoutDuration() time.Duration {
	if c.BuildTimeout <= 0 {
		return DefaultBuildTimeout * time.Second
	}
	return time.Duration(c.BuildTimeout) * time.Second
}
