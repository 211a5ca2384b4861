package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	Version          string `envconfig:"VERSION" default:"dev"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"12"`
	JWTSecret        string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLMinutes  int    `envconfig:"TOKEN_TTL_MINUTES" default:"1440"`
	OpTimeoutSeconds int    `envconfig:"OP_TIMEOUT_SECONDS" default:"15"`

	// Google federated sign-in. Left empty, the /auth/google route is disabled.
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" default:""`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" default:""`

	// Login attempts allowed per email per minute before rate limiting kicks in.
	LoginRatePerMinute int `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
