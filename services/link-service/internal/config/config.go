package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// LinkServiceConfig holds all configuration for the link service.
type LinkServiceConfig struct {
	HTTPAddr  string `env:"LINK_SERVICE_HTTP_ADDR"  envDefault:":8080"`
	GRPCAddr  string `env:"LINK_SERVICE_GRPC_ADDR"  envDefault:":9090"`
	LogLevel  string `env:"LINK_SERVICE_LOG_LEVEL"  envDefault:"info"`
	LogPretty bool   `env:"LINK_SERVICE_LOG_PRETTY" envDefault:"false"`

	// RequestTimeout bounds a whole HTTP request, store and gateway calls included.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	// GrantTimeout bounds the role grant that follows a committed link.
	GrantTimeout time.Duration `env:"GRANT_TIMEOUT" envDefault:"5s"`
	// HealthInterval is how often the store is pinged for the gRPC health status.
	HealthInterval time.Duration `env:"HEALTH_INTERVAL" envDefault:"10s"`

	Mongo   MongoConfig
	Discord DiscordConfig
	Caller  CallerTokenConfig
	Consul  ConsulConfig
	Alert   AlertConfig

	// TracingEndpoint is the OTLP/HTTP collector URL. Empty disables tracing.
	TracingEndpoint string `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"linkbridge"`
}

type DiscordConfig struct {
	BotToken string `env:"DISCORD_BOT_TOKEN"`
	GuildID  string `env:"DISCORD_GUILD_ID"`
	RoleID   string `env:"DISCORD_ROLE_ID"`
}

// CallerTokenConfig validates bearer tokens presented by front ends such as the chat bot.
type CallerTokenConfig struct {
	Secret   string `env:"CALLER_TOKEN_SECRET"`
	Issuer   string `env:"CALLER_TOKEN_ISSUER"   envDefault:"discord-bot"`
	Audience string `env:"CALLER_TOKEN_AUDIENCE" envDefault:"link-service"`
}

type ConsulConfig struct {
	Enabled        bool   `env:"CONSUL_ENABLED"         envDefault:"false"`
	Address        string `env:"CONSUL_ADDRESS"         envDefault:"localhost:8500"`
	ServiceName    string `env:"CONSUL_SERVICE_NAME"    envDefault:"link-service"`
	ServiceAddress string `env:"CONSUL_SERVICE_ADDRESS" envDefault:"127.0.0.1:9090"`
}

// AlertConfig controls operator emails. SMTP settings are read by the shared mailer.
type AlertConfig struct {
	Enabled bool     `env:"ALERT_EMAIL_ENABLED" envDefault:"false"`
	To      []string `env:"ALERT_EMAIL_TO"      envSeparator:","`
}

// Load parses the link service configuration from environment variables.
func Load() (*LinkServiceConfig, error) {
	cfg, err := env.ParseAs[LinkServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks settings that have no usable default.
// An empty DISCORD_GUILD_ID or DISCORD_ROLE_ID is allowed: the service still starts
// and reports the role as unavailable.
func (c *LinkServiceConfig) validate() error {
	if c.Discord.BotToken == "" {
		return errors.New("missing DISCORD_BOT_TOKEN environment variable")
	}
	if c.Caller.Secret == "" {
		return errors.New("missing CALLER_TOKEN_SECRET environment variable")
	}
	if c.Alert.Enabled && len(c.Alert.To) == 0 {
		return errors.New("ALERT_EMAIL_TO is required when ALERT_EMAIL_ENABLED is set")
	}
	if c.GrantTimeout <= 0 {
		return fmt.Errorf("GRANT_TIMEOUT must be positive, got %s", c.GrantTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	return nil
}
