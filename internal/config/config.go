package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pratica/internal/domain"
)

const (
	DefaultCallerPort    = 3000
	DefaultResponderPort = 4000
	DefaultResponderURL  = "http://localhost:4000"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Responder ResponderConfig `mapstructure:"responder"`
	Log       LogConfig       `mapstructure:"log"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GRPCConfig configures the optional gRPC health endpoint. Port 0 disables it.
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

func (c GRPCConfig) Enabled() bool {
	return c.Port > 0
}

func (c GRPCConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ResponderConfig is only used by service-a. Timeout 0 means the outbound
// call waits as long as the inbound request stays open.
type ResponderConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RegisterFlags adds the command line flags understood by LoadConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", ".", "directory containing config.yaml")
	fs.Int("port", 0, "HTTP listen port (overrides PORT)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
}

// LoadConfig reads the configuration of the named service. Sources, from
// highest to lowest priority: flags, environment, config.yaml, defaults.
// A missing config.yaml is not an error. flags may be nil.
func LoadConfig(service string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	path := "."
	if flags != nil {
		if p, err := flags.GetString("config"); err == nil && p != "" {
			path = p
		}
	}
	v.AddConfigPath(path)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v, service)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindings := map[string]string{
		"http.port":     "PORT",
		"grpc.port":     "GRPC_PORT",
		"responder.url": "SERVICE_B_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if flags != nil {
		if f := flags.Lookup("port"); f != nil && f.Changed {
			if err := v.BindPFlag("http.port", f); err != nil {
				return nil, fmt.Errorf("error binding port flag: %w", err)
			}
		}
		if f := flags.Lookup("log-level"); f != nil && f.Changed {
			if err := v.BindPFlag("log.level", f); err != nil {
				return nil, fmt.Errorf("error binding log-level flag: %w", err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper, service string) {
	port := DefaultResponderPort
	if service == domain.CallerLabel {
		port = DefaultCallerPort
	}

	v.SetDefault("app.name", service)
	v.SetDefault("app.env", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("http.port", port)
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "30s")
	v.SetDefault("grpc.port", 0)
	v.SetDefault("responder.url", DefaultResponderURL)
	v.SetDefault("responder.timeout", "10s")
	v.SetDefault("responder.health_timeout", "2s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.GRPC.Port)
	}
	if c.GRPC.Enabled() && c.GRPC.Port == c.HTTP.Port {
		return fmt.Errorf("grpc port %d collides with http port", c.GRPC.Port)
	}
	if c.Responder.Timeout < 0 || c.Responder.HealthTimeout < 0 {
		return fmt.Errorf("responder timeouts must not be negative")
	}
	u, err := url.Parse(c.Responder.URL)
	if err != nil {
		return fmt.Errorf("invalid responder url %q: %w", c.Responder.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid responder url %q: want http(s)://host[:port]", c.Responder.URL)
	}
	return nil
}
