package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"TTT_LOG_LEVEL" env-default:"info"`
	HTTP      HTTP      `yaml:"http"`
	Game      Game      `yaml:"game"`
	Telemetry Telemetry `yaml:"otel"`
}

type HTTP struct {
	Addr         string        `yaml:"addr" env:"TTT_HTTP_ADDR" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read-timeout" env:"TTT_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"TTT_HTTP_WRITE_TIMEOUT" env-default:"10s"`
}

type Game struct {
	// ComputerDelay paces the computer reply on WebSocket sessions.
	ComputerDelay time.Duration `yaml:"computer-delay" env:"TTT_COMPUTER_DELAY"`
	Difficulty    string        `yaml:"difficulty" env:"TTT_DIFFICULTY" env-default:"hard"`
	// SessionTTL of zero keeps idle sessions forever.
	SessionTTL    time.Duration `yaml:"session-ttl" env:"TTT_SESSION_TTL"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"TTT_SWEEP_INTERVAL" env-default:"1m"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"TTT_OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"TTT_OTEL_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName string `yaml:"service-name" env:"TTT_OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	// Stdout additionally pretty-prints spans to standard output.
	Stdout bool `yaml:"stdout" env:"TTT_OTEL_STDOUT" env-default:"false"`
}

// Load reads the YAML file at path with environment overrides. A missing
// file is not an error: the configuration then comes from the environment and
// the defaults alone.
func Load(path string) (*Config, error) {
	config := defaults()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return config.validated()
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}
	return config.validated()
}

// defaults holds the fields where zero is a meaningful setting. cleanenv
// applies env-default to any zero field, so these are filled in up front.
func defaults() *Config {
	return &Config{
		Game: Game{
			ComputerDelay: 500 * time.Millisecond,
			SessionTTL:    30 * time.Minute,
		},
	}
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func (that *Config) validated() (*Config, error) {
	if that.Game.ComputerDelay < 0 {
		return nil, fmt.Errorf("game.computer-delay must not be negative, got %s", that.Game.ComputerDelay)
	}
	if that.Game.SweepInterval <= 0 {
		return nil, fmt.Errorf("game.sweep-interval must be positive, got %s", that.Game.SweepInterval)
	}
	return that, nil
}
