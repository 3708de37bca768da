package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const seatsCount = 2

var ErrInvalidBots = errors.New("exactly two bots with a name and a command are required")

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"results.db"`
	Match             Match  `yaml:"match"`
	Bots              []Bot  `yaml:"bots"`
}

type Redis struct {
	Host     string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	MatchTTL time.Duration `yaml:"match-ttl" env:"REDIS_MATCH_TTL" env-default:"0s"`
}

type Match struct {
	Timebank    time.Duration `yaml:"timebank" env:"MATCH_TIMEBANK" env-default:"10s"`
	TimePerMove time.Duration `yaml:"time-per-move" env:"MATCH_TIME_PER_MOVE" env-default:"500ms"`
	MaxRounds   int           `yaml:"max-rounds" env:"MATCH_MAX_ROUNDS" env-default:"100"`
	// KeepServing keeps the REST and websocket servers up after the match.
	KeepServing bool `yaml:"keep-serving" env:"MATCH_KEEP_SERVING" env-default:"false"`
}

// Bot - an external program speaking the line protocol, or "builtin:random".
type Bot struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	if len(that.Bots) != seatsCount {
		return fmt.Errorf("%w: got %d", ErrInvalidBots, len(that.Bots))
	}

	for _, bot := range that.Bots {
		if bot.Name == "" || bot.Command == "" {
			return ErrInvalidBots
		}
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
