package initializers

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port    string `env:"PORT" env-default:"5000"`
	Host    string `env:"HOST" env-default:"0.0.0.0"`
	GinMode string `env:"GIN_MODE" env-default:"debug"`

	DBURL             string        `env:"DB_URL" env-required:"true"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	DBQueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" env-default:"5s"`
	DBAutoMigrate     bool          `env:"DB_AUTO_MIGRATE" env-default:"false"`

	Secret        string        `env:"SECRET" env-required:"true"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" env-default:"1h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" env-default:"15m"`

	MaxCommentDepth int `env:"MAX_COMMENT_DEPTH" env-default:"6"`

	ChatSendBuffer int      `env:"CHAT_SEND_BUFFER" env-default:"64"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:","`
}

func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// LoadEnv loads a .env file from the working directory when one exists.
func LoadEnv() {
	err := godotenv.Load()
	if err == nil {
		return
	}
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	log.Printf("Error loading .env file: %v", err)
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Secret = strings.TrimSpace(cfg.Secret)
	if cfg.Secret == "" {
		return nil, errors.New("read config: SECRET must not be blank")
	}
	if cfg.MaxCommentDepth < 1 {
		return nil, fmt.Errorf("read config: MAX_COMMENT_DEPTH must be at least 1, got %d", cfg.MaxCommentDepth)
	}
	if cfg.ChatSendBuffer < 1 {
		return nil, fmt.Errorf("read config: CHAT_SEND_BUFFER must be at least 1, got %d", cfg.ChatSendBuffer)
	}

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins

	return &cfg, nil
}
