package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultPath = "eugene.toml"

const (
	EgressHTTP = "http"
	EgressWS   = "ws"
	EgressAuto = "auto"
)

// AppConfig is read from the config file first; environment variables win.
type AppConfig struct {
	IrisBaseURL string `toml:"iris_base_url" env:"IRIS_BASE_URL"`
	IrisWSURL   string `toml:"iris_ws_url" env:"IRIS_WS_URL"`

	BotPrefix string `toml:"bot_prefix" env:"BOT_PREFIX" env-default:"~"`
	// BotStatus is the "playing" text shown in help.
	BotStatus string `toml:"bot_status" env:"BOT_STATUS" env-default:"tic tac toe"`

	XUserID    string `toml:"x_user_id" env:"X_USER_ID"`
	XUserEmail string `toml:"x_user_email" env:"X_USER_EMAIL"`
	XSessionID string `toml:"x_session_id" env:"X_SESSION_ID"`

	AllowedRooms []string `toml:"allowed_rooms" env:"ALLOWED_ROOMS" env-separator:","`
	OwnerID      string   `toml:"owner_id" env:"OWNER_ID"`

	RedisURL   string `toml:"redis_url" env:"REDIS_URL"`
	ResultsDSN string `toml:"results_dsn" env:"RESULTS_DSN"`

	MaxConcurrentGames int           `toml:"max_concurrent_games" env:"MAX_CONCURRENT_GAMES" env-default:"200"`
	GameIdleTimeout    time.Duration `toml:"game_idle_timeout" env:"GAME_IDLE_TIMEOUT" env-default:"1h"`
	SweepInterval      time.Duration `toml:"sweep_interval" env:"SWEEP_INTERVAL" env-default:"1m"`

	BoardImage bool   `toml:"board_image" env:"BOARD_IMAGE" env-default:"false"`
	EgressMode string `toml:"egress_mode" env:"EGRESS_MODE" env-default:"http"`
	// DryRun logs WebSocket replies instead of writing them.
	DryRun bool `toml:"dry_run" env:"DRY_RUN" env-default:"false"`

	MessagesDir string `toml:"messages_dir" env:"MESSAGES_DIR"`
	FactsFile   string `toml:"facts_file" env:"FACTS_FILE"`
}

func (c *AppConfig) Prefix() string { return c.BotPrefix }

// defaultFile is what a fresh config file contains.
type defaultFile struct {
	BotPrefix          string `toml:"bot_prefix"`
	BotStatus          string `toml:"bot_status"`
	MaxConcurrentGames int    `toml:"max_concurrent_games"`
	GameIdleTimeout    string `toml:"game_idle_timeout"`
	BoardImage         bool   `toml:"board_image"`
	EgressMode         string `toml:"egress_mode"`
}

// Load reads path (DefaultPath when empty), creating it with defaults if missing,
// and applies environment overrides.
func Load(path string) (*AppConfig, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	cfg := &AppConfig{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefaults(path); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefaults creates path with the default settings.
func WriteDefaults(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	defaults := defaultFile{
		BotPrefix:          "~",
		BotStatus:          "tic tac toe",
		MaxConcurrentGames: 200,
		GameIdleTimeout:    "1h",
		BoardImage:         false,
		EgressMode:         EgressHTTP,
	}
	if err := toml.NewEncoder(f).Encode(defaults); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *AppConfig) normalize() {
	c.IrisBaseURL = strings.TrimSpace(c.IrisBaseURL)
	c.IrisWSURL = strings.TrimSpace(c.IrisWSURL)
	c.BotPrefix = strings.TrimSpace(c.BotPrefix)
	c.OwnerID = strings.TrimSpace(c.OwnerID)
	c.EgressMode = strings.ToLower(strings.TrimSpace(c.EgressMode))

	rooms := c.AllowedRooms[:0]
	for _, r := range c.AllowedRooms {
		if s := strings.TrimSpace(r); s != "" {
			rooms = append(rooms, s)
		}
	}
	c.AllowedRooms = rooms
}

func (c *AppConfig) Validate() error {
	if c.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required")
	}
	if c.IrisWSURL == "" {
		return errors.New("IRIS_WS_URL is required")
	}
	if c.BotPrefix == "" {
		return errors.New("BOT_PREFIX is required")
	}
	if c.MaxConcurrentGames < 0 {
		return fmt.Errorf("MAX_CONCURRENT_GAMES must not be negative: %d", c.MaxConcurrentGames)
	}
	switch c.EgressMode {
	case EgressHTTP, EgressWS, EgressAuto:
	default:
		return fmt.Errorf("EGRESS_MODE must be http, ws or auto: %q", c.EgressMode)
	}
	return nil
}

// RoomAllowed reports whether room may talk to the bot. An empty list allows all rooms.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}
