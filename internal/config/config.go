package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config covers process level configuration read from the environment.
// The reviewer settings (mount points, review folder) live in the settings
// document instead, see SettingsStore.
type Config struct {
	Environment       string
	HTTPBind          string
	HTTPPort          int
	SettingsFile      string
	ThumbnailDir      string
	ThumbnailSize     int
	StaticDir         string // empty disables serving a UI
	FFmpegBin         string
	VideoFrameTimeout time.Duration
}

// Load reads an optional .env file, then environment variables, applies
// defaults, and validates the result.
func Load() (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:       getEnv("PHOTOREVIEW_ENV", "development"),
		HTTPBind:          getEnv("PHOTOREVIEW_HTTP_BIND", "0.0.0.0"),
		HTTPPort:          getEnvInt("PHOTOREVIEW_HTTP_PORT", 5500),
		SettingsFile:      getEnv("PHOTOREVIEW_SETTINGS_FILE", "config.json"),
		ThumbnailDir:      getEnv("PHOTOREVIEW_THUMBNAIL_DIR", "static/thumbnails"),
		ThumbnailSize:     getEnvInt("PHOTOREVIEW_THUMBNAIL_SIZE", 300),
		StaticDir:         getEnv("PHOTOREVIEW_STATIC_DIR", ""),
		FFmpegBin:         getEnv("PHOTOREVIEW_FFMPEG_BIN", "ffmpeg"),
		VideoFrameTimeout: time.Duration(getEnvInt("PHOTOREVIEW_VIDEO_FRAME_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default away.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTPPort)
	}
	if strings.TrimSpace(c.SettingsFile) == "" {
		return fmt.Errorf("settings file path is required")
	}
	if strings.TrimSpace(c.ThumbnailDir) == "" {
		return fmt.Errorf("thumbnail dir is required")
	}
	if c.ThumbnailSize < 16 || c.ThumbnailSize > 4096 {
		return fmt.Errorf("thumbnail size %d out of range [16, 4096]", c.ThumbnailSize)
	}
	if c.VideoFrameTimeout <= 0 {
		return fmt.Errorf("video frame timeout must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
