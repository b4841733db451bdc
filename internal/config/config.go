package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingAPIKey    = errors.New("YouTube API key is required")
	ErrInvalidPageSize  = errors.New("page size must be positive")
	ErrUnknownSource    = errors.New("unknown video source")
	ErrMissingVideosURL = errors.New("videos API URL is required")
)

// Video sources
const (
	SourceHTTP    = "http"
	SourceYouTube = "youtube"
)

// MaxYouTubePageSize is the most results one YouTube search call returns
const MaxYouTubePageSize = 50

// Config holds the application configuration
type Config struct {
	VideosAPIURL   string
	Source         string
	YouTubeAPIKey  string
	YouTubeQuery   string
	PageSize       int
	FetchTimeout   time.Duration
	CircuitBreaker bool

	LogLevel  string
	LogFormat string
	LogOutput string

	Port           string
	AllowedOrigins []string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads the configuration through v, binding it to the environment.
// Values already set on v take precedence over the environment.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		VideosAPIURL:   strings.TrimSuffix(strings.TrimSpace(v.GetString("VIDEOS_API_URL")), "/"),
		Source:         strings.ToLower(strings.TrimSpace(v.GetString("VIDEO_SOURCE"))),
		YouTubeAPIKey:  strings.TrimSpace(v.GetString("YOUTUBE_API_KEY")),
		YouTubeQuery:   v.GetString("YOUTUBE_QUERY"),
		PageSize:       v.GetInt("PAGE_SIZE"),
		FetchTimeout:   v.GetDuration("FETCH_TIMEOUT"),
		CircuitBreaker: v.GetBool("CIRCUIT_BREAKER"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		LogOutput:      v.GetString("LOG_OUTPUT"),
		Port:           v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("VIDEOS_API_URL", "http://127.0.0.1:8000")
	v.SetDefault("VIDEO_SOURCE", SourceHTTP)
	v.SetDefault("YOUTUBE_QUERY", "cricket")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("FETCH_TIMEOUT", "8s")
	v.SetDefault("CIRCUIT_BREAKER", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stderr")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: PAGE_SIZE=%d", ErrInvalidPageSize, c.PageSize)
	}
	switch c.Source {
	case SourceHTTP:
		if c.VideosAPIURL == "" {
			return fmt.Errorf("%w: VIDEOS_API_URL environment variable is not set", ErrMissingVideosURL)
		}
	case SourceYouTube:
		if c.YouTubeAPIKey == "" {
			return fmt.Errorf("%w: YOUTUBE_API_KEY environment variable is not set", ErrMissingAPIKey)
		}
		if c.PageSize > MaxYouTubePageSize {
			return fmt.Errorf("%w: PAGE_SIZE=%d exceeds %d for the youtube source", ErrInvalidPageSize, c.PageSize, MaxYouTubePageSize)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source)
	}
	return nil
}
