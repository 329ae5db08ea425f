package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pion/webrtc/v4"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string

	// StaticDir holds the browser client; UploadDir receives chat images.
	StaticDir      string
	UploadDir      string
	UploadMaxBytes int64

	// STUNServers is handed to clients verbatim; the server never opens a
	// WebRTC connection itself.
	STUNServers []webrtc.ICEServer

	Redis RedisConfig
}

type RedisConfig struct {
	// Disabled turns the presence mirror off entirely; signaling works
	// without Redis, the mirror is observability only.
	Disabled bool
	Host     string
	Port     string
	Password string
	DB       int
}

// defaultSTUNURLs are Google's public STUN servers, used when STUN_URLS
// is not set.
var defaultSTUNURLs = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

func Load() (*Config, error) {
	// Parse allowed origins (comma-separated)
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	origins := strings.Split(originsStr, ",")

	maxBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "5242880"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be a positive integer")
	}

	stunServers, err := ParseSTUNURLs(os.Getenv("STUN_URLS"))
	if err != nil {
		return nil, fmt.Errorf("STUN_URLS: %w", err)
	}

	return &Config{
		Port:           getEnv("PORT", "3000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: origins,
		StaticDir:      getEnv("STATIC_DIR", "public"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: maxBytes,
		STUNServers:    stunServers,
		Redis: RedisConfig{
			Disabled: getEnv("REDIS_DISABLED", "false") == "true",
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
	}, nil
}

// ParseSTUNURLs turns a comma-separated STUN URL list into ICE server
// entries for clients. Only stun:/stuns: schemes are accepted; relaying
// through TURN is deliberately unsupported, so a turn: URL is a config
// error rather than something to pass through silently. An empty value
// falls back to the default public servers.
func ParseSTUNURLs(raw string) ([]webrtc.ICEServer, error) {
	urls := defaultSTUNURLs
	if strings.TrimSpace(raw) != "" {
		urls = nil
		for _, u := range strings.Split(raw, ",") {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			urls = append(urls, u)
		}
		if len(urls) == 0 {
			return nil, fmt.Errorf("no usable URLs")
		}
	}

	out := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		lower := strings.ToLower(u)
		if !strings.HasPrefix(lower, "stun:") && !strings.HasPrefix(lower, "stuns:") {
			return nil, fmt.Errorf("%q: only stun: and stuns: URLs are supported", u)
		}
		out = append(out, webrtc.ICEServer{URLs: []string{u}})
	}
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
