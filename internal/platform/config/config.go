package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second

	defaultFeedTimeout = 20 * time.Second
	defaultHomeCountry = "FR"

	defaultMailEndpoint = "https://api.emailjs.com/api/v1.0/email/send"
	defaultMailTimeout  = 10 * time.Second

	defaultMapCenterLat     = 46.603354
	defaultMapCenterLng     = 1.888334
	defaultMapZoom          = 6
	defaultMapSelectionZoom = 13
	defaultFlyDuration      = 1500 * time.Millisecond
	defaultTileLayerURL     = "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png"
	defaultTileAttribution  = "© OpenStreetMap © CARTO"
	defaultTileMaxZoom      = 19
	defaultNarrowViewportPx = 768
	defaultSelectionOffset  = 120

	defaultDrawerMinHeight   = 60
	defaultDrawerMaxFraction = 0.85
	defaultDrawerThreshold   = 40

	defaultMapLinkBase = "https://www.google.com/maps/search/?api=1&query="
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server ServerConfig
	Feed   FeedConfig
	Mail   MailConfig
	Map    MapConfig
	Drawer DrawerConfig
	Tags   TagConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FeedConfig describes the published CSV export the directory loads from.
type FeedConfig struct {
	URL         string
	Timeout     time.Duration
	HomeCountry string
}

// MailConfig holds the relay endpoint plus the fixed service/template/key
// triple the relay expects with every send.
type MailConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Timeout    time.Duration
}

// MapConfig carries the camera defaults and the tile layer handed to
// connecting surfaces.
type MapConfig struct {
	CenterLat        float64
	CenterLng        float64
	Zoom             int
	SelectionZoom    int
	FlyDuration      time.Duration
	TileLayerURL     string
	TileAttribution  string
	TileMaxZoom      int
	NarrowViewportPx int
	SelectionOffset  int
	LinkBaseURL      string
}

// DrawerConfig fixes the mobile drawer geometry and snap behaviour.
type DrawerConfig struct {
	MinHeightPx   float64
	MaxFraction   float64
	SnapThreshold float64
}

// TagConfig is the curated tag vocabulary offered by the filter bar and the
// suggestion form.
type TagConfig struct {
	Available []string
}

var defaultTags = []string{
	"Rétrogaming",
	"Next Gen",
	"Import Japon",
	"Arcade",
	"Figurines",
	"Réparations",
	"Goodies",
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Feed: FeedConfig{
			URL:         stringWithDefault(lookup, "API_FEED_URL", ""),
			Timeout:     durationWithDefault(lookup, "API_FEED_TIMEOUT", defaultFeedTimeout),
			HomeCountry: strings.ToUpper(stringWithDefault(lookup, "API_FEED_HOME_COUNTRY", defaultHomeCountry)),
		},
		Mail: MailConfig{
			Endpoint:   stringWithDefault(lookup, "API_MAIL_ENDPOINT", defaultMailEndpoint),
			ServiceID:  stringWithDefault(lookup, "API_MAIL_SERVICE_ID", ""),
			TemplateID: stringWithDefault(lookup, "API_MAIL_TEMPLATE_ID", ""),
			PublicKey:  stringWithDefault(lookup, "API_MAIL_PUBLIC_KEY", ""),
			Timeout:    durationWithDefault(lookup, "API_MAIL_TIMEOUT", defaultMailTimeout),
		},
		Map: MapConfig{
			CenterLat:        floatWithDefault(lookup, "API_MAP_CENTER_LAT", defaultMapCenterLat),
			CenterLng:        floatWithDefault(lookup, "API_MAP_CENTER_LNG", defaultMapCenterLng),
			Zoom:             intWithDefault(lookup, "API_MAP_ZOOM", defaultMapZoom),
			SelectionZoom:    intWithDefault(lookup, "API_MAP_SELECTION_ZOOM", defaultMapSelectionZoom),
			FlyDuration:      durationWithDefault(lookup, "API_MAP_FLY_DURATION", defaultFlyDuration),
			TileLayerURL:     stringWithDefault(lookup, "API_MAP_TILE_URL", defaultTileLayerURL),
			TileAttribution:  stringWithDefault(lookup, "API_MAP_TILE_ATTRIBUTION", defaultTileAttribution),
			TileMaxZoom:      intWithDefault(lookup, "API_MAP_TILE_MAX_ZOOM", defaultTileMaxZoom),
			NarrowViewportPx: intWithDefault(lookup, "API_MAP_NARROW_VIEWPORT_PX", defaultNarrowViewportPx),
			SelectionOffset:  intWithDefault(lookup, "API_MAP_SELECTION_OFFSET_PX", defaultSelectionOffset),
			LinkBaseURL:      stringWithDefault(lookup, "API_MAP_LINK_BASE_URL", defaultMapLinkBase),
		},
		Drawer: DrawerConfig{
			MinHeightPx:   floatWithDefault(lookup, "API_DRAWER_MIN_HEIGHT_PX", defaultDrawerMinHeight),
			MaxFraction:   floatWithDefault(lookup, "API_DRAWER_MAX_FRACTION", defaultDrawerMaxFraction),
			SnapThreshold: floatWithDefault(lookup, "API_DRAWER_SNAP_THRESHOLD_PX", defaultDrawerThreshold),
		},
		Tags: TagConfig{
			Available: csvWithDefault(lookup, "API_TAGS_AVAILABLE", defaultTags),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Feed.URL) == "" {
		missing = append(missing, "Feed.URL")
	}
	if len(cfg.Feed.HomeCountry) != 2 {
		missing = append(missing, "Feed.HomeCountry")
	}
	if cfg.Feed.Timeout <= 0 {
		missing = append(missing, "Feed.Timeout")
	}
	if cfg.Map.SelectionZoom <= 0 {
		missing = append(missing, "Map.SelectionZoom")
	}
	if cfg.Drawer.MinHeightPx <= 0 {
		missing = append(missing, "Drawer.MinHeightPx")
	}
	if cfg.Drawer.MaxFraction <= 0 || cfg.Drawer.MaxFraction > 1 {
		missing = append(missing, "Drawer.MaxFraction")
	}
	if cfg.Drawer.SnapThreshold <= 0 {
		missing = append(missing, "Drawer.SnapThreshold")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
