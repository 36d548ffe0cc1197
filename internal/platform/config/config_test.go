package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FEED_URL": "https://docs.google.com/spreadsheets/d/abc/export?format=csv",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Feed.HomeCountry != "FR" {
		t.Errorf("expected default home country FR, got %s", cfg.Feed.HomeCountry)
	}
	if cfg.Feed.Timeout != defaultFeedTimeout {
		t.Errorf("unexpected feed timeout: %s", cfg.Feed.Timeout)
	}
	if cfg.Mail.Endpoint != defaultMailEndpoint {
		t.Errorf("unexpected mail endpoint: %s", cfg.Mail.Endpoint)
	}
	if cfg.Map.Zoom != defaultMapZoom {
		t.Errorf("unexpected default zoom: %d", cfg.Map.Zoom)
	}
	if cfg.Map.SelectionZoom != defaultMapSelectionZoom {
		t.Errorf("unexpected selection zoom: %d", cfg.Map.SelectionZoom)
	}
	if cfg.Map.FlyDuration != defaultFlyDuration {
		t.Errorf("unexpected fly duration: %s", cfg.Map.FlyDuration)
	}
	if cfg.Drawer.MinHeightPx != defaultDrawerMinHeight {
		t.Errorf("unexpected drawer min height: %v", cfg.Drawer.MinHeightPx)
	}
	if cfg.Drawer.MaxFraction != defaultDrawerMaxFraction {
		t.Errorf("unexpected drawer max fraction: %v", cfg.Drawer.MaxFraction)
	}
	if len(cfg.Tags.Available) != len(defaultTags) {
		t.Errorf("expected default tag vocabulary, got %v", cfg.Tags.Available)
	}
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"API_FEED_URL":                 "https://example.test/feed.csv",
		"API_FEED_HOME_COUNTRY":        "be",
		"API_SERVER_PORT":              "9090",
		"API_MAP_CENTER_LAT":           "50.85",
		"API_MAP_CENTER_LNG":           "4.35",
		"API_MAP_SELECTION_ZOOM":       "14",
		"API_MAP_FLY_DURATION":         "2s",
		"API_DRAWER_MIN_HEIGHT_PX":     "72",
		"API_DRAWER_SNAP_THRESHOLD_PX": "55",
		"API_TAGS_AVAILABLE":           "Arcade, Figurines ,,Goodies",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.Server.Port)
	}
	if cfg.Feed.HomeCountry != "BE" {
		t.Errorf("expected upper-cased home country BE, got %s", cfg.Feed.HomeCountry)
	}
	if cfg.Map.CenterLat != 50.85 || cfg.Map.CenterLng != 4.35 {
		t.Errorf("unexpected center: %v,%v", cfg.Map.CenterLat, cfg.Map.CenterLng)
	}
	if cfg.Map.SelectionZoom != 14 {
		t.Errorf("unexpected selection zoom: %d", cfg.Map.SelectionZoom)
	}
	if cfg.Map.FlyDuration != 2*time.Second {
		t.Errorf("unexpected fly duration: %s", cfg.Map.FlyDuration)
	}
	if cfg.Drawer.MinHeightPx != 72 {
		t.Errorf("unexpected drawer min height: %v", cfg.Drawer.MinHeightPx)
	}
	if cfg.Drawer.SnapThreshold != 55 {
		t.Errorf("unexpected snap threshold: %v", cfg.Drawer.SnapThreshold)
	}
	want := []string{"Arcade", "Figurines", "Goodies"}
	if len(cfg.Tags.Available) != len(want) {
		t.Fatalf("unexpected tags: %v", cfg.Tags.Available)
	}
	for i, tag := range want {
		if cfg.Tags.Available[i] != tag {
			t.Errorf("tag %d: expected %q, got %q", i, tag, cfg.Tags.Available[i])
		}
	}
}

func TestLoadMissingFeedURL(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	found := false
	for _, field := range validation.Fields() {
		if field == "Feed.URL" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Feed.URL in missing fields, got %v", validation.Fields())
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport API_FEED_URL=https://example.test/sheet.csv\nAPI_SERVER_PORT='3000'\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Feed.URL != "https://example.test/sheet.csv" {
		t.Errorf("unexpected feed url: %s", cfg.Feed.URL)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("expected quoted port stripped, got %s", cfg.Server.Port)
	}
}
