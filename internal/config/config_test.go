package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := cfg.Apply(Default()); got != Default() {
		t.Errorf("missing file changed defaults: %+v", got)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestLoadConfig_Values(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[camera]
device = 1
video = "clip.avi"
mirror = false

[detector]
python = "/opt/venv/bin/python"
min-confidence = 0.7

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	fileCfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	got := fileCfg.Apply(Default())
	want := Config{
		CameraDevice:  1,
		Video:         "clip.avi",
		Mirror:        false,
		Python:        "/opt/venv/bin/python",
		MinConfidence: 0.7,
		LogLevel:      "debug",
	}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[camera\ndevice ="), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative device", mutate: func(c *Config) { c.CameraDevice = -1 }, wantErr: true},
		{name: "confidence above one", mutate: func(c *Config) { c.MinConfidence = 1.5 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "warn level", mutate: func(c *Config) { c.LogLevel = "warn" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplate_Decodes(t *testing.T) {
	var cfg FileConfig
	if _, err := toml.Decode(Template(), &cfg); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if got := cfg.Apply(Default()); got != Default() {
		t.Errorf("commented template should not change defaults, got %+v", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got := DefaultConfigPath()
	if !strings.HasPrefix(got, "/tmp/xdg") || !strings.HasSuffix(got, filepath.Join("helpsign", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}
