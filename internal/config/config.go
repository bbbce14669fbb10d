package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ServerCfg struct {
	Addr         string `yaml:"addr"`     // e.g. :8080
	DataDir      string `yaml:"data_dir"` // session uploads + rendered output
	MaxUploadMB  int    `yaml:"max_upload_mb"`
	SessionHours int    `yaml:"session_hours"` // idle sessions older than this are reaped
}

type RenderCfg struct {
	FPS     int    `yaml:"fps"`
	Aspect  string `yaml:"aspect_ratio"` // "9:16" | "1:1" | "16:9" | "4:5"
	Quality string `yaml:"quality"`      // "low" | "medium" | "high"
	Workers int    `yaml:"workers"`      // concurrent render jobs
}

type Config struct {
	LogLevel string    `yaml:"log_level"` // zerolog level name
	Server   ServerCfg `yaml:"server"`
	Render   RenderCfg `yaml:"render"`
	FFmpeg   string    `yaml:"ffmpeg,omitempty"` // binary override; empty uses PATH
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerCfg{
			Addr:         ":8080",
			DataDir:      "data",
			MaxUploadMB:  50,
			SessionHours: 24,
		},
		Render: RenderCfg{
			FPS:     30,
			Aspect:  "9:16",
			Quality: "medium",
			Workers: 2,
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
