package config

import (
	"errors"
	"fmt"
	"time"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	APIKey       string       `yaml:"api_key"`
	BaseURL      string       `yaml:"base_url"`
	Model        string       `yaml:"model"`
	SystemPrompt string       `yaml:"system_prompt"`
	AspectRatio  string       `yaml:"aspect_ratio"`
	Server       ServerConfig `yaml:"server"`
	Image        ImageConfig  `yaml:"image"`
}

// ServerConfig は HTTP API の設定です。
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// ImageConfig は編集元画像の読み込み設定です。
type ImageConfig struct {
	// CompressQuality は送信前の JPEG 再圧縮品質です（0 で無効）。
	CompressQuality int           `yaml:"compress_quality"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

const (
	DefaultModel          = "gemini-2.5-flash-image"
	DefaultAddr           = "127.0.0.1:8080"
	DefaultMaxUploadBytes = 20 << 20
	DefaultFetchTimeout   = 30 * time.Second
)

// ErrMissingAPIKey は API キーが設定されていない場合のエラーです。
var ErrMissingAPIKey = errors.New("api key is not configured (set GEMINI_API_KEY)")

// Default はデフォルト値だけを持つ Config を返します。
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Image.FetchTimeout <= 0 {
		cfg.Image.FetchTimeout = DefaultFetchTimeout
	}
}

// Validate はリモートアダプターを使う前提で設定を検証します。
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if q := c.Image.CompressQuality; q < 0 || q > 100 {
		return fmt.Errorf("image.compress_quality must be between 0 and 100, got %d", q)
	}
	return nil
}
