package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 環境変数名
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
	EnvModel          = "NANOBANANA_MODEL"
	EnvAddr           = "NANOBANANA_ADDR"
	EnvBaseURL        = "NANOBANANA_BASE_URL"
)

// LoadDotenv は .env を読み込みます。既存の環境変数は上書きせず、ファイルがなければ何もしません。
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load dotenv %s: %w", p, err)
		}
	}
	return nil
}

// Load は YAML 設定ファイルを読み込み、環境変数で上書きしてデフォルト値を補います。
// path が空の場合はファイルを読まずに環境変数とデフォルト値だけで組み立てます。
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	} else if v := os.Getenv(EnvAPIKeyFallback); v != "" && cfg.APIKey == "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
}
