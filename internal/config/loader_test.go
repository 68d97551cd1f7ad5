package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIKey, EnvAPIKeyFallback, EnvModel, EnvAddr, EnvBaseURL} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
api_key: file-key
system_prompt: keep the subject's face unchanged
aspect_ratio: "1:1"
server:
  addr: 0.0.0.0:9999
image:
  compress_quality: 85
  fetch_timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "keep the subject's face unchanged", cfg.SystemPrompt)
	assert.Equal(t, "1:1", cfg.AspectRatio)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Addr)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 85, cfg.Image.CompressQuality)
	assert.Equal(t, 5*time.Second, cfg.Image.FetchTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "api_key: file-key\nmodel: file-model\n")

	t.Run("GEMINI_API_KEY がファイルより優先される", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")
		t.Setenv(EnvModel, "env-model")
		t.Setenv(EnvAddr, ":7000")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, "env-model", cfg.Model)
		assert.Equal(t, ":7000", cfg.Server.Addr)
	})

	t.Run("API_KEY はフォールバックとしてだけ使われる", func(t *testing.T) {
		t.Setenv(EnvAPIKeyFallback, "fallback-key")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.APIKey)

		cfg, err = Load("")
		require.NoError(t, err)
		assert.Equal(t, "fallback-key", cfg.APIKey)
	})
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, "broken.yaml", "server: [unclosed")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	// 空文字でも定義済みの変数は godotenv が上書きしないため、未定義に戻す
	os.Unsetenv(EnvAPIKey)
	os.Unsetenv(EnvModel)
	path := writeFile(t, ".env", "GEMINI_API_KEY=dotenv-key\nNANOBANANA_MODEL=\"quoted-model\"\n")

	require.NoError(t, LoadDotenv(path))
	t.Cleanup(func() {
		os.Unsetenv(EnvAPIKey)
		os.Unsetenv(EnvModel)
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
	assert.Equal(t, "quoted-model", cfg.Model)

	assert.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "absent.env")), "ファイルがなければ何もしない")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Image.CompressQuality = 101
	assert.Error(t, cfg.Validate())
}
