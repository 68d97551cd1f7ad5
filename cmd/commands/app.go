package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/urfave/cli/v3"

	"github.com/shouni/nano-banana-studio/internal/config"
	"github.com/shouni/nano-banana-studio/pkg/adapters"
	"github.com/shouni/nano-banana-studio/pkg/encoder"
	"github.com/shouni/nano-banana-studio/pkg/generator"
)

// setupLogging は --debug 指定時にデバッグレベルのハンドラーへ切り替えます。
func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// loadConfig は --config の設定を読み込み、API キーの有無を検証します。
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEditor は genai クライアントから ImageEditor を組み立てます。
func newEditor(ctx context.Context, cfg *config.Config) (*generator.EditClient, error) {
	client, err := adapters.NewGenAIClient(ctx, adapters.ClientOptions{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	gen, err := adapters.NewGenAIGeneratorFromClient(client)
	if err != nil {
		return nil, err
	}
	editor, err := generator.NewEditClient(gen, generator.Config{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		AspectRatio:  cfg.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("init edit client: %w", err)
	}
	return editor, nil
}

func newEncoder(cfg *config.Config) *encoder.Encoder {
	return encoder.NewEncoder(encoder.Options{
		MaxBytes:        cfg.Server.MaxUploadBytes,
		CompressQuality: cfg.Image.CompressQuality,
	})
}

// newLoader は URL 取得用に httpkit クライアントを注入した Loader を作ります。
// src が gs:// の場合だけ GCS クライアントを初期化し、返り値の close で解放します。
func newLoader(ctx context.Context, cfg *config.Config, src string) (*encoder.Loader, func(), error) {
	fetcher := httpkit.New(cfg.Image.FetchTimeout)
	if !strings.HasPrefix(src, "gs://") {
		return encoder.NewLoader(fetcher, nil), func() {}, nil
	}

	factory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	reader, err := factory.InputReader()
	if err != nil {
		_ = factory.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := factory.Close(); err != nil {
			slog.Warn("GCSクライアントのクローズに失敗しました", "error", err)
		}
	}
	return encoder.NewLoader(fetcher, reader), closeFn, nil
}
