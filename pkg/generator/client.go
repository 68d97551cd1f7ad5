package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/imgutil"
	"github.com/shouni/nano-banana-studio/pkg/utils"
)

// EditClient は編集元画像とプロンプトをリモートの生成AIに送り、編集後の画像を受け取ります。
// リトライもタイムアウトも行わず、1回の呼び出しにつき1回だけ通信します。
type EditClient struct {
	aiClient ContentGenerator
	cfg      Config
	now      func() time.Time
}

// NewEditClient は EditClient を初期化します。
func NewEditClient(aiClient ContentGenerator, cfg Config) (*EditClient, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (ContentGenerator) is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &EditClient{
		aiClient: aiClient,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Model は使用するモデル名を返します。
func (c *EditClient) Model() string {
	return c.cfg.Model
}

// SubmitEdit は編集要求を送信し、最初の画像パーツを data:image/png;base64 の data URI にして返します。
func (c *EditClient) SubmitEdit(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error) {
	data, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	parts := buildParts(data, req.MIMEType, req.Prompt)
	opts := gemini.GenerateOptions{
		AspectRatio:  c.cfg.AspectRatio,
		SystemPrompt: c.cfg.SystemPrompt,
	}

	slog.InfoContext(ctx, "画像編集リクエストを送信します",
		"model", c.cfg.Model, "mime_type", req.MIMEType, "image_bytes", len(data), "prompt_length", len(req.Prompt))

	start := c.now()
	resp, err := c.aiClient.GenerateWithParts(ctx, c.cfg.Model, parts, opts)
	if err != nil {
		slog.WarnContext(ctx, "画像編集リクエストが失敗しました", "model", c.cfg.Model, "error", err)
		return nil, &domain.TransportError{Cause: err}
	}

	blob, err := parseEditResponse(ctx, resp)
	if err != nil {
		slog.WarnContext(ctx, "編集画像を取得できませんでした", "model", c.cfg.Model, "error", err)
		return nil, err
	}

	if detected := imgutil.DetectMIMEType(blob.Data); detected != outputMIMEType {
		slog.DebugContext(ctx, "返却画像は PNG ではありませんが PNG としてラベル付けします",
			"declared", blob.MIMEType, "detected", detected)
	}

	uri := utils.BuildDataURI(outputMIMEType, base64.StdEncoding.EncodeToString(blob.Data))
	slog.InfoContext(ctx, "画像編集が完了しました",
		"model", c.cfg.Model, "output_bytes", len(blob.Data), "duration", c.now().Sub(start))

	return domain.ImageResult(uri, c.now()), nil
}

var _ ImageEditor = (*EditClient)(nil)
