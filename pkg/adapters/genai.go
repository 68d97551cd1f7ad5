package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/nano-banana-studio/pkg/generator"
)

// ModelsClient は genai.Models のうち、このパッケージが利用するメソッドだけを抽象化したものです。
type ModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientOptions は genai クライアントの生成設定です。
type ClientOptions struct {
	APIKey string
	// BaseURL はエンドポイントの差し替え用です（空なら SDK の既定値）。
	BaseURL    string
	HTTPClient *http.Client
}

// NewGenAIClient は Gemini API バックエンドの genai.Client を作ります。
// 認証情報は環境変数ではなく opts から明示的に渡します。
func NewGenAIClient(ctx context.Context, opts ClientOptions) (*genai.Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// GenAIGenerator は genai SDK を使って generator.ContentGenerator を実装するアダプターです。
type GenAIGenerator struct {
	models ModelsClient
}

// NewGenAIGenerator は GenAIGenerator を初期化します。
func NewGenAIGenerator(models ModelsClient) (*GenAIGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("models (ModelsClient) is required")
	}
	return &GenAIGenerator{models: models}, nil
}

// NewGenAIGeneratorFromClient は genai.Client から GenAIGenerator を作ります。
func NewGenAIGeneratorFromClient(client *genai.Client) (*GenAIGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("client (*genai.Client) is required")
	}
	return NewGenAIGenerator(client.Models)
}

// GenerateWithParts はパーツを1つのユーザーターンとして送信し、生のレスポンスを返します。
func (g *GenAIGenerator) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, model, contents, buildConfig(opts))
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}

func buildConfig(opts gemini.GenerateOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemPrompt}},
		}
	}
	if opts.AspectRatio != "" {
		config.ImageConfig = &genai.ImageConfig{AspectRatio: opts.AspectRatio}
	}
	return config
}

var _ generator.ContentGenerator = (*GenAIGenerator)(nil)
