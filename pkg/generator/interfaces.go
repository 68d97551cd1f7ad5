package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/nano-banana-studio/pkg/domain"
)

// ContentGenerator はリモートの生成AIに対して1回のリクエストを送る境界です。
// gemini.GenerativeModel の GenerateWithParts と同じシグネチャなので、そのまま差し替えられます。
type ContentGenerator interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ImageEditor はセッション層が利用する画像編集の窓口です。
type ImageEditor interface {
	// SubmitEdit は編集要求を1回だけ送信し、成功時は画像の結果を、失敗時は型付きエラーを返します。
	SubmitEdit(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error)
}
