package generator

import (
	"context"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/nano-banana-studio/pkg/domain"
)

// classifyPart はパーツが何を運んでいるかを判定します。
// 画像データを優先し、空の InlineData は画像として扱いません。
func classifyPart(p *genai.Part) partKind {
	switch {
	case p == nil:
		return partOther
	case p.InlineData != nil && len(p.InlineData.Data) > 0:
		return partImage
	case p.Text != "":
		return partText
	default:
		return partOther
	}
}

// parseEditResponse はレスポンスから最初の画像パーツを取り出します。
// 画像がなくテキストがある場合はモデルの拒否として RefusalError を返します。
func parseEditResponse(ctx context.Context, resp *gemini.Response) (*genai.Blob, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, domain.ErrEmptyResponse
	}

	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.RawResponse.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil, domain.ErrNoImageData
	}

	var refusal string
	for _, part := range candidate.Content.Parts {
		switch classifyPart(part) {
		case partImage:
			return part.InlineData, nil
		case partText:
			if refusal == "" {
				refusal = part.Text
			}
		}
	}

	if refusal != "" {
		return nil, &domain.RefusalError{Text: refusal}
	}

	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		slog.WarnContext(ctx, "画像もテキストも返されませんでした", "finish_reason", candidate.FinishReason)
	}
	return nil, domain.ErrNoImageData
}
