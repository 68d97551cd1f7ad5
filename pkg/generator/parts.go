package generator

import (
	"encoding/base64"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/imgutil"
)

// validateRequest は送信前に入力を検証し、デコード済みの画像バイト列を返します。
func validateRequest(req domain.EditRequest) ([]byte, error) {
	if !req.HasPrompt() {
		return nil, domain.ErrEmptyPrompt
	}
	if !imgutil.IsImageMIME(req.MIMEType) {
		return nil, domain.ErrInvalidFileType
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.EncodedPayload))
	if err != nil || len(data) == 0 {
		return nil, domain.ErrInvalidPayload
	}
	return data, nil
}

// buildParts は [インライン画像, テキスト] の順でパーツを組み立てます。
func buildParts(data []byte, mimeType, prompt string) []*genai.Part {
	return []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: imgutil.NormalizeMIME(mimeType), Data: data}},
		{Text: prompt},
	}
}
