package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/nano-banana-studio/pkg/domain"
)

func TestEncoder_Encode(t *testing.T) {
	ctx := context.Background()
	pngData := createPNG(t)

	t.Run("画像ファイルからプレビューとペイロードを作る", func(t *testing.T) {
		enc := NewEncoder(Options{})
		img, err := enc.Encode(ctx, File{Name: "cat.png", ContentType: "image/png", Body: bytes.NewReader(pngData)})
		require.NoError(t, err)

		want := base64.StdEncoding.EncodeToString(pngData)
		assert.Equal(t, want, img.EncodedPayload)
		assert.Equal(t, "data:image/png;base64,"+want, img.PreviewURL)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, pngData, img.RawBytes)
		assert.Equal(t, "cat.png", img.Name)
		assert.False(t, strings.Contains(img.EncodedPayload, ","), "payload must not carry the data URI prefix")
	})

	t.Run("text/plain は InvalidFileType になりボディを読まない", func(t *testing.T) {
		enc := NewEncoder(Options{})
		body := strings.NewReader("hello")
		img, err := enc.Encode(ctx, File{Name: "notes.txt", ContentType: "text/plain", Body: body})

		assert.Nil(t, img)
		assert.ErrorIs(t, err, domain.ErrInvalidFileType)
		assert.Equal(t, 5, body.Len(), "body should be untouched")
	})

	t.Run("空ファイルはエラー", func(t *testing.T) {
		enc := NewEncoder(Options{})
		_, err := enc.Encode(ctx, File{ContentType: "image/png", Body: bytes.NewReader(nil)})
		assert.ErrorIs(t, err, domain.ErrEmptyFile)
	})

	t.Run("読み込みエラーはそのまま失敗になる", func(t *testing.T) {
		enc := NewEncoder(Options{})
		img, err := enc.Encode(ctx, File{ContentType: "image/jpeg", Body: errReader{}})
		assert.Nil(t, img)
		assert.ErrorContains(t, err, "disk on fire")
	})

	t.Run("上限サイズを超えるとエラー", func(t *testing.T) {
		enc := NewEncoder(Options{MaxBytes: 8})
		_, err := enc.Encode(ctx, File{ContentType: "image/png", Body: bytes.NewReader(pngData)})
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})

	t.Run("キャンセル済みのコンテキストでは読み込まない", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		enc := NewEncoder(Options{})
		_, err := enc.Encode(cctx, File{ContentType: "image/png", Body: bytes.NewReader(pngData)})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("圧縮が有効ならJPEGとして返す", func(t *testing.T) {
		enc := NewEncoder(Options{CompressQuality: 60})
		img, err := enc.Encode(ctx, File{ContentType: "image/png", Body: bytes.NewReader(pngData)})
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.MIMEType)
		assert.True(t, strings.HasPrefix(img.PreviewURL, "data:image/jpeg;base64,"))
	})

	t.Run("パラメータ付きのタイプは正規化される", func(t *testing.T) {
		enc := NewEncoder(Options{})
		img, err := enc.Encode(ctx, File{ContentType: "Image/PNG; q=1", Body: bytes.NewReader(pngData)})
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
	})
}
