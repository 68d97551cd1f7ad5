package encoder

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/imgutil"
	"github.com/shouni/nano-banana-studio/pkg/utils"
)

// File はファイル選択境界から渡される、宣言済みコンテンツタイプ付きのファイルです。
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Options は Encoder の動作設定です。
type Options struct {
	// MaxBytes は読み込むファイルの上限サイズです。0 以下なら無制限です。
	MaxBytes int64
	// CompressQuality が 1〜100 のとき、送信前に JPEG へ再エンコードします。0 なら無効です。
	CompressQuality int
}

// Encoder はユーザーが選択したファイルを SourceImage に変換します。
// セッション状態には一切触れません。
type Encoder struct {
	opts Options
}

// NewEncoder は Encoder を初期化します。
func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Encode はファイルを検証して読み込み、プレビュー用 data URI とプレフィックスなしの
// base64 ペイロードを作ります。宣言されたタイプが画像でない場合は何も読まずに
// domain.ErrInvalidFileType を返します。
func (e *Encoder) Encode(ctx context.Context, f File) (*domain.SourceImage, error) {
	if !imgutil.IsImageMIME(f.ContentType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFileType, f.ContentType)
	}
	if f.Body == nil {
		return nil, domain.ErrEmptyFile
	}

	data, err := e.readAll(ctx, f.Body)
	if err != nil {
		return nil, err
	}

	mimeType := imgutil.NormalizeMIME(f.ContentType)
	if format, w, h, err := imgutil.DecodeConfig(data); err == nil {
		slog.DebugContext(ctx, "編集元画像を読み込みました",
			"name", f.Name, "format", format, "width", w, "height", h, "bytes", len(data))
	}
	if e.opts.CompressQuality > 0 {
		if compressed, err := imgutil.CompressToJPEG(data, e.opts.CompressQuality); err == nil {
			slog.DebugContext(ctx, "編集元画像をJPEGに再圧縮しました",
				"name", f.Name, "before", len(data), "after", len(compressed))
			data = compressed
			mimeType = "image/jpeg"
		} else {
			slog.WarnContext(ctx, "画像の再圧縮に失敗したため元データを使用します", "name", f.Name, "error", err)
		}
	}

	preview := utils.BuildDataURI(mimeType, base64.StdEncoding.EncodeToString(data))
	payload, err := utils.StripDataURIPrefix(preview)
	if err != nil {
		return nil, err
	}

	return &domain.SourceImage{
		Name:           f.Name,
		RawBytes:       data,
		EncodedPayload: payload,
		MIMEType:       mimeType,
		PreviewURL:     preview,
	}, nil
}

func (e *Encoder) readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := io.Reader(&contextReader{ctx: ctx, r: r})
	if e.opts.MaxBytes > 0 {
		src = io.LimitReader(src, e.opts.MaxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
	}
	if e.opts.MaxBytes > 0 && int64(len(data)) > e.opts.MaxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", domain.ErrFileTooLarge, e.opts.MaxBytes)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	return data, nil
}

// contextReader は Read のたびに ctx のキャンセルを確認します。
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
