package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/netarmor/securenet"

	"github.com/shouni/nano-banana-studio/pkg/imgutil"
)

// Fetcher は URL から画像データを取得するためのインターフェースです。
// httpkit のクライアントがこれを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Loader はローカルパス、http(s) URL、gs:// URI から File を作ります。
type Loader struct {
	fetcher Fetcher
	reader  remoteio.InputReader
	// URL 検証の差し替え用。テストではループバックを許可するために上書きします。
	checkURL func(string) (bool, error)
}

// NewLoader は依存関係を注入して Loader を初期化します。
// fetcher と reader は nil を許容し、その場合は対応するスキームが使えなくなります。
func NewLoader(fetcher Fetcher, reader remoteio.InputReader) *Loader {
	return &Loader{
		fetcher:  fetcher,
		reader:   reader,
		checkURL: securenet.IsSafeURL,
	}
}

// Load は src の形式に応じて画像を取得します。
func (l *Loader) Load(ctx context.Context, src string) (File, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.loadURL(ctx, src)
	case strings.HasPrefix(src, "gs://"):
		return l.loadRemote(ctx, src)
	default:
		return l.loadLocal(src)
	}
}

func (l *Loader) loadURL(ctx context.Context, rawURL string) (File, error) {
	if l.fetcher == nil {
		return File{}, fmt.Errorf("HTTPクライアントが設定されていないため URL を読み込めません: %s", rawURL)
	}
	if safe, err := l.checkURL(rawURL); err != nil || !safe {
		return File{}, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}

	data, err := l.fetcher.FetchBytes(ctx, rawURL)
	if err != nil {
		return File{}, fmt.Errorf("画像のダウンロードに失敗しました: %w", err)
	}
	return fileFromBytes(rawURL, data), nil
}

func (l *Loader) loadRemote(ctx context.Context, uri string) (File, error) {
	if l.reader == nil {
		return File{}, fmt.Errorf("リモートリーダーが設定されていないため読み込めません: %s", uri)
	}
	rc, err := l.reader.Open(ctx, uri)
	if err != nil {
		return File{}, fmt.Errorf("リモートファイルを開けませんでした: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return File{}, fmt.Errorf("リモートファイルの読み込みに失敗しました: %w", err)
	}
	return fileFromBytes(uri, data), nil
}

func (l *Loader) loadLocal(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("ファイルを読み込めませんでした: %w", err)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: declaredType(path, data),
		Body:        bytes.NewReader(data),
	}, nil
}

func fileFromBytes(uri string, data []byte) File {
	name := filepath.Base(uri)
	return File{
		Name:        name,
		ContentType: imgutil.DetectMIMEType(data),
		Body:        bytes.NewReader(data),
	}
}

// declaredType はファイル名の拡張子を優先し、推定できなければ内容から判定します。
func declaredType(name string, data []byte) string {
	if mt := imgutil.MIMETypeFromName(name); mt != "" {
		return mt
	}
	return imgutil.DetectMIMEType(data)
}
