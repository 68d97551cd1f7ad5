package domain

import (
	"strconv"
	"strings"
	"time"
)

// SourceImage はユーザーが選択した編集元画像です。
// 再選択時は丸ごと置き換えられ、削除時にクリアされます。永続化はしません。
type SourceImage struct {
	Name           string
	RawBytes       []byte
	EncodedPayload string // base64（data URI のプレフィックスなし）
	MIMEType       string
	PreviewURL     string // そのまま表示に使える data URI
}

// EditRequest は1回の編集送信の直前に組み立てられる一時的な要求です。
type EditRequest struct {
	EncodedPayload string
	MIMEType       string
	Prompt         string
}

// NewEditRequest は SourceImage とプロンプトから EditRequest を作ります。
func NewEditRequest(img *SourceImage, prompt string) EditRequest {
	return EditRequest{
		EncodedPayload: img.EncodedPayload,
		MIMEType:       img.MIMEType,
		Prompt:         prompt,
	}
}

// HasPrompt はトリム後のプロンプトが空でないかを返します。
func (r EditRequest) HasPrompt() bool {
	return strings.TrimSpace(r.Prompt) != ""
}

// ResultKind は EditResult のバリアントを表します。
type ResultKind int

const (
	ResultImage ResultKind = iota + 1
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultImage:
		return "image"
	case ResultFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// EditResult は1回の送信につき1つだけ生成される結果です。
// Kind が ResultImage のとき DataURI、ResultFailure のとき Message が有効です。
type EditResult struct {
	Kind      ResultKind
	DataURI   string
	Message   string
	CreatedAt time.Time
}

// ImageResult は成功結果を作ります。
func ImageResult(dataURI string, at time.Time) *EditResult {
	return &EditResult{Kind: ResultImage, DataURI: dataURI, CreatedAt: at}
}

// FailureResult は失敗結果を作ります。空のメッセージは汎用メッセージに置き換えます。
func FailureResult(message string, at time.Time) *EditResult {
	if strings.TrimSpace(message) == "" {
		message = DefaultFailureMessage
	}
	return &EditResult{Kind: ResultFailure, Message: message, CreatedAt: at}
}

func (r *EditResult) IsImage() bool { return r != nil && r.Kind == ResultImage }

func (r *EditResult) IsFailure() bool { return r != nil && r.Kind == ResultFailure }

// DownloadName はダウンロード時のファイル名です。
func (r *EditResult) DownloadName() string {
	return DownloadFileName(r.CreatedAt)
}

// DownloadFileName は生成時刻からダウンロード用のファイル名を作ります。
func DownloadFileName(at time.Time) string {
	return "nano-banana-edit-" + strconv.FormatInt(at.UnixMilli(), 10) + ".png"
}
