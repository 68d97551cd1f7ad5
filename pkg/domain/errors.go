package domain

import (
	"errors"
)

// DefaultFailureMessage は原因メッセージが空のときにユーザーへ表示する文言です。
const DefaultFailureMessage = "Something went wrong while generating the image."

var (
	// ErrInvalidFileType は選択されたファイルが画像ではない場合のエラーです。
	ErrInvalidFileType = errors.New("please upload an image file")
	// ErrEmptyFile は読み込んだファイルが空の場合のエラーです。
	ErrEmptyFile = errors.New("image file is empty")
	// ErrFileTooLarge は読み込んだファイルが上限サイズを超えた場合のエラーです。
	ErrFileTooLarge = errors.New("image file is too large")
	// ErrInvalidPayload は base64 ペイロードが不正な場合のエラーです。
	ErrInvalidPayload = errors.New("image payload is not valid base64 image data")
	// ErrEmptyPrompt はプロンプトが空の場合のエラーです。
	ErrEmptyPrompt = errors.New("prompt must not be empty")

	// ErrEmptyResponse はレスポンスに候補が1件も含まれない場合のエラーです。
	ErrEmptyResponse = errors.New("No candidates returned from Gemini.")
	// ErrNoImageData は最初の候補に画像もテキストも含まれない場合のエラーです。
	ErrNoImageData = errors.New("No image data found in response.")

	// ErrBusy は Loading 中に再送信された場合のエラーです。
	ErrBusy = errors.New("an edit request is already in flight")
	// ErrNotReady は画像またはプロンプトが揃っていない状態で送信された場合のエラーです。
	ErrNotReady = errors.New("an image and a non-empty prompt are required")
	// ErrNoImage は編集結果の画像が存在しない場合のエラーです。
	ErrNoImage = errors.New("no edited image available")
)

// RefusalError はモデルが画像の代わりに説明テキストを返した場合のエラーです。
// Error() はテキストをそのまま返すため、ユーザーはプロンプトを調整できます。
type RefusalError struct {
	Text string
}

func (e *RefusalError) Error() string {
	return e.Text
}

// TransportError は通信・サービス側の失敗をラップします。
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause == nil {
		return DefaultFailureMessage
	}
	return e.Cause.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// UserMessage はエラーをユーザー向けのメッセージ文字列に変換します。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}
