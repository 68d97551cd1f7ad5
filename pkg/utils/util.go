package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURIPrefix = "data:"

// BuildDataURI は MIME タイプと base64 ペイロードから data URI を組み立てます。
func BuildDataURI(mimeType, payload string) string {
	return dataURIPrefix + mimeType + ";base64," + payload
}

// EncodeDataURI はバイト列を base64 エンコードして data URI にします。
func EncodeDataURI(mimeType string, data []byte) string {
	return BuildDataURI(mimeType, base64.StdEncoding.EncodeToString(data))
}

// StripDataURIPrefix は data URI から最初のカンマまでを取り除き、ペイロードだけを返します。
// カンマを含まない場合はエラーを返します。
func StripDataURIPrefix(uri string) (string, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return "", fmt.Errorf("data URI にカンマが含まれていません")
	}
	return payload, nil
}

// ParseDataURI は base64 形式の data URI を MIME タイプとペイロードに分解します。
func ParseDataURI(uri string) (mimeType, payload string, err error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", "", fmt.Errorf("data URI ではありません")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, dataURIPrefix), ",")
	if !ok {
		return "", "", fmt.Errorf("data URI にカンマが含まれていません")
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("base64 エンコードの data URI ではありません: %s", header)
	}
	return mimeType, payload, nil
}

// DecodeDataURI は data URI をデコードしてバイト列を返します。
func DecodeDataURI(uri string) (string, []byte, error) {
	mimeType, payload, err := ParseDataURI(uri)
	if err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("base64 デコード失敗: %w", err)
	}
	return mimeType, data, nil
}
