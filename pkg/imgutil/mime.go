package imgutil

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MIMETypePNG = "image/png"
	imagePrefix = "image/"
)

// IsImageMIME は MIME タイプが image カテゴリかどうかを返します。
// パラメータ付き（"image/png; charset=..."）や大文字も許容します。
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(NormalizeMIME(mimeType), imagePrefix)
}

// NormalizeMIME はパラメータを除いて小文字化した MIME タイプを返します。
func NormalizeMIME(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// DetectMIMEType はバイト列の先頭からコンテンツタイプを推定します。
func DetectMIMEType(data []byte) string {
	return NormalizeMIME(http.DetectContentType(data))
}

// MIMETypeFromName はファイル名の拡張子から MIME タイプを推定します。
// 推定できない場合は空文字を返します。
func MIMETypeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case "":
		return ""
	}
	return NormalizeMIME(mime.TypeByExtension(ext))
}
