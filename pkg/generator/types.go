package generator

const (
	// DefaultModel は画像編集に使用する既定のモデルです。
	DefaultModel = "gemini-2.5-flash-image"

	// 出力画像は返却されたエンコードに関わらず常に PNG としてラベル付けします。
	outputMIMEType = "image/png"
)

// Config は EditClient の設定です。
type Config struct {
	Model        string
	SystemPrompt string
	AspectRatio  string
}

// partKind はレスポンスのパーツ種別です。
type partKind int

const (
	partOther partKind = iota
	partImage
	partText
)

func (k partKind) String() string {
	switch k {
	case partImage:
		return "image"
	case partText:
		return "text"
	default:
		return "other"
	}
}
