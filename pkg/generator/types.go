package generator

import (
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

const (
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultEditModel  = "gemini-2.5-flash-image-preview"
	DefaultVideoModel = "veo-2.0-generate-001"
	DefaultTextModel  = "gemini-2.5-flash"

	outputMIMEType = "image/png"
)

// Models は用途ごとのモデル名です。
type Models struct {
	Image string `yaml:"image"`
	Edit  string `yaml:"edit"`
	Video string `yaml:"video"`
	Text  string `yaml:"text"`
}

// DefaultModels は既定のモデル構成を返します。
func DefaultModels() Models {
	return Models{
		Image: DefaultImageModel,
		Edit:  DefaultEditModel,
		Video: DefaultVideoModel,
		Text:  DefaultTextModel,
	}
}

// WithDefaults は空のモデル名を既定値で埋めます。
func (m Models) WithDefaults() Models {
	d := DefaultModels()
	if m.Image == "" {
		m.Image = d.Image
	}
	if m.Edit == "" {
		m.Edit = d.Edit
	}
	if m.Video == "" {
		m.Video = d.Video
	}
	if m.Text == "" {
		m.Text = d.Text
	}
	return m
}

// ImageOutput は API 応答から取り出した画像です。
type ImageOutput struct {
	Data     []byte
	MimeType string
}

// ComposeRequest は合成（画像編集）1 回分の入力です。
type ComposeRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    domain.AspectRatio
	ProductImages  []domain.ImageAsset
	SceneImage     *domain.ImageAsset
	ContextImages  []domain.ImageAsset
	// Mask は白が対象領域、黒がそれ以外の PNG です。nil なら送りません。
	Mask []byte
}

// ComposeResult は合成の結果です。モデルは画像、コメント、その両方を返し得ます。
type ComposeResult struct {
	Image *ImageOutput
	Text  string
}

// VideoOperation は動画生成ジョブのハンドルです。
type VideoOperation struct {
	Name     string
	Done     bool
	VideoURI string
	// Err はジョブが上流で失敗した場合に入ります。
	Err error

	op *genai.GenerateVideosOperation
}

// GenerationError は上流呼び出しの失敗、または使えない応答を表します。
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// TranslationError は翻訳の失敗を表します。
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// ErrNoImageReturned は応答に画像データが含まれなかったことを示します。
var ErrNoImageReturned = errors.New("no image returned by model")
