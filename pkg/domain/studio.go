package domain

import (
	"fmt"
	"strings"
)

// Mode は生成モード（画像 / 動画）です。
type Mode string

const (
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

// ParseMode は文字列を Mode に変換します。空文字は ModeImage として扱います。
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeImage:
		return ModeImage, nil
	case ModeVideo:
		return ModeVideo, nil
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// AspectRatio は出力のアスペクト比です。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectClassic   AspectRatio = "4:3"
	AspectTall      AspectRatio = "3:4"

	DefaultAspectRatio = AspectSquare
)

// AllAspectRatios は許可されているアスペクト比の一覧です。
var AllAspectRatios = []AspectRatio{AspectSquare, AspectLandscape, AspectPortrait, AspectClassic, AspectTall}

// Valid はアスペクト比が既知の値かどうかを返します。
func (a AspectRatio) Valid() bool {
	for _, v := range AllAspectRatios {
		if a == v {
			return true
		}
	}
	return false
}

// OrDefault は空の場合に既定値 1:1 を返します。
func (a AspectRatio) OrDefault() AspectRatio {
	if a == "" {
		return DefaultAspectRatio
	}
	return a
}

// ImageAsset はメモリ上またはストア上の 1 枚の画像です。
// Base64 と MIMEType は常に DataURL と整合します。
type ImageAsset struct {
	Base64         string `json:"base64"`
	MIMEType       string `json:"mimeType"`
	DataURL        string `json:"dataUrl"`
	MaskDisplayURL string `json:"maskDisplayUrl,omitempty"`
	MaskAPIBase64  string `json:"maskApiBase64,omitempty"`
}

// HasMask は API 用マスクが添付されているかどうかを返します。
func (a *ImageAsset) HasMask() bool {
	return a != nil && a.MaskAPIBase64 != ""
}

// WithMask はマスクを添付したコピーを返します。元の値は変更しません。
func (a ImageAsset) WithMask(displayURL, apiBase64 string) ImageAsset {
	a.MaskDisplayURL = displayURL
	a.MaskAPIBase64 = apiBase64
	return a
}

// WithoutMask はマスクを外したコピーを返します。
func (a ImageAsset) WithoutMask() ImageAsset {
	a.MaskDisplayURL = ""
	a.MaskAPIBase64 = ""
	return a
}

// GenerationRequest は 1 回の生成に必要なユーザー設定のすべてです。
type GenerationRequest struct {
	Mode           Mode         `json:"mode"`
	Prompt         string       `json:"prompt"`
	VideoPrompt    string       `json:"videoPrompt"`
	NegativePrompt string       `json:"negativePrompt"`
	ProductImages  []ImageAsset `json:"productImages"`
	SceneImage     *ImageAsset  `json:"sceneImage"`
	ContextImages  []ImageAsset `json:"contextImages"`
	AspectRatio    AspectRatio  `json:"aspectRatio"`
	ProductSize    ProductSize  `json:"productSize"`
}

// ActivePrompt はモードに応じた入力中のプロンプトを返します。
func (r GenerationRequest) ActivePrompt() string {
	if r.Mode == ModeVideo {
		return r.VideoPrompt
	}
	return r.Prompt
}

// IsEmpty はプロンプトと商品画像の両方が空かどうかを返します。
func (r GenerationRequest) IsEmpty(prompt string) bool {
	return strings.TrimSpace(prompt) == "" && len(r.ProductImages) == 0
}

// IsComposition は合成パス（商品画像 + シーン画像）に該当するかどうかを返します。
func (r GenerationRequest) IsComposition() bool {
	return r.Mode != ModeVideo && len(r.ProductImages) > 0 && r.SceneImage != nil
}

// UseAsProduct は生成結果を次の商品画像として使う状態を返します。
// シーン、プロンプト、コンテキスト画像はクリアされます。
func (r GenerationRequest) UseAsProduct(asset ImageAsset) GenerationRequest {
	r.Mode = ModeImage
	r.ProductImages = []ImageAsset{asset}
	r.SceneImage = nil
	r.Prompt = ""
	r.VideoPrompt = ""
	r.ContextImages = []ImageAsset{}
	return r
}

// Normalize は省略可能なフィールドへ既定値を入れたコピーを返します。
func (r GenerationRequest) Normalize() GenerationRequest {
	if r.Mode == "" {
		r.Mode = ModeImage
	}
	r.AspectRatio = r.AspectRatio.OrDefault()
	if r.ProductSize == "" {
		r.ProductSize = SizeSame
	}
	if r.ProductImages == nil {
		r.ProductImages = []ImageAsset{}
	}
	if r.ContextImages == nil {
		r.ContextImages = []ImageAsset{}
	}
	return r
}
