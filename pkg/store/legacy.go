package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// legacyCreation は過去のすべての保存形式を受け入れる読み出し専用の形です。
type legacyCreation struct {
	Mode           domain.Mode             `json:"mode"`
	Prompt         string                  `json:"prompt"`
	VideoPrompt    string                  `json:"videoPrompt"`
	NegativePrompt string                  `json:"negativePrompt"`
	ProductImages  []domain.ImageAsset     `json:"productImages"`
	SceneImage     *domain.ImageAsset      `json:"sceneImage"`
	ContextImages  []domain.ImageAsset     `json:"contextImages"`
	AspectRatio    domain.AspectRatio      `json:"aspectRatio"`
	ProductSize    domain.ProductSize      `json:"productSize"`
	Output         domain.GenerationResult `json:"output"`
	CreatedAt      json.RawMessage         `json:"createdAt"`

	// 単一画像時代のフィールド
	ProductImage *domain.ImageAsset `json:"productImage"`
	BaseImage    *domain.ImageAsset `json:"baseImage"`
	BlendImage   *domain.ImageAsset `json:"blendImage"`
}

// NormalizeLegacyCreation は保存済みの生レコードを現在の Creation に変換します。
// 旧フィールドの解釈はすべてここに閉じ込めます。
func NormalizeLegacyCreation(id int64, raw []byte) (domain.Creation, error) {
	var lc legacyCreation
	if err := json.Unmarshal(raw, &lc); err != nil {
		return domain.Creation{}, fmt.Errorf("invalid creation payload: %w", err)
	}

	mode := lc.Mode
	if mode == "" {
		mode = domain.ModeImage
	}

	productImages := lc.ProductImages
	if productImages == nil {
		switch {
		case lc.ProductImage != nil:
			productImages = []domain.ImageAsset{*lc.ProductImage}
		case lc.BaseImage != nil:
			productImages = []domain.ImageAsset{*lc.BaseImage}
		default:
			productImages = []domain.ImageAsset{}
		}
	}

	scene := lc.SceneImage
	if scene == nil {
		scene = lc.BlendImage
	}

	videoPrompt := lc.VideoPrompt
	if videoPrompt == "" && mode == domain.ModeVideo {
		videoPrompt = lc.Prompt
	}
	prompt := ""
	if mode == domain.ModeImage {
		prompt = lc.Prompt
	}

	createdAt, err := parseCreatedAt(lc.CreatedAt)
	if err != nil {
		slog.Warn("creation has unreadable createdAt, listing it as oldest", "id", id, "error", err)
		createdAt = time.Time{}
	}

	req := domain.GenerationRequest{
		Mode:           mode,
		Prompt:         prompt,
		VideoPrompt:    videoPrompt,
		NegativePrompt: lc.NegativePrompt,
		ProductImages:  productImages,
		SceneImage:     scene,
		ContextImages:  lc.ContextImages,
		AspectRatio:    lc.AspectRatio,
		ProductSize:    lc.ProductSize,
	}

	return domain.Creation{
		ID:                id,
		GenerationRequest: req.Normalize(),
		Output:            lc.Output,
		CreatedAt:         createdAt,
	}, nil
}

// createdAtLayouts は過去に保存された文字列日時の形式です。
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// parseCreatedAt は文字列日時かエポックミリ秒を読みます。空なら zero time です。
func parseCreatedAt(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("invalid createdAt %s", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	// Date.toString() の末尾にはタイムゾーン名が付きます。
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid createdAt %q", s)
}
