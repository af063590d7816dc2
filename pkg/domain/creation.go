package domain

import (
	"fmt"
	"time"
)

// OutputKind は生成結果の種類です。
type OutputKind string

const (
	OutputImage OutputKind = "image"
	OutputVideo OutputKind = "video"
)

// GenerationResult は成功した生成の出力です。
// Text は合成パスでモデルがコメントを返した場合のみ入ります。
type GenerationResult struct {
	Type OutputKind `json:"type"`
	Src  string     `json:"src"`
	Text string     `json:"text,omitempty"`
}

// Creation は保存された 1 回分の生成記録です。ID はストアが採番します。
type Creation struct {
	ID int64 `json:"id,omitempty"`
	GenerationRequest
	Output    GenerationResult `json:"output"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewCreation はリクエストのスナップショットと結果から未採番の Creation を作ります。
func NewCreation(req GenerationRequest, out GenerationResult, at time.Time) Creation {
	snapshot := req
	snapshot.ProductImages = append([]ImageAsset(nil), req.ProductImages...)
	snapshot.ContextImages = append([]ImageAsset(nil), req.ContextImages...)
	if req.SceneImage != nil {
		scene := *req.SceneImage
		snapshot.SceneImage = &scene
	}
	return Creation{
		GenerationRequest: snapshot.Normalize(),
		Output:            out,
		CreatedAt:         at.UTC(),
	}
}

// InspoCategory はインスピレーション画像の分類タグです。
type InspoCategory string

const (
	CategoryLuxury      InspoCategory = "Luxuoso"
	CategoryDecor       InspoCategory = "Decor"
	CategoryFashion     InspoCategory = "Fashion"
	CategoryAdvertising InspoCategory = "Publicitário"
)

// AllInspoCategories は閉じた分類タグの一覧です。
var AllInspoCategories = []InspoCategory{CategoryLuxury, CategoryDecor, CategoryFashion, CategoryAdvertising}

// ParseInspoCategory は文字列を分類タグに変換します。
func ParseInspoCategory(s string) (InspoCategory, error) {
	for _, c := range AllInspoCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown inspiration category: %q", s)
}

// InspoImage は生成履歴から独立した参考シーン画像です。
type InspoImage struct {
	ID       int64         `json:"id,omitempty"`
	Src      string        `json:"src"`
	Alt      string        `json:"alt"`
	Category InspoCategory `json:"category"`
}

// UserProfile は ID プロバイダから取得したプロフィールです。
type UserProfile struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Locale        string `json:"locale"`
}
