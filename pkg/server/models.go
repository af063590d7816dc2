package server

import (
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
)

// ErrorResponse はすべての失敗応答の形です。
type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	InFlight bool `json:"inFlight"`
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type VideoPromptResponse struct {
	Prompt    string `json:"prompt"`
	Generated bool   `json:"generated"`
}

type TranslateRequest struct {
	Text string `json:"text"`
}

type TranslateResponse struct {
	Text string `json:"text"`
}

type BuildPromptRequest struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject" binding:"required"`
	Style   string `json:"style"`
	Details string `json:"details"`
}

type PlacementPromptRequest struct {
	ProductImages []domain.ImageAsset `json:"productImages" binding:"required,min=1"`
	SceneImage    *domain.ImageAsset  `json:"sceneImage" binding:"required"`
	ProductSize   domain.ProductSize  `json:"productSize"`
}

type PromptResponse struct {
	Prompt string `json:"prompt"`
}

type UseAsProductRequest struct {
	Request domain.GenerationRequest `json:"request"`
	Output  domain.GenerationResult  `json:"output"`
}

// MaskRequest は画面上の塗りをシーン画像のマスクにするリクエストです。
type MaskRequest struct {
	SceneImage    domain.ImageAsset `json:"sceneImage"`
	DisplayWidth  int               `json:"displayWidth"`
	DisplayHeight int               `json:"displayHeight"`
	Strokes       []imgutil.Stroke  `json:"strokes"`
}

type LoginResponse struct {
	URL string `json:"url"`
}

type SessionResponse struct {
	Enabled bool                `json:"enabled"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
}
