package generator

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// ModelService は genai.Models のうち、このパッケージが利用する部分です。
type ModelService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
}

// OperationService は長時間ジョブの状態確認を担当します。
type OperationService interface {
	GetVideosOperation(ctx context.Context, operation *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

// MediaGenerator は画像・動画の生成窓口です。
type MediaGenerator interface {
	GenerateImage(ctx context.Context, prompt, negativePrompt string, aspectRatio domain.AspectRatio) (*ImageOutput, error)
	ComposeImage(ctx context.Context, req ComposeRequest) (*ComposeResult, error)
	GenerateVideo(ctx context.Context, prompt string, baseImage *domain.ImageAsset) (*VideoOperation, error)
	PollVideo(ctx context.Context, handle *VideoOperation) (*VideoOperation, error)
}

// PromptAssistant はプロンプト作成を補助するテキスト系の窓口です。
type PromptAssistant interface {
	Translate(ctx context.Context, text string) (string, error)
	BuildPrompt(ctx context.Context, kind, subject, style, details string) (string, error)
	AnalyzeForPlacement(ctx context.Context, productImages []domain.ImageAsset, sceneImage domain.ImageAsset, size domain.ProductSize) (string, error)
	AnalyzeForVideoPrompt(ctx context.Context, image domain.ImageAsset) (string, error)
	GenerateVariationPrompt(ctx context.Context, productImages []domain.ImageAsset, sceneImage *domain.ImageAsset) (string, error)
}
