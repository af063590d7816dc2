package generator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// Translate はポルトガル語の短文を英語に翻訳します。空白だけの入力はそのまま返します。
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	out, err := c.generateText(ctx, "translate", []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(translatePrompt, text)),
	})
	if err != nil {
		return "", &TranslationError{Err: err}
	}
	return out, nil
}

// BuildPrompt はキーワードから説明的な画像プロンプトを組み立てます。
func (c *Client) BuildPrompt(ctx context.Context, kind, subject, style, details string) (string, error) {
	return c.generateText(ctx, "build prompt", []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(buildPromptTemplate, kind, subject, style, details)),
	})
}

// AnalyzeForPlacement は商品画像（複数アングル）とシーン画像から合成指示を作り、
// サイズ指定に対応する固定の文を末尾に付け加えます。
func (c *Client) AnalyzeForPlacement(ctx context.Context, productImages []domain.ImageAsset, sceneImage domain.ImageAsset, size domain.ProductSize) (string, error) {
	if size == "" {
		size = domain.SizeSame
	}
	clause, err := size.Clause()
	if err != nil {
		return "", err
	}
	if len(productImages) == 0 {
		return "", fmt.Errorf("at least one product image is required")
	}

	parts := []*genai.Part{genai.NewPartFromText(placementSystemPrompt)}
	for i, img := range productImages {
		p, err := toPart(img)
		if err != nil {
			return "", fmt.Errorf("product image %d: %w", i+1, err)
		}
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Product Image (angle %d of %d):", i+1, len(productImages))), p)
	}
	scene, err := toPart(sceneImage)
	if err != nil {
		return "", fmt.Errorf("scene image: %w", err)
	}
	parts = append(parts, genai.NewPartFromText("Scene Image:"), scene)

	base, err := c.generateText(ctx, "analyze for placement", parts)
	if err != nil {
		return "", err
	}
	return joinNonEmpty(base, clause), nil
}

// AnalyzeForVideoPrompt は静止画から動きのある動画プロンプトを作ります。
func (c *Client) AnalyzeForVideoPrompt(ctx context.Context, image domain.ImageAsset) (string, error) {
	p, err := toPart(image)
	if err != nil {
		return "", fmt.Errorf("image: %w", err)
	}
	return c.generateText(ctx, "analyze for video prompt", []*genai.Part{
		genai.NewPartFromText(videoPromptInstruction),
		p,
	})
}

// GenerateVariationPrompt は同じ画像を使う別案のプロンプトを作ります。
func (c *Client) GenerateVariationPrompt(ctx context.Context, productImages []domain.ImageAsset, sceneImage *domain.ImageAsset) (string, error) {
	if len(productImages) == 0 {
		return "", fmt.Errorf("at least one product image is required")
	}

	parts := []*genai.Part{genai.NewPartFromText(variationInstruction)}
	for i, img := range productImages {
		p, err := toPart(img)
		if err != nil {
			return "", fmt.Errorf("product image %d: %w", i+1, err)
		}
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Product Image (angle %d of %d):", i+1, len(productImages))), p)
	}
	if sceneImage != nil {
		p, err := toPart(*sceneImage)
		if err != nil {
			return "", fmt.Errorf("scene image: %w", err)
		}
		parts = append(parts, genai.NewPartFromText("Current Scene Image:"), p)
	}
	return c.generateText(ctx, "generate variation prompt", parts)
}
