package generator

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// GenerateImage はテキストから画像を 1 枚生成します。
// ネガティブプロンプトはプロンプト末尾に連結して送ります。
func (c *Client) GenerateImage(ctx context.Context, prompt, negativePrompt string, aspectRatio domain.AspectRatio) (*ImageOutput, error) {
	aspectRatio = aspectRatio.OrDefault()
	slog.InfoContext(ctx, "Imagen 生成リクエスト", "model", c.cfg.Image, "aspect_ratio", aspectRatio)

	resp, err := c.models.GenerateImages(ctx, c.cfg.Image, withNegativePrompt(prompt, negativePrompt), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    string(aspectRatio),
		OutputMIMEType: outputMIMEType,
	})
	if err != nil {
		return nil, &GenerationError{Op: "generate image", Err: err}
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, &GenerationError{Op: "generate image", Err: ErrNoImageReturned}
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated != nil && generated.RAIFilteredReason != "" {
			return nil, &GenerationError{Op: "generate image", Err: fmt.Errorf("%w: %s", ErrNoImageReturned, generated.RAIFilteredReason)}
		}
		return nil, &GenerationError{Op: "generate image", Err: ErrNoImageReturned}
	}

	mimeType := generated.Image.MIMEType
	if mimeType == "" {
		mimeType = outputMIMEType
	}
	return &ImageOutput{Data: generated.Image.ImageBytes, MimeType: mimeType}, nil
}

// ComposeImage は商品画像・シーン画像・コンテキスト画像とマスクを参照し、画像を編集します。
// 応答に画像が無い場合、コメントが返っていても ErrNoImageReturned を返します。
func (c *Client) ComposeImage(ctx context.Context, req ComposeRequest) (*ComposeResult, error) {
	if len(req.ProductImages) == 0 {
		return nil, &GenerationError{Op: "compose image", Err: fmt.Errorf("at least one product image is required")}
	}
	slog.InfoContext(ctx, "Gemini 合成リクエスト準備中",
		"model", c.cfg.Edit,
		"products", len(req.ProductImages),
		"has_scene", req.SceneImage != nil,
		"contexts", len(req.ContextImages),
		"has_mask", len(req.Mask) > 0,
	)

	parts, err := composeParts(req)
	if err != nil {
		return nil, &GenerationError{Op: "compose image", Err: err}
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, c.cfg.Edit, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	})
	if err != nil {
		return nil, &GenerationError{Op: "compose image", Err: err}
	}

	result, err := parseComposeResponse(resp)
	if err != nil {
		return result, &GenerationError{Op: "compose image", Err: err}
	}
	return result, nil
}

// composeParts は参照画像を役割ごとのラベル付きで並べ、最後に指示文を置きます。
func composeParts(req ComposeRequest) ([]*genai.Part, error) {
	var parts []*genai.Part

	for i, img := range req.ProductImages {
		p, err := toPart(img)
		if err != nil {
			return nil, fmt.Errorf("product image %d: %w", i+1, err)
		}
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Product Image (angle %d of %d):", i+1, len(req.ProductImages))), p)
	}

	if req.SceneImage != nil {
		p, err := toPart(*req.SceneImage)
		if err != nil {
			return nil, fmt.Errorf("scene image: %w", err)
		}
		parts = append(parts, genai.NewPartFromText("Scene Image:"), p)
	}

	if len(req.Mask) > 0 {
		parts = append(parts,
			genai.NewPartFromText(maskInstruction),
			&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: req.Mask}},
		)
	}

	for i, img := range req.ContextImages {
		p, err := toPart(img)
		if err != nil {
			return nil, fmt.Errorf("context image %d: %w", i+1, err)
		}
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Context Image %d (style and mood reference only):", i+1)), p)
	}

	parts = append(parts, genai.NewPartFromText(composeInstruction(req.Prompt, req.NegativePrompt, req.AspectRatio.OrDefault())))
	return parts, nil
}
