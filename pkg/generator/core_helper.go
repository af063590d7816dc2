package generator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
)

// toPart は ImageAsset をインラインデータの Part に変換します。
func toPart(asset domain.ImageAsset) (*genai.Part, error) {
	data, err := imgcodec.Bytes(asset)
	if err != nil {
		return nil, err
	}
	mimeType := asset.MIMEType
	if mimeType == "" {
		mimeType = imgcodec.DetectMIME(data)
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}, nil
}

// toImage は Veo の開始フレーム用に ImageAsset を変換します。
func toImage(asset domain.ImageAsset) (*genai.Image, error) {
	data, err := imgcodec.Bytes(asset)
	if err != nil {
		return nil, err
	}
	mimeType := asset.MIMEType
	if mimeType == "" {
		mimeType = imgcodec.DetectMIME(data)
	}
	return &genai.Image{ImageBytes: data, MIMEType: mimeType}, nil
}

// generateText はテキストモデルを呼び出し、応答テキストを前後の空白を除いて返します。
func (c *Client) generateText(ctx context.Context, op string, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, c.cfg.Text, contents, nil)
	if err != nil {
		return "", &GenerationError{Op: op, Err: err}
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", &GenerationError{Op: op, Err: fmt.Errorf("empty text response")}
	}
	return text, nil
}

// responseText は最初の候補に含まれるテキストをすべて連結します。
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// parseComposeResponse は合成応答から最初の画像とコメントを取り出します。
// 画像が無い場合は終了理由を確認し、異常終了ならその理由をエラーに含めます。
func parseComposeResponse(resp *genai.GenerateContentResponse) (*ComposeResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("invalid response: no candidates")
	}

	candidate := resp.Candidates[0]
	result := &ComposeResult{Text: strings.TrimSpace(responseText(resp))}
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Image = &ImageOutput{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType}
				break
			}
		}
	}
	if result.Image != nil {
		return result, nil
	}

	if candidate.FinishReason != "" &&
		candidate.FinishReason != genai.FinishReasonStop &&
		candidate.FinishReason != genai.FinishReasonUnspecified {
		return result, fmt.Errorf("%w: finish reason %s", ErrNoImageReturned, candidate.FinishReason)
	}
	return result, ErrNoImageReturned
}
