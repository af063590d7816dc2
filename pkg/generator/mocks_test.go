package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
)

// --- Mocks ---

type mockModels struct {
	generateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	generateImagesFunc  func(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	generateVideosFunc  func(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)

	contentCalls int
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contentCalls++
	if m.generateContentFunc != nil {
		return m.generateContentFunc(ctx, model, contents, config)
	}
	return textResponse("ok"), nil
}

func (m *mockModels) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	if m.generateImagesFunc != nil {
		return m.generateImagesFunc(ctx, model, prompt, config)
	}
	return &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte("png"), MIMEType: "image/png"}}},
	}, nil
}

func (m *mockModels) GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	if m.generateVideosFunc != nil {
		return m.generateVideosFunc(ctx, model, prompt, image, config)
	}
	return &genai.GenerateVideosOperation{Name: "operations/1"}, nil
}

type mockOperations struct {
	getFunc func(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

func (m *mockOperations) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, _ *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, op)
	}
	return op, nil
}

// --- Helpers ---

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func newTestClient(t *testing.T, models *mockModels, ops *mockOperations) *Client {
	t.Helper()
	if ops == nil {
		ops = &mockOperations{}
	}
	c, err := NewClient(models, ops)
	require.NoError(t, err)
	return c
}

func asset(data string) domain.ImageAsset {
	return imgcodec.Encode([]byte(data), "image/png")
}

// allText は contents 内のテキストをすべて連結します。
func allText(contents []*genai.Content) string {
	var s string
	for _, c := range contents {
		for _, p := range c.Parts {
			s += p.Text + "\n"
		}
	}
	return s
}

// inlineData は contents 内の画像データを順に返します。
func inlineData(contents []*genai.Content) []string {
	var out []string
	for _, c := range contents {
		for _, p := range c.Parts {
			if p.InlineData != nil {
				out = append(out, string(p.InlineData.Data))
			}
		}
	}
	return out
}
