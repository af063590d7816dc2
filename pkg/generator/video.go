package generator

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// GenerateVideo は動画生成ジョブを開始します。baseImage があれば開始フレームとして渡します。
func (c *Client) GenerateVideo(ctx context.Context, prompt string, baseImage *domain.ImageAsset) (*VideoOperation, error) {
	var image *genai.Image
	if baseImage != nil {
		img, err := toImage(*baseImage)
		if err != nil {
			return nil, &GenerationError{Op: "generate video", Err: fmt.Errorf("base image: %w", err)}
		}
		image = img
	}

	slog.InfoContext(ctx, "Veo 生成ジョブを開始します", "model", c.cfg.Video, "has_base_image", image != nil)
	op, err := c.models.GenerateVideos(ctx, c.cfg.Video, prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
	if err != nil {
		return nil, &GenerationError{Op: "generate video", Err: err}
	}
	if op == nil {
		return nil, &GenerationError{Op: "generate video", Err: fmt.Errorf("no operation returned")}
	}
	return newVideoOperation(op), nil
}

// PollVideo はジョブの状態を再確認し、同じ形のハンドルを返します。
func (c *Client) PollVideo(ctx context.Context, handle *VideoOperation) (*VideoOperation, error) {
	if handle == nil {
		return nil, &GenerationError{Op: "poll video", Err: fmt.Errorf("operation handle is required")}
	}
	op := handle.op
	if op == nil {
		op = &genai.GenerateVideosOperation{Name: handle.Name}
	}

	next, err := c.ops.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return nil, &GenerationError{Op: "poll video", Err: err}
	}
	if next == nil {
		return nil, &GenerationError{Op: "poll video", Err: fmt.Errorf("no operation returned")}
	}
	return newVideoOperation(next), nil
}

// newVideoOperation は SDK のオペレーションをハンドルに変換します。
func newVideoOperation(op *genai.GenerateVideosOperation) *VideoOperation {
	h := &VideoOperation{Name: op.Name, Done: op.Done, op: op}
	if !op.Done {
		return h
	}
	if len(op.Error) > 0 {
		h.Err = fmt.Errorf("video job failed: %v", operationErrorMessage(op.Error))
		return h
	}
	if op.Response != nil {
		for _, v := range op.Response.GeneratedVideos {
			if v != nil && v.Video != nil && v.Video.URI != "" {
				h.VideoURI = v.Video.URI
				break
			}
		}
		if h.VideoURI == "" && len(op.Response.RAIMediaFilteredReasons) > 0 {
			h.Err = fmt.Errorf("video filtered: %v", op.Response.RAIMediaFilteredReasons)
		}
	}
	return h
}

// operationErrorMessage は google.rpc.Status 形式のエラーから message を取り出します。
func operationErrorMessage(status map[string]any) any {
	if msg, ok := status["message"]; ok {
		return msg
	}
	return status
}
