package orchestrator

import (
	"context"
	"log/slog"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// Variation は同じ画像で別案のプロンプトを作らせ、そのプロンプトで生成します。
// プロンプト生成に失敗した場合は画像・動画の呼び出しを行いません。
func (o *Orchestrator) Variation(ctx context.Context, req domain.GenerationRequest) (*Outcome, error) {
	req = req.Normalize()
	if len(req.ProductImages) == 0 {
		o.report(ctx, "", StatusError, errVariationNeedsImage.Message)
		return nil, errVariationNeedsImage
	}

	a, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer o.finish(ctx, a)

	o.report(ctx, a.id, StatusProgress, MsgVariation)
	prompt, err := o.prompts.GenerateVariationPrompt(ctx, req.ProductImages, req.SceneImage)
	if err != nil {
		slog.ErrorContext(ctx, "variation prompt failed", "attempt_id", a.id, "error", err)
		if !a.token.Cancelled() {
			o.report(ctx, a.id, StatusError, "Falha ao criar variação: "+err.Error())
		}
		return nil, err
	}
	if a.token.Cancelled() {
		return &Outcome{AttemptID: a.id, Prompt: prompt, Cancelled: true}, nil
	}

	if req.Mode != domain.ModeVideo {
		req.Prompt = prompt
	}
	out, err := o.run(ctx, a, req, prompt)
	if err != nil {
		o.fail(ctx, a, err)
		return nil, err
	}
	return out, nil
}
