package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// videoPromptTracker は最後に自動解析した画像を内容で記憶します。
type videoPromptTracker struct {
	mu   sync.Mutex
	last string

	group singleflight.Group
}

func (t *videoPromptTracker) analyzed(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last == key
}

func (t *videoPromptTracker) mark(key string) {
	t.mu.Lock()
	t.last = key
	t.mu.Unlock()
}

func (t *videoPromptTracker) reset() {
	t.mu.Lock()
	t.last = ""
	t.mu.Unlock()
}

// AutoVideoPrompt は動画モードで最初の商品画像があり、動画プロンプトが空の場合に
// 画像から動画プロンプトを生成します。同じ画像には一度しか呼び出しません。
// 生成しなかった場合は generated=false を返します。
func (o *Orchestrator) AutoVideoPrompt(ctx context.Context, req domain.GenerationRequest) (prompt string, generated bool, err error) {
	if req.Mode != domain.ModeVideo || len(req.ProductImages) == 0 || strings.TrimSpace(req.VideoPrompt) != "" {
		return "", false, nil
	}
	image := req.ProductImages[0].WithoutMask()
	key := imageIdentity(image)
	if o.videoPrompts.analyzed(key) {
		return "", false, nil
	}

	v, err, _ := o.videoPrompts.group.Do(key, func() (any, error) {
		if o.videoPrompts.analyzed(key) {
			return "", nil
		}
		o.report(ctx, "", StatusProgress, MsgAnalyzingImage)
		p, err := o.prompts.AnalyzeForVideoPrompt(ctx, image)
		if err != nil {
			return "", err
		}
		o.videoPrompts.mark(key)
		return p, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "video prompt generation failed", "error", err)
		o.report(ctx, "", StatusError, "Falha ao gerar o prompt de vídeo: "+err.Error())
		return "", false, err
	}

	prompt = v.(string)
	if prompt == "" {
		return "", false, nil
	}
	o.report(ctx, "", StatusSuccess, MsgVideoPromptDone)
	return prompt, true, nil
}

// imageIdentity は画像の内容に基づく識別子を返します。
func imageIdentity(a domain.ImageAsset) string {
	if a.DataURL != "" {
		return a.DataURL
	}
	return "data:" + a.MIMEType + ";base64," + a.Base64
}
