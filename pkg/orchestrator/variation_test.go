package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
)

func TestOrchestrator_Variation(t *testing.T) {
	ctx := context.Background()

	t.Run("生成されたプロンプトで合成されること", func(t *testing.T) {
		f := newFixture()
		var gotPrompt string
		f.media.composeImageFunc = func(_ context.Context, req generator.ComposeRequest) (*generator.ComposeResult, error) {
			gotPrompt = req.Prompt
			return &generator.ComposeResult{Image: &generator.ImageOutput{Data: []byte("v")}}, nil
		}
		o := f.build()
		scene := asset("B")

		out, err := o.Variation(ctx, domain.GenerationRequest{
			Prompt:        "old prompt",
			ProductImages: []domain.ImageAsset{asset("A")},
			SceneImage:    &scene,
		})
		require.NoError(t, err)
		assert.Equal(t, "the product on a beach at dawn", gotPrompt)
		assert.Equal(t, "the product on a beach at dawn", out.Prompt)
		require.NotNil(t, out.Creation)
		assert.Equal(t, "the product on a beach at dawn", out.Creation.Prompt)
		assert.Equal(t, []string{MsgVariation, MsgComposing}, f.reporter.messages(StatusProgress))
		assert.False(t, o.InFlight())
	})

	t.Run("動画モードでは画像のプロンプトを書き換えないこと", func(t *testing.T) {
		f := newFixture()
		var gotPrompt string
		f.media.generateVideoFunc = func(_ context.Context, prompt string, _ *domain.ImageAsset) (*generator.VideoOperation, error) {
			gotPrompt = prompt
			return &generator.VideoOperation{Name: "operations/v1"}, nil
		}
		f.media.pollVideoFunc = scriptedPolls(0, "https://example.com/v1beta/files/abc:download?alt=media")
		o := f.build()

		out, err := o.Variation(ctx, domain.GenerationRequest{
			Mode:          domain.ModeVideo,
			Prompt:        "image prompt",
			VideoPrompt:   "waves",
			ProductImages: []domain.ImageAsset{asset("A")},
		})
		require.NoError(t, err)
		assert.Equal(t, "the product on a beach at dawn", gotPrompt)
		assert.Equal(t, "the product on a beach at dawn", out.Prompt)
		require.NotNil(t, out.Creation)
		assert.Equal(t, "image prompt", out.Creation.Prompt)
		assert.Equal(t, domain.OutputVideo, out.Creation.Output.Type)
	})

	t.Run("プロンプト生成の失敗で生成呼び出しをしないこと", func(t *testing.T) {
		f := newFixture()
		f.prompts.variationFunc = func(context.Context, []domain.ImageAsset, *domain.ImageAsset) (string, error) {
			return "", &generator.GenerationError{Op: "generate variation prompt", Err: errors.New("overloaded")}
		}
		o := f.build()

		_, err := o.Variation(ctx, domain.GenerationRequest{ProductImages: []domain.ImageAsset{asset("A")}})
		assert.ErrorContains(t, err, "overloaded")

		image, compose, video, poll := f.media.calls()
		assert.Zero(t, image+compose+video+poll)
		assert.Empty(t, f.store.all())
		assert.False(t, o.InFlight())
		require.Len(t, f.reporter.messages(StatusError), 1)
		assert.Contains(t, f.reporter.messages(StatusError)[0], "Falha ao criar variação")
	})

	t.Run("商品画像が無ければ検証で拒否されること", func(t *testing.T) {
		f := newFixture()
		o := f.build()
		_, err := o.Variation(ctx, domain.GenerationRequest{Prompt: "p"})
		assert.True(t, IsUserError(err))
		assert.Zero(t, f.prompts.variationCalls)
	})

	t.Run("プロンプト生成中にキャンセルされたら生成しないこと", func(t *testing.T) {
		f := newFixture()
		var o *Orchestrator
		f.prompts.variationFunc = func(context.Context, []domain.ImageAsset, *domain.ImageAsset) (string, error) {
			o.Cancel(ctx)
			return "late", nil
		}
		o = f.build()
		out, err := o.Variation(ctx, domain.GenerationRequest{ProductImages: []domain.ImageAsset{asset("A")}})
		require.NoError(t, err)
		assert.True(t, out.Cancelled)
		image, compose, _, _ := f.media.calls()
		assert.Zero(t, image+compose)
	})
}

func TestOrchestrator_AutoVideoPrompt(t *testing.T) {
	ctx := context.Background()
	video := func(images ...domain.ImageAsset) domain.GenerationRequest {
		return domain.GenerationRequest{Mode: domain.ModeVideo, ProductImages: images}
	}

	t.Run("同じ画像には一度しか解析しないこと", func(t *testing.T) {
		f := newFixture()
		o := f.build()

		p, generated, err := o.AutoVideoPrompt(ctx, video(asset("A")))
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Equal(t, "slow orbit around the product", p)

		_, generated, err = o.AutoVideoPrompt(ctx, video(asset("A")))
		require.NoError(t, err)
		assert.False(t, generated)
		assert.Equal(t, 1, f.prompts.videoPromptCalls)

		_, generated, err = o.AutoVideoPrompt(ctx, video(asset("B")))
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Equal(t, 2, f.prompts.videoPromptCalls)
	})

	t.Run("条件を満たさなければ呼び出さないこと", func(t *testing.T) {
		f := newFixture()
		o := f.build()

		cases := []domain.GenerationRequest{
			{Mode: domain.ModeImage, ProductImages: []domain.ImageAsset{asset("A")}},
			{Mode: domain.ModeVideo},
			{Mode: domain.ModeVideo, VideoPrompt: "already typed", ProductImages: []domain.ImageAsset{asset("A")}},
		}
		for _, req := range cases {
			_, generated, err := o.AutoVideoPrompt(ctx, req)
			require.NoError(t, err)
			assert.False(t, generated)
		}
		assert.Zero(t, f.prompts.videoPromptCalls)
	})

	t.Run("失敗した画像は再試行できること", func(t *testing.T) {
		f := newFixture()
		fail := true
		f.prompts.videoPromptFunc = func(context.Context, domain.ImageAsset) (string, error) {
			if fail {
				return "", errors.New("boom")
			}
			return "pan left", nil
		}
		o := f.build()

		_, _, err := o.AutoVideoPrompt(ctx, video(asset("A")))
		assert.Error(t, err)
		fail = false
		p, generated, err := o.AutoVideoPrompt(ctx, video(asset("A")))
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Equal(t, "pan left", p)
	})

	t.Run("ClearAll後は同じ画像でも再解析すること", func(t *testing.T) {
		f := newFixture()
		o := f.build()
		_, _, err := o.AutoVideoPrompt(ctx, video(asset("A")))
		require.NoError(t, err)
		o.ClearAll(ctx)
		_, generated, err := o.AutoVideoPrompt(ctx, video(asset("A")))
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Equal(t, 2, f.prompts.videoPromptCalls)
	})

	t.Run("同時の呼び出しはまとめられること", func(t *testing.T) {
		f := newFixture()
		release := make(chan struct{})
		f.prompts.videoPromptFunc = func(context.Context, domain.ImageAsset) (string, error) {
			<-release
			return "dolly in", nil
		}
		o := f.build()

		var wg sync.WaitGroup
		results := make([]string, 5)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, _, err := o.AutoVideoPrompt(ctx, video(asset("A")))
				assert.NoError(t, err)
				results[i] = p
			}()
		}
		require.Eventually(t, func() bool {
			f.prompts.mu.Lock()
			defer f.prompts.mu.Unlock()
			return f.prompts.videoPromptCalls == 1
		}, time.Second, time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, 1, f.prompts.videoPromptCalls)
		for _, p := range results {
			if p != "" {
				assert.Equal(t, "dolly in", p)
			}
		}
	})
}
