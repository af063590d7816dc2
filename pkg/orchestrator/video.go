package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
)

var errNoOperation = &generator.GenerationError{Op: "generate video", Err: errors.New("no operation handle returned")}

// runVideo は動画ジョブを開始し、完了かキャンセルまで一定間隔でポーリングします。
// キャンセルされた場合は結果もエラーも返しません。
func (o *Orchestrator) runVideo(ctx context.Context, a *attempt, req domain.GenerationRequest, prompt string) (*domain.GenerationResult, error) {
	o.report(ctx, a.id, StatusProgress, videoMessage(0))

	var base *domain.ImageAsset
	if len(req.ProductImages) > 0 {
		first := req.ProductImages[0].WithoutMask()
		base = &first
	}

	handle, err := o.media.GenerateVideo(ctx, prompt, base)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, errNoOperation
	}

	msgIndex := 1
	polls := 0
	for !a.token.Cancelled() && !handle.Done {
		if o.maxPolls > 0 && polls >= o.maxPolls {
			return nil, &generator.GenerationError{
				Op:  "poll video",
				Err: fmt.Errorf("video job %s not finished after %d polls", handle.Name, polls),
			}
		}
		o.report(ctx, a.id, StatusProgress, videoMessage(msgIndex))
		msgIndex++

		if !o.wait(ctx, a.token) {
			if a.token.Cancelled() {
				break
			}
			return nil, ctx.Err()
		}

		handle, err = o.media.PollVideo(ctx, handle)
		if err != nil {
			return nil, err
		}
		if handle == nil {
			return nil, errNoOperation
		}
		polls++
	}
	slog.InfoContext(ctx, "video polling finished", "attempt_id", a.id, "polls", polls, "done", handle.Done)

	if a.token.Cancelled() {
		return nil, nil
	}
	if handle.Err != nil {
		return nil, &generator.GenerationError{Op: "generate video", Err: handle.Err}
	}
	if handle.VideoURI == "" {
		return nil, &generator.GenerationError{
			Op:  "generate video",
			Err: errors.New("video generation finished but no URI was returned"),
		}
	}

	o.report(ctx, a.id, StatusProgress, MsgFetchingVideo)
	downloadURL, err := withAPIKey(handle.VideoURI, o.apiKey)
	if err != nil {
		return nil, err
	}
	video, err := o.fetcher.FetchRemote(ctx, downloadURL)
	if err != nil {
		return nil, err
	}
	return &domain.GenerationResult{Type: domain.OutputVideo, Src: video.DataURL}, nil
}

// wait はポーリング間隔だけ待ちます。キャンセルかコンテキスト終了で false を返します。
func (o *Orchestrator) wait(ctx context.Context, token *cancelToken) bool {
	if o.pollInterval <= 0 {
		return !token.Cancelled() && ctx.Err() == nil
	}
	timer := time.NewTimer(o.pollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-token.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

// withAPIKey は結果 URI に API キーのクエリパラメータを付けます。
func withAPIKey(rawURI, key string) (string, error) {
	if key == "" {
		return rawURI, nil
	}
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid video URI: %w", err)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
