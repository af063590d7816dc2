package orchestrator

import (
	"sync"

	"go.uber.org/atomic"
)

// cancelToken は 1 回の生成に紐づく協調的なキャンセルフラグです。
// 進行中のネットワーク呼び出しは中断せず、各待機点で確認されます。
type cancelToken struct {
	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
}

func newCancelToken() *cancelToken {
	return &cancelToken{done: make(chan struct{})}
}

func (t *cancelToken) Cancel() {
	t.once.Do(func() {
		t.cancelled.Store(true)
		close(t.done)
	})
}

func (t *cancelToken) Cancelled() bool { return t.cancelled.Load() }

func (t *cancelToken) Done() <-chan struct{} { return t.done }

// attempt は実行中の生成 1 回分です。
type attempt struct {
	id    string
	token *cancelToken
}
