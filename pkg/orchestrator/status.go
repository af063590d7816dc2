package orchestrator

import "context"

// StatusKind は進捗通知の種類です。
type StatusKind string

const (
	StatusProgress StatusKind = "progress"
	StatusSuccess  StatusKind = "success"
	StatusWarning  StatusKind = "warning"
	StatusError    StatusKind = "error"
	StatusIdle     StatusKind = "idle"
)

// Status は利用者向けの一時的な通知 1 件です。
type Status struct {
	AttemptID string     `json:"attemptId,omitempty"`
	Kind      StatusKind `json:"kind"`
	Message   string     `json:"message"`
}

// StatusReporter は通知の送り先です。呼び出し側をブロックしない実装にしてください。
type StatusReporter interface {
	Report(ctx context.Context, s Status)
}

// ReporterFunc は関数を StatusReporter として使うためのアダプタです。
type ReporterFunc func(ctx context.Context, s Status)

func (f ReporterFunc) Report(ctx context.Context, s Status) { f(ctx, s) }

type nopReporter struct{}

func (nopReporter) Report(context.Context, Status) {}
