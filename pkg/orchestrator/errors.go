package orchestrator

import "errors"

// ValidationError はネットワーク呼び出し前に拒否されたリクエストを表します。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrAttemptInFlight は別の生成が進行中のため受け付けなかったことを示します。
var ErrAttemptInFlight = errors.New("another generation is already in progress")

var (
	errEmptyRequest        = &ValidationError{Message: "Por favor, forneça um prompt ou uma imagem de produto."}
	errVariationNeedsImage = &ValidationError{Message: "É necessária uma imagem de produto para criar variações."}
	errNotAnImageOutput    = &ValidationError{Message: "only image outputs can be used as a product image"}
)
