package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/auth"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
	"github.com/shouni/gemini-studio-kit/pkg/orchestrator"
	"github.com/shouni/gemini-studio-kit/pkg/store"
)

// statusFor はエラーの種類を HTTP ステータスに対応付けます。
func statusFor(err error) int {
	var (
		validation  *orchestrator.ValidationError
		generation  *generator.GenerationError
		translation *generator.TranslationError
		fetch       *imgcodec.FetchError
		write       *store.StoreWriteError
		unavailable *store.StoreUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrAttemptInFlight):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrConsentRequired):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrAuthDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &generation), errors.As(err, &translation),
		errors.Is(err, generator.ErrNoImageReturned), errors.As(err, &fetch):
		return http.StatusBadGateway
	case errors.As(err, &write):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// respondError は上流のメッセージをそのまま返します。
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "status", code, "error", err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
