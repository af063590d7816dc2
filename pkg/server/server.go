package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/orchestrator"
)

// maxUploadBytes はインスピレーション画像のアップロード上限です。
const maxUploadBytes = 20 << 20

// Studio は生成フローの窓口です。
type Studio interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*orchestrator.Outcome, error)
	Variation(ctx context.Context, req domain.GenerationRequest) (*orchestrator.Outcome, error)
	Cancel(ctx context.Context) bool
	ClearAll(ctx context.Context)
	InFlight() bool
	AutoVideoPrompt(ctx context.Context, req domain.GenerationRequest) (string, bool, error)
	UseAsProduct(req domain.GenerationRequest, out domain.GenerationResult) (domain.GenerationRequest, error)
}

// Prompts はプロンプト作成の補助です。
type Prompts interface {
	Translate(ctx context.Context, text string) (string, error)
	BuildPrompt(ctx context.Context, kind, subject, style, details string) (string, error)
	AnalyzeForPlacement(ctx context.Context, productImages []domain.ImageAsset, sceneImage domain.ImageAsset, size domain.ProductSize) (string, error)
}

// Creations は保存済みの生成結果です。
type Creations interface {
	ListCreations(ctx context.Context) ([]domain.Creation, error)
	DeleteCreation(ctx context.Context, id int64) error
}

// Inspirations はインスピレーション画像のライブラリです。
type Inspirations interface {
	List(ctx context.Context) ([]domain.InspoImage, error)
	Add(ctx context.Context, data []byte, filename string, category domain.InspoCategory) (domain.InspoImage, error)
	Delete(ctx context.Context, id int64) error
}

// Session は利用者のサインイン状態です。
type Session interface {
	Enabled() bool
	LoginURL() (string, error)
	Complete(ctx context.Context, state, code string) (*domain.UserProfile, error)
	Profile(ctx context.Context) (*domain.UserProfile, error)
	Logout(ctx context.Context) error
}

// Deps はサーバーが必要とする依存関係です。
type Deps struct {
	Studio       Studio
	Prompts      Prompts
	Creations    Creations
	Inspirations Inspirations
	Session      Session
	Hub          *Hub
}

// Server は JSON/HTTP と websocket の窓口です。
type Server struct {
	deps Deps
}

// New は依存関係を検証して Server を作成します。
func New(deps Deps) (*Server, error) {
	if deps.Studio == nil {
		return nil, fmt.Errorf("studio is required")
	}
	if deps.Prompts == nil {
		return nil, fmt.Errorf("prompts is required")
	}
	if deps.Creations == nil {
		return nil, fmt.Errorf("creations is required")
	}
	if deps.Inspirations == nil {
		return nil, fmt.Errorf("inspirations is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("hub is required")
	}
	return &Server{deps: deps}, nil
}

// Router はルーティング済みの gin.Engine を返します。
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws/status", func(c *gin.Context) {
		s.deps.Hub.Serve(c.Writer, c.Request)
	})

	api := router.Group("/api/v1")

	api.POST("/generate", s.generate)
	api.POST("/variations", s.variation)
	api.POST("/cancel", s.cancel)
	api.POST("/clear", s.clearAll)
	api.GET("/status", s.status)
	api.POST("/video-prompt", s.videoPrompt)
	api.POST("/use-as-product", s.useAsProduct)
	api.POST("/mask", s.applyMask)

	api.POST("/translate", s.translate)
	api.POST("/build-prompt", s.buildPrompt)
	api.POST("/placement-prompt", s.placementPrompt)

	api.GET("/creations", s.listCreations)
	api.DELETE("/creations/:id", s.deleteCreation)

	api.GET("/inspo", s.listInspo)
	api.POST("/inspo", s.addInspo)
	api.DELETE("/inspo/:id", s.deleteInspo)

	authGroup := api.Group("/auth")
	authGroup.GET("/login", s.login)
	authGroup.GET("/callback", s.callback)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.me)

	return router
}
