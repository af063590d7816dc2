package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/orchestrator"
)

type mockStudio struct {
	generateFunc     func(ctx context.Context, req domain.GenerationRequest) (*orchestrator.Outcome, error)
	variationFunc    func(ctx context.Context, req domain.GenerationRequest) (*orchestrator.Outcome, error)
	cancelFunc       func(ctx context.Context) bool
	videoPromptFunc  func(ctx context.Context, req domain.GenerationRequest) (string, bool, error)
	useAsProductFunc func(req domain.GenerationRequest, out domain.GenerationResult) (domain.GenerationRequest, error)
	inFlight         bool
	cleared          int
}

func (m *mockStudio) Generate(ctx context.Context, req domain.GenerationRequest) (*orchestrator.Outcome, error) {
	return m.generateFunc(ctx, req)
}

func (m *mockStudio) Variation(ctx context.Context, req domain.GenerationRequest) (*orchestrator.Outcome, error) {
	return m.variationFunc(ctx, req)
}

func (m *mockStudio) Cancel(ctx context.Context) bool {
	if m.cancelFunc == nil {
		return false
	}
	return m.cancelFunc(ctx)
}

func (m *mockStudio) ClearAll(context.Context) { m.cleared++ }

func (m *mockStudio) InFlight() bool { return m.inFlight }

func (m *mockStudio) AutoVideoPrompt(ctx context.Context, req domain.GenerationRequest) (string, bool, error) {
	return m.videoPromptFunc(ctx, req)
}

func (m *mockStudio) UseAsProduct(req domain.GenerationRequest, out domain.GenerationResult) (domain.GenerationRequest, error) {
	return m.useAsProductFunc(req, out)
}

type mockPrompts struct {
	translateFunc func(ctx context.Context, text string) (string, error)
	buildFunc     func(ctx context.Context, kind, subject, style, details string) (string, error)
	placementFunc func(ctx context.Context, products []domain.ImageAsset, scene domain.ImageAsset, size domain.ProductSize) (string, error)
}

func (m *mockPrompts) Translate(ctx context.Context, text string) (string, error) {
	return m.translateFunc(ctx, text)
}

func (m *mockPrompts) BuildPrompt(ctx context.Context, kind, subject, style, details string) (string, error) {
	return m.buildFunc(ctx, kind, subject, style, details)
}

func (m *mockPrompts) AnalyzeForPlacement(ctx context.Context, products []domain.ImageAsset, scene domain.ImageAsset, size domain.ProductSize) (string, error) {
	return m.placementFunc(ctx, products, scene, size)
}

type mockCreations struct {
	listFunc   func(ctx context.Context) ([]domain.Creation, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockCreations) ListCreations(ctx context.Context) ([]domain.Creation, error) {
	return m.listFunc(ctx)
}

func (m *mockCreations) DeleteCreation(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

type mockInspirations struct {
	listFunc   func(ctx context.Context) ([]domain.InspoImage, error)
	addFunc    func(ctx context.Context, data []byte, filename string, category domain.InspoCategory) (domain.InspoImage, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockInspirations) List(ctx context.Context) ([]domain.InspoImage, error) {
	return m.listFunc(ctx)
}

func (m *mockInspirations) Add(ctx context.Context, data []byte, filename string, category domain.InspoCategory) (domain.InspoImage, error) {
	return m.addFunc(ctx, data, filename, category)
}

func (m *mockInspirations) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

type mockSession struct {
	enabled      bool
	loginURLFunc func() (string, error)
	completeFunc func(ctx context.Context, state, code string) (*domain.UserProfile, error)
	profileFunc  func(ctx context.Context) (*domain.UserProfile, error)
	logoutErr    error
	logouts      int
}

func (m *mockSession) Enabled() bool { return m.enabled }

func (m *mockSession) LoginURL() (string, error) { return m.loginURLFunc() }

func (m *mockSession) Complete(ctx context.Context, state, code string) (*domain.UserProfile, error) {
	return m.completeFunc(ctx, state, code)
}

func (m *mockSession) Profile(ctx context.Context) (*domain.UserProfile, error) {
	return m.profileFunc(ctx)
}

func (m *mockSession) Logout(context.Context) error {
	m.logouts++
	return m.logoutErr
}

// fixture はモック一式とルーターをまとめたものです。
type fixture struct {
	studio       *mockStudio
	prompts      *mockPrompts
	creations    *mockCreations
	inspirations *mockInspirations
	session      *mockSession
	hub          *Hub
}

func newFixture() *fixture {
	return &fixture{
		studio:       &mockStudio{},
		prompts:      &mockPrompts{},
		creations:    &mockCreations{},
		inspirations: &mockInspirations{},
		session:      &mockSession{},
		hub:          NewHub(),
	}
}

func (f *fixture) router(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := New(Deps{
		Studio:       f.studio,
		Prompts:      f.prompts,
		Creations:    f.creations,
		Inspirations: f.inspirations,
		Session:      f.session,
		Hub:          f.hub,
	})
	require.NoError(t, err)
	return srv.Router()
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
