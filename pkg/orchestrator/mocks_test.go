package orchestrator

import (
	"context"
	"sync"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
)

// --- Mocks ---

type mockMedia struct {
	mu sync.Mutex

	generateImageFunc func(ctx context.Context, prompt, negativePrompt string, aspectRatio domain.AspectRatio) (*generator.ImageOutput, error)
	composeImageFunc  func(ctx context.Context, req generator.ComposeRequest) (*generator.ComposeResult, error)
	generateVideoFunc func(ctx context.Context, prompt string, baseImage *domain.ImageAsset) (*generator.VideoOperation, error)
	pollVideoFunc     func(ctx context.Context, handle *generator.VideoOperation) (*generator.VideoOperation, error)

	imageCalls   int
	composeCalls int
	videoCalls   int
	pollCalls    int
}

func (m *mockMedia) GenerateImage(ctx context.Context, prompt, negativePrompt string, aspectRatio domain.AspectRatio) (*generator.ImageOutput, error) {
	m.mu.Lock()
	m.imageCalls++
	m.mu.Unlock()
	if m.generateImageFunc != nil {
		return m.generateImageFunc(ctx, prompt, negativePrompt, aspectRatio)
	}
	return &generator.ImageOutput{Data: []byte("image"), MimeType: "image/png"}, nil
}

func (m *mockMedia) ComposeImage(ctx context.Context, req generator.ComposeRequest) (*generator.ComposeResult, error) {
	m.mu.Lock()
	m.composeCalls++
	m.mu.Unlock()
	if m.composeImageFunc != nil {
		return m.composeImageFunc(ctx, req)
	}
	return &generator.ComposeResult{Image: &generator.ImageOutput{Data: []byte("composed"), MimeType: "image/png"}}, nil
}

func (m *mockMedia) GenerateVideo(ctx context.Context, prompt string, baseImage *domain.ImageAsset) (*generator.VideoOperation, error) {
	m.mu.Lock()
	m.videoCalls++
	m.mu.Unlock()
	if m.generateVideoFunc != nil {
		return m.generateVideoFunc(ctx, prompt, baseImage)
	}
	return &generator.VideoOperation{Name: "operations/1"}, nil
}

func (m *mockMedia) PollVideo(ctx context.Context, handle *generator.VideoOperation) (*generator.VideoOperation, error) {
	m.mu.Lock()
	m.pollCalls++
	m.mu.Unlock()
	if m.pollVideoFunc != nil {
		return m.pollVideoFunc(ctx, handle)
	}
	return &generator.VideoOperation{Name: handle.Name, Done: true, VideoURI: "https://example.com/video?alt=media"}, nil
}

func (m *mockMedia) calls() (image, compose, video, poll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imageCalls, m.composeCalls, m.videoCalls, m.pollCalls
}

type mockPrompts struct {
	mu sync.Mutex

	videoPromptFunc func(ctx context.Context, image domain.ImageAsset) (string, error)
	variationFunc   func(ctx context.Context, productImages []domain.ImageAsset, sceneImage *domain.ImageAsset) (string, error)

	videoPromptCalls int
	variationCalls   int
}

func (m *mockPrompts) AnalyzeForVideoPrompt(ctx context.Context, image domain.ImageAsset) (string, error) {
	m.mu.Lock()
	m.videoPromptCalls++
	m.mu.Unlock()
	if m.videoPromptFunc != nil {
		return m.videoPromptFunc(ctx, image)
	}
	return "slow orbit around the product", nil
}

func (m *mockPrompts) GenerateVariationPrompt(ctx context.Context, productImages []domain.ImageAsset, sceneImage *domain.ImageAsset) (string, error) {
	m.mu.Lock()
	m.variationCalls++
	m.mu.Unlock()
	if m.variationFunc != nil {
		return m.variationFunc(ctx, productImages, sceneImage)
	}
	return "the product on a beach at dawn", nil
}

type mockStore struct {
	mu       sync.Mutex
	putFunc  func(c domain.Creation) (int64, error)
	saved    []domain.Creation
	volatile bool
}

func (m *mockStore) Durable() bool { return !m.volatile }

func (m *mockStore) PutCreation(_ context.Context, c domain.Creation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putFunc != nil {
		return m.putFunc(c)
	}
	m.saved = append(m.saved, c)
	return int64(len(m.saved)), nil
}

func (m *mockStore) all() []domain.Creation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Creation(nil), m.saved...)
}

type mockFetcher struct {
	mu        sync.Mutex
	urls      []string
	fetchFunc func(rawURL string) (domain.ImageAsset, error)
}

func (m *mockFetcher) FetchRemote(_ context.Context, rawURL string) (domain.ImageAsset, error) {
	m.mu.Lock()
	m.urls = append(m.urls, rawURL)
	m.mu.Unlock()
	if m.fetchFunc != nil {
		return m.fetchFunc(rawURL)
	}
	return imgcodec.Encode([]byte("mp4"), "video/mp4"), nil
}

type recordingReporter struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *recordingReporter) Report(_ context.Context, s Status) {
	r.mu.Lock()
	r.statuses = append(r.statuses, s)
	r.mu.Unlock()
}

func (r *recordingReporter) messages(kind StatusKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.statuses {
		if s.Kind == kind {
			out = append(out, s.Message)
		}
	}
	return out
}

// --- Helpers ---

type fixture struct {
	media    *mockMedia
	prompts  *mockPrompts
	store    *mockStore
	fetcher  *mockFetcher
	reporter *recordingReporter
}

func newFixture() *fixture {
	return &fixture{
		media:    &mockMedia{},
		prompts:  &mockPrompts{},
		store:    &mockStore{},
		fetcher:  &mockFetcher{},
		reporter: &recordingReporter{},
	}
}

func (f *fixture) build(opts ...Option) *Orchestrator {
	opts = append([]Option{WithReporter(f.reporter), WithPollInterval(0)}, opts...)
	o, err := New(f.media, f.prompts, f.store, f.fetcher, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

func asset(data string) domain.ImageAsset {
	return imgcodec.Encode([]byte(data), "image/png")
}
