package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
)

// DefaultPollInterval は動画ジョブの状態確認の間隔です。
const DefaultPollInterval = 10 * time.Second

// MediaClient は画像・動画の生成を行う外部サービスです。
type MediaClient interface {
	GenerateImage(ctx context.Context, prompt, negativePrompt string, aspectRatio domain.AspectRatio) (*generator.ImageOutput, error)
	ComposeImage(ctx context.Context, req generator.ComposeRequest) (*generator.ComposeResult, error)
	GenerateVideo(ctx context.Context, prompt string, baseImage *domain.ImageAsset) (*generator.VideoOperation, error)
	PollVideo(ctx context.Context, handle *generator.VideoOperation) (*generator.VideoOperation, error)
}

// PromptClient は生成の前段で使うプロンプト補助です。
type PromptClient interface {
	AnalyzeForVideoPrompt(ctx context.Context, image domain.ImageAsset) (string, error)
	GenerateVariationPrompt(ctx context.Context, productImages []domain.ImageAsset, sceneImage *domain.ImageAsset) (string, error)
}

// CreationStore は生成結果の保存先です。
type CreationStore interface {
	PutCreation(ctx context.Context, c domain.Creation) (int64, error)
}

// durability は保存先が再起動後も内容を保つかどうかを返します。実装しないストアは永続とみなします。
type durability interface {
	Durable() bool
}

// MediaFetcher は結果 URI から表示用データを取得します。
type MediaFetcher interface {
	FetchRemote(ctx context.Context, rawURL string) (domain.ImageAsset, error)
}

// Outcome は 1 回の生成の結果です。
type Outcome struct {
	AttemptID string `json:"attemptId"`
	// Prompt は実際に使われたプロンプトです。バリエーションでは生成されたものが入ります。
	Prompt string `json:"prompt"`
	// Creation はキャンセルされた場合 nil です。保存に失敗した場合 ID は 0 です。
	Creation  *domain.Creation `json:"creation,omitempty"`
	Cancelled bool             `json:"cancelled"`
	// PersistWarning は保存に失敗したか、保存先が永続でない場合の利用者向けメッセージです。
	PersistWarning string `json:"persistWarning,omitempty"`
	PersistErr     error  `json:"-"`
}

// Option は Orchestrator の設定を変更します。
type Option func(*Orchestrator)

// WithReporter は進捗通知の送り先を設定します。
func WithReporter(r StatusReporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithAPIKey は動画のダウンロード時に付与する API キーを設定します。
func WithAPIKey(key string) Option {
	return func(o *Orchestrator) { o.apiKey = key }
}

// WithPollInterval はポーリング間隔を設定します。0 以下なら待機しません。
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

// WithMaxPolls はポーリング回数の上限を設定します。0 は無制限です。
func WithMaxPolls(n int) Option {
	return func(o *Orchestrator) { o.maxPolls = n }
}

// WithClock は作成日時に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator は検証から保存までの生成フローを 1 件ずつ実行します。
type Orchestrator struct {
	media    MediaClient
	prompts  PromptClient
	store    CreationStore
	fetcher  MediaFetcher
	reporter StatusReporter

	apiKey       string
	pollInterval time.Duration
	maxPolls     int
	now          func() time.Time

	mu       sync.Mutex
	active   *attempt
	inFlight atomic.Bool

	videoPrompts *videoPromptTracker
}

// New は依存関係を注入して Orchestrator を初期化します。
func New(media MediaClient, prompts PromptClient, store CreationStore, fetcher MediaFetcher, opts ...Option) (*Orchestrator, error) {
	if media == nil {
		return nil, fmt.Errorf("media is required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("prompts is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	o := &Orchestrator{
		media:        media,
		prompts:      prompts,
		store:        store,
		fetcher:      fetcher,
		reporter:     nopReporter{},
		pollInterval: DefaultPollInterval,
		now:          time.Now,
		videoPrompts: &videoPromptTracker{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// InFlight は生成が進行中かどうかを返します。
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Generate は入力中のプロンプトで 1 回生成し、成功すれば保存します。
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) (*Outcome, error) {
	req = req.Normalize()
	prompt := req.ActivePrompt()
	if req.IsEmpty(prompt) {
		o.report(ctx, "", StatusError, errEmptyRequest.Message)
		return nil, errEmptyRequest
	}

	a, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer o.finish(ctx, a)

	out, err := o.run(ctx, a, req, prompt)
	if err != nil {
		o.fail(ctx, a, err)
		return nil, err
	}
	return out, nil
}

// Cancel は進行中の生成を中止します。中止対象があれば true を返します。
func (o *Orchestrator) Cancel(ctx context.Context) bool {
	o.mu.Lock()
	a := o.active
	o.active = nil
	o.inFlight.Store(false)
	o.mu.Unlock()

	if a == nil {
		return false
	}
	a.token.Cancel()
	slog.InfoContext(ctx, "generation cancelled", "attempt_id", a.id)
	o.report(ctx, a.id, StatusIdle, "")
	return true
}

// ClearAll は進行中の生成を中止し、動画プロンプトの自動生成履歴も消します。
func (o *Orchestrator) ClearAll(ctx context.Context) {
	o.Cancel(ctx)
	o.videoPrompts.reset()
}

// UseAsProduct は画像出力を次の商品画像にしたリクエストを返します。
func (o *Orchestrator) UseAsProduct(req domain.GenerationRequest, out domain.GenerationResult) (domain.GenerationRequest, error) {
	if out.Type != domain.OutputImage {
		return req, errNotAnImageOutput
	}
	asset, err := imgcodec.FromDataURL(out.Src)
	if err != nil {
		return req, fmt.Errorf("invalid output image: %w", err)
	}
	o.videoPrompts.reset()
	return req.Normalize().UseAsProduct(asset), nil
}

// begin はゲートを取得します。進行中の生成があれば拒否します。
func (o *Orchestrator) begin(ctx context.Context) (*attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inFlight.Load() {
		slog.WarnContext(ctx, "generation rejected: another attempt is in flight", "active_attempt_id", o.active.id)
		return nil, ErrAttemptInFlight
	}
	a := &attempt{id: uuid.NewString(), token: newCancelToken()}
	o.active = a
	o.inFlight.Store(true)
	return a, nil
}

// finish はゲートを解放します。既にキャンセルされ別の生成が始まっている場合は何もしません。
func (o *Orchestrator) finish(ctx context.Context, a *attempt) {
	o.mu.Lock()
	owned := o.active == a
	if owned {
		o.active = nil
		o.inFlight.Store(false)
	}
	o.mu.Unlock()

	if owned {
		o.report(ctx, a.id, StatusIdle, "")
	}
}

func (o *Orchestrator) fail(ctx context.Context, a *attempt, err error) {
	slog.ErrorContext(ctx, "generation failed", "attempt_id", a.id, "error", err)
	if !a.token.Cancelled() {
		o.report(ctx, a.id, StatusError, fmt.Sprintf("Ocorreu um erro: %v", err))
	}
}

// run はパスを選んで生成し、キャンセルされていなければ保存します。
func (o *Orchestrator) run(ctx context.Context, a *attempt, req domain.GenerationRequest, prompt string) (*Outcome, error) {
	snapshot := req
	if req.Mode == domain.ModeImage {
		snapshot.Prompt = prompt
	}
	outcome := &Outcome{AttemptID: a.id, Prompt: prompt}

	slog.InfoContext(ctx, "generation started", "attempt_id", a.id, "mode", req.Mode, "composition", req.IsComposition())

	var (
		result *domain.GenerationResult
		err    error
	)
	switch {
	case req.Mode == domain.ModeVideo:
		result, err = o.runVideo(ctx, a, req, prompt)
	case req.IsComposition():
		result, err = o.compose(ctx, a, req, prompt)
	default:
		result, err = o.synthesize(ctx, a, req, prompt)
	}
	if err != nil {
		return nil, err
	}
	if result == nil || a.token.Cancelled() {
		slog.InfoContext(ctx, "generation abandoned, result discarded", "attempt_id", a.id)
		outcome.Cancelled = true
		return outcome, nil
	}

	creation := domain.NewCreation(snapshot, *result, o.now())
	outcome.Creation = &creation
	o.persist(ctx, a, outcome)
	return outcome, nil
}

// persist は Creation を保存します。失敗しても結果は破棄しません。
func (o *Orchestrator) persist(ctx context.Context, a *attempt, outcome *Outcome) {
	id, err := o.store.PutCreation(ctx, *outcome.Creation)
	if err != nil {
		outcome.PersistErr = err
		outcome.PersistWarning = MsgSaveFailed
		slog.WarnContext(ctx, "failed to persist creation", "attempt_id", a.id, "error", err)
		o.report(ctx, a.id, StatusWarning, MsgSaveFailed)
		return
	}
	outcome.Creation.ID = id
	if d, ok := o.store.(durability); ok && !d.Durable() {
		outcome.PersistWarning = MsgSavedSessionOnly
		slog.WarnContext(ctx, "creation kept in memory only", "attempt_id", a.id, "creation_id", id)
		o.report(ctx, a.id, StatusWarning, MsgSavedSessionOnly)
		return
	}
	slog.InfoContext(ctx, "creation persisted", "attempt_id", a.id, "creation_id", id)
	o.report(ctx, a.id, StatusSuccess, MsgSaved)
}

// compose は商品画像をシーンに合成します。
func (o *Orchestrator) compose(ctx context.Context, a *attempt, req domain.GenerationRequest, prompt string) (*domain.GenerationResult, error) {
	o.report(ctx, a.id, StatusProgress, MsgComposing)

	mask, err := selectedMask(req.SceneImage)
	if err != nil {
		return nil, err
	}
	scene := req.SceneImage.WithoutMask()
	products := make([]domain.ImageAsset, len(req.ProductImages))
	for i, p := range req.ProductImages {
		products[i] = p.WithoutMask()
	}

	res, err := o.media.ComposeImage(ctx, generator.ComposeRequest{
		Prompt:         prompt,
		NegativePrompt: req.NegativePrompt,
		AspectRatio:    req.AspectRatio,
		ProductImages:  products,
		SceneImage:     &scene,
		ContextImages:  req.ContextImages,
		Mask:           mask,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Image == nil {
		return nil, &generator.GenerationError{Op: "compose image", Err: generator.ErrNoImageReturned}
	}
	return &domain.GenerationResult{
		Type: domain.OutputImage,
		Src:  imgcodec.Encode(res.Image.Data, mimeOrPNG(res.Image.MimeType)).DataURL,
		Text: res.Text,
	}, nil
}

// synthesize はテキストから画像を生成します。
func (o *Orchestrator) synthesize(ctx context.Context, a *attempt, req domain.GenerationRequest, prompt string) (*domain.GenerationResult, error) {
	o.report(ctx, a.id, StatusProgress, MsgSynthesizing)

	img, err := o.media.GenerateImage(ctx, prompt, req.NegativePrompt, req.AspectRatio)
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, &generator.GenerationError{Op: "generate image", Err: generator.ErrNoImageReturned}
	}
	return &domain.GenerationResult{
		Type: domain.OutputImage,
		Src:  imgcodec.Encode(img.Data, mimeOrPNG(img.MimeType)).DataURL,
	}, nil
}

// selectedMask はシーン画像のマスクを返します。何も塗られていなければ nil です。
func selectedMask(scene *domain.ImageAsset) ([]byte, error) {
	if !scene.HasMask() {
		return nil, nil
	}
	data, err := imgcodec.Bytes(domain.ImageAsset{Base64: scene.MaskAPIBase64})
	if err != nil {
		return nil, fmt.Errorf("invalid region mask: %w", err)
	}
	selected, err := imgutil.HasSelection(data)
	if err != nil {
		return nil, fmt.Errorf("invalid region mask: %w", err)
	}
	if !selected {
		return nil, nil
	}
	return data, nil
}

func (o *Orchestrator) report(ctx context.Context, attemptID string, kind StatusKind, msg string) {
	o.reporter.Report(ctx, Status{AttemptID: attemptID, Kind: kind, Message: msg})
}

func mimeOrPNG(mimeType string) string {
	if mimeType == "" {
		return "image/png"
	}
	return mimeType
}

// IsUserError は利用者の入力に起因するエラーかどうかを返します。
func IsUserError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
