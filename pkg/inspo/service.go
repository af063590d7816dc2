package inspo

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
)

// InitializedKey は既定画像の投入が済んだことを示す設定キーです。
const InitializedKey = "inspoImagesInitialized_v1"

// fetchConcurrency は既定画像を同時に取得する上限です。
const fetchConcurrency = 4

// Seed は既定で投入する参考画像です。
type Seed struct {
	URL      string
	Alt      string
	Category domain.InspoCategory
}

// DefaultSeeds は初回起動時に投入する 8 枚のシーン画像です。
var DefaultSeeds = []Seed{
	{URL: "https://images.pexels.com/photos/276724/pexels-photo-276724.jpeg", Alt: "Sala de estar moderna com sofá e estante de livros", Category: domain.CategoryDecor},
	{URL: "https://images.pexels.com/photos/37347/office-product-business-natural-light.jpg", Alt: "Mesa de escritório elegante com laptop e material de escritório", Category: domain.CategoryLuxury},
	{URL: "https://images.pexels.com/photos/1375736/pexels-photo-1375736.jpeg", Alt: "Interior de uma loja de roupas chique com araras de roupas", Category: domain.CategoryFashion},
	{URL: "https://images.pexels.com/photos/162553/keys-workshop-mechanic-tools-162553.jpeg", Alt: "Ferramentas de mecânico organizadas em uma superfície de madeira", Category: domain.CategoryAdvertising},
	{URL: "https://images.pexels.com/photos/2082087/pexels-photo-2082087.jpeg", Alt: "Cozinha moderna e bem iluminada com armários brancos", Category: domain.CategoryDecor},
	{URL: "https://images.pexels.com/photos/2635038/pexels-photo-2635038.jpeg", Alt: "Close-up de relógios de luxo em exibição", Category: domain.CategoryLuxury},
	{URL: "https://images.pexels.com/photos/102129/pexels-photo-102129.jpeg", Alt: "Bolsa de couro elegante em um fundo neutro", Category: domain.CategoryFashion},
	{URL: "https://images.pexels.com/photos/3183150/pexels-photo-3183150.jpeg", Alt: "Equipe de negócios colaborando em uma reunião de escritório", Category: domain.CategoryAdvertising},
}

// Repository はインスピレーション画像と設定の永続化先です。
type Repository interface {
	PutInspo(ctx context.Context, img domain.InspoImage) (int64, error)
	ListInspo(ctx context.Context) ([]domain.InspoImage, error)
	DeleteInspo(ctx context.Context, id int64) error
	Setting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Fetcher はリモート画像をエンコード済みで取得します。
type Fetcher interface {
	FetchRemote(ctx context.Context, rawURL string) (domain.ImageAsset, error)
}

// Service はインスピレーション画像の一覧、追加、削除と既定画像の投入を担当します。
type Service struct {
	repo    Repository
	fetcher Fetcher
	seeds   []Seed

	seedMu sync.Mutex
}

// NewService は依存関係を注入して Service を初期化します。
func NewService(repo Repository, fetcher Fetcher) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Service{repo: repo, fetcher: fetcher, seeds: DefaultSeeds}, nil
}

// List は必要なら既定画像を投入したうえで、すべての画像を返します。
func (s *Service) List(ctx context.Context) ([]domain.InspoImage, error) {
	s.initializeDefaults(ctx)
	return s.repo.ListInspo(ctx)
}

// Add はアップロードされた画像を保存します。alt にはファイル名を使います。
// 大きな画像は縮小してから保存します。
func (s *Service) Add(ctx context.Context, data []byte, filename string, category domain.InspoCategory) (domain.InspoImage, error) {
	if _, err := domain.ParseInspoCategory(string(category)); err != nil {
		return domain.InspoImage{}, err
	}
	if !imgcodec.IsImage(data) {
		return domain.InspoImage{}, fmt.Errorf("uploaded file is not an image")
	}

	data, mimeType, err := imgutil.ShrinkForStorage(data, imgcodec.DetectMIME(data), imgutil.MaxStoredBytes, imgutil.MaxStoredSide)
	if err != nil {
		return domain.InspoImage{}, err
	}
	asset := imgcodec.Encode(data, mimeType)
	img := domain.InspoImage{Src: asset.DataURL, Alt: filepath.Base(filename), Category: category}
	id, err := s.repo.PutInspo(ctx, img)
	if err != nil {
		return domain.InspoImage{}, err
	}
	img.ID = id
	return img, nil
}

// Delete は画像を削除します。
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteInspo(ctx, id)
}

// initializeDefaults は初回のみ既定画像を投入します。
// 失敗しても再試行しないよう、フラグは必ず立てます。
func (s *Service) initializeDefaults(ctx context.Context) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	if _, done, err := s.repo.Setting(ctx, InitializedKey); err != nil || done {
		if err != nil {
			slog.WarnContext(ctx, "could not read inspiration seed flag", "error", err)
		}
		return
	}
	defer s.markInitialized(ctx)

	existing, err := s.repo.ListInspo(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize default inspiration images", "error", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	slog.InfoContext(ctx, "initializing default inspiration images", "count", len(s.seeds))
	if err := s.seed(ctx); err != nil {
		slog.WarnContext(ctx, "failed to initialize default inspiration images", "error", err)
		return
	}
	slog.InfoContext(ctx, "default inspiration images initialized")
}

// seed は既定画像を並行して取得し、定義順に保存します。
func (s *Service) seed(ctx context.Context) error {
	assets := make([]domain.ImageAsset, len(s.seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, seed := range s.seeds {
		g.Go(func() error {
			asset, err := s.fetcher.FetchRemote(gctx, seed.URL)
			if err != nil {
				return err
			}
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, seed := range s.seeds {
		img := domain.InspoImage{Src: assets[i].DataURL, Alt: seed.Alt, Category: seed.Category}
		if _, err := s.repo.PutInspo(ctx, img); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) markInitialized(ctx context.Context) {
	if err := s.repo.SetSetting(ctx, InitializedKey, "true"); err != nil {
		slog.WarnContext(ctx, "failed to record inspiration seed flag", "error", err)
	}
}
