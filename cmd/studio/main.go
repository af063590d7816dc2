package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/auth"
	"github.com/shouni/gemini-studio-kit/pkg/config"
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
	"github.com/shouni/gemini-studio-kit/pkg/inspo"
	"github.com/shouni/gemini-studio-kit/pkg/orchestrator"
	"github.com/shouni/gemini-studio-kit/pkg/server"
	"github.com/shouni/gemini-studio-kit/pkg/store"
)

// fetchTimeout は生成済み動画のダウンロードに許す時間です。
const fetchTimeout = 2 * time.Minute

// localStore は SQLite とメモリの両方が満たすストアの操作です。
type localStore interface {
	PutCreation(ctx context.Context, c domain.Creation) (int64, error)
	ListCreations(ctx context.Context) ([]domain.Creation, error)
	DeleteCreation(ctx context.Context, id int64) error
	PutInspo(ctx context.Context, img domain.InspoImage) (int64, error)
	ListInspo(ctx context.Context) ([]domain.InspoImage, error)
	DeleteInspo(ctx context.Context, id int64) error
	Setting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath); err != nil {
		slog.Error("studio stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := openStore(ctx, cfg.Store.Path)
	if closer, ok := db.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	codec := imgcodec.New(imgcodec.NewHTTPClient(fetchTimeout, false))

	gen, err := generator.NewGeminiClient(ctx, cfg.APIKey, generator.WithModels(cfg.Models))
	if err != nil {
		return err
	}

	hub := server.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	studio, err := orchestrator.New(gen, gen, db, codec,
		orchestrator.WithReporter(hub),
		orchestrator.WithAPIKey(cfg.APIKey),
		orchestrator.WithPollInterval(cfg.Video.PollInterval),
		orchestrator.WithMaxPolls(cfg.Video.MaxPolls),
	)
	if err != nil {
		return err
	}

	library, err := inspo.NewService(db, codec)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Studio:       studio,
		Prompts:      gen,
		Creations:    db,
		Inspirations: library,
		Session:      newSession(ctx, cfg),
		Hub:          hub,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("studio listening", "addr", cfg.Server.ListenAddr, "models", cfg.Models)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	studio.ClearAll(context.Background())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStore は SQLite を開きます。開けない場合はメモリのみで動作を続けます。
func openStore(ctx context.Context, path string) localStore {
	db, err := store.Open(ctx, path)
	if err != nil {
		slog.WarnContext(ctx, "local store unavailable, creations will not persist", "path", path, "error", err)
		return store.NewMemory()
	}
	return db
}

// newSession は実行時設定からクライアント ID を読み込みます。読めなければ認証なしで動きます。
func newSession(ctx context.Context, cfg *config.Config) *auth.Manager {
	clientID, err := auth.LoadClientID(ctx, nil, cfg.Auth.SecretsLocation)
	if err != nil {
		slog.WarnContext(ctx, "authentication disabled", "error", err)
	}
	m := auth.NewManager(auth.Config{
		ClientID:     clientID,
		ClientSecret: cfg.Auth.ClientSecret,
		RedirectURL:  cfg.Auth.RedirectURL,
	})
	if err == nil && !m.Enabled() {
		slog.WarnContext(ctx, "authentication disabled: placeholder client id")
	}
	return m
}
