package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/symptomsync/healthai/backend/internal/client/supabase"
	"github.com/symptomsync/healthai/backend/internal/config"
	"github.com/symptomsync/healthai/backend/internal/handler"
	"github.com/symptomsync/healthai/backend/internal/logging"
	"github.com/symptomsync/healthai/backend/internal/model/admin"
	"github.com/symptomsync/healthai/backend/internal/model/record"
	"github.com/symptomsync/healthai/backend/internal/service/ai"
	"github.com/symptomsync/healthai/backend/internal/service/auth"
	"github.com/symptomsync/healthai/backend/internal/service/chat"
	"github.com/symptomsync/healthai/backend/internal/service/conversation"
	"github.com/symptomsync/healthai/backend/internal/service/realtime"
	recordservice "github.com/symptomsync/healthai/backend/internal/service/record"
	"github.com/symptomsync/healthai/backend/internal/service/summary"
	"github.com/symptomsync/healthai/backend/internal/storage/sqlite"
)

func main() {
	os.Exit(serve())
}

// serve runs the API until shutdown and returns the process exit code.
func serve() int {
	logging.Preinit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded, using process environment only", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		return 1
	}
	defer logCloser.Close()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	var supa *supabase.Client
	if cfg.Auth.Enabled() {
		supa = supabase.NewClient(cfg.Auth.SupabaseURL, cfg.Auth.AnonKey, nil)
	}

	var db *sqlite.DB
	if cfg.Storage.ChatStore == config.BackendSQLite || cfg.Storage.RecordBackend == config.BackendSQLite {
		var err error
		db, err = sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("sqlite storage opened", "path", db.Path())
	}

	records, err := newRecordStore(cfg.Storage, supa, db)
	if err != nil {
		return err
	}

	var chatStore conversation.Store = conversation.NewMemoryStore()
	if cfg.Storage.ChatStore == config.BackendSQLite {
		chatStore = sqlite.NewKVStore(db)
	}

	var provider auth.Provider
	if supa != nil {
		provider = supa
	} else {
		provider = auth.NewMemoryProvider()
		slog.Warn("SUPABASE_URL not set, using the in-memory auth provider")
	}

	var completer ai.Completer
	if cfg.AI.Enabled() {
		completer, err = ai.NewCompleter(ctx, cfg.AI)
		if err != nil {
			slog.Warn("failed to initialize AI client, continuing without AI", "provider", cfg.AI.Provider, "error", err)
			completer = nil
		} else {
			slog.Info("AI client initialized", "provider", cfg.AI.Provider)
		}
	} else {
		slog.Warn("AI credentials not configured, chat replies are disabled", "provider", cfg.AI.Provider)
	}

	chatSvc := chat.NewService(
		recordservice.NewAggregator(records),
		summary.NewFormatter(cfg.Chat.DateLayout, cfg.Chat.Location, cfg.Chat.HealthLogLimit),
		completer,
		chatStore,
		chat.Options{DailyQuota: cfg.Chat.DailyQuota, InitialUsed: cfg.Chat.InitialUsed},
	)

	router := handler.NewRouter(handler.Deps{
		Auth:             provider,
		PasswordRedirect: cfg.Auth.PasswordRedirect,
		Chat:             chatSvc,
		Hub:              realtime.NewHub(),
		Admin:            admin.NewMemoryStore(admin.Seed()),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
	})

	return startServer(ctx, cfg.Server, router)
}

func newRecordStore(cfg config.StorageConfig, supa *supabase.Client, db *sqlite.DB) (record.Store, error) {
	switch cfg.RecordBackend {
	case config.BackendSupabase:
		if supa == nil {
			return nil, fmt.Errorf("RECORD_BACKEND=supabase requires SUPABASE_URL")
		}
		return supa, nil
	case config.BackendSQLite:
		return sqlite.NewRecordStore(db), nil
	default:
		slog.Warn("using the in-memory record store, every user starts without records")
		return record.NewMemoryStore(), nil
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	slog.Info("SymptomSync backend listening", "addr", serverCfg.Addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
