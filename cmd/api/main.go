package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/psychai/companion/internal/config"
	"github.com/psychai/companion/internal/handler"
	"github.com/psychai/companion/internal/handler/view"
	"github.com/psychai/companion/internal/service/ai"
	"github.com/psychai/companion/internal/service/chat"
	"github.com/psychai/companion/internal/service/clinical"
	"github.com/psychai/companion/internal/service/companion"
	"github.com/psychai/companion/internal/service/escalation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize completion service; without credentials every reply is the fallback
	var chatModel model.BaseChatModel
	chatModel, err = ai.NewChatModel(ctx, cfg.Completion)
	switch {
	case errors.Is(err, ai.ErrUnavailable):
		log.Printf("completion credentials not configured for provider %q, replies will use the fallback", cfg.Completion.Provider)
		chatModel = nil
	case err != nil:
		log.Printf("warning: failed to initialize chat model: %v", err)
		chatModel = nil
	default:
		log.Printf("completion provider %q initialized", cfg.Completion.Provider)
	}

	aiService, err := ai.NewService(ctx, chatModel, ai.Options{Timeout: cfg.Completion.Timeout})
	if err != nil {
		log.Fatalf("failed to initialize completion service: %v", err)
	}

	// Initialize escalation notifier
	notifier := escalation.NewNotifier(cfg.Escalation, escalation.NewTwilioPlacer(cfg.Escalation.AccountSID, cfg.Escalation.AuthToken, cfg.Escalation.Timeout))
	if notifier.Enabled() {
		log.Println("emergency call escalation enabled")
	} else {
		log.Println("warning: escalation credentials missing, crisis messages will not place calls")
	}

	companionService := companion.NewService(nil, notifier, aiService, chat.NewService(), clinical.NewStore())

	router, err := handler.NewRouter(companionService, view.Options{
		Gate:            view.InsecurePassphraseGate{Passphrase: cfg.Clinic.AccessKey},
		Icon:            view.LoadPageIcon(cfg.Clinic.PageIconPath),
		ClinicianName:   cfg.Clinic.ClinicianName,
		ContactPhone:    cfg.Clinic.ContactPhone,
		PatientBadge:    cfg.Clinic.PatientBadge,
		RefreshInterval: cfg.Clinic.RefreshInterval,
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PsychAI companion listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
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
