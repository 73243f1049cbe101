package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ykvlv/etymology-bot/internal/config"
	"github.com/ykvlv/etymology-bot/internal/delivery"
	"github.com/ykvlv/etymology-bot/internal/generator"
	"github.com/ykvlv/etymology-bot/internal/metrics"
	"github.com/ykvlv/etymology-bot/internal/onboarding"
	"github.com/ykvlv/etymology-bot/internal/scheduler"
	"github.com/ykvlv/etymology-bot/internal/store"
	"github.com/ykvlv/etymology-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	gen     *generator.OpenAI
	reg     *prometheus.Registry
	httpSrv *http.Server
	repo    store.Repo
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	httpClient := &http.Client{Timeout: cfg.TelegramTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	gen, err := generator.NewOpenAI(generator.Config{
		APIKey:     cfg.OpenAIKey,
		Model:      cfg.OpenAIModel,
		BaseURL:    cfg.OpenAIBaseURL,
		MaxRetries: cfg.OpenAIMaxRetries,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, gen: gen, reg: reg, httpSrv: srv}, nil
}

// openStore opens SQLite, or an in-memory store for config.MemoryDBPath.
func (a *App) openStore(ctx context.Context) (store.Repo, error) {
	if a.cfg.DBPath == config.MemoryDBPath {
		a.log.Warn("using in-memory store, profiles are lost on restart")
		return store.NewMemory(), nil
	}
	return store.OpenSQLite(ctx, a.cfg.DBPath)
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting etymology-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("model", a.cfg.OpenAIModel),
	)

	repo, err := a.openStore(ctx)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("store ready", zap.String("path", a.cfg.DBPath))

	collector := metrics.NewCollector(a.reg)
	client := telegram.NewClient(a.bot)
	svc := delivery.NewService(a.gen, client, repo, a.log, delivery.Options{
		Selector:        delivery.NewWeightedSelector(a.cfg.EnhancedRatio),
		GenerateTimeout: a.cfg.GenerateTimeout,
		StampOnDemand:   a.cfg.OnDemandResetsCadence,
		Metrics:         collector,
	})
	sched := scheduler.New(repo, svc, a.log, scheduler.Options{
		Period:         a.cfg.TickPeriod,
		MaxConcurrency: a.cfg.MaxConcurrency,
		Metrics:        collector,
	})
	router := telegram.NewRouter(client, a.log, repo, onboarding.NewDialog(repo), svc)

	if err := client.SetCommands(); err != nil {
		a.log.Warn("set bot commands failed", zap.Error(err))
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()
			wg.Wait()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if err := a.repo.Close(); err != nil {
				a.log.Warn("store close error", zap.Error(err))
			}
			return nil

		case upd, ok := <-updCh:
			if !ok {
				updCh = nil
				continue
			}
			router.HandleUpdate(ctx, upd)
		}
	}
}
