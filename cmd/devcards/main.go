package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vukan322/devcards/internal/cards"
	"github.com/vukan322/devcards/internal/config"
	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/logging"
	"github.com/vukan322/devcards/internal/providers"
	"github.com/vukan322/devcards/internal/providers/demo"
	githubprovider "github.com/vukan322/devcards/internal/providers/github"
	"github.com/vukan322/devcards/internal/render"
	"github.com/vukan322/devcards/internal/server"
)

func main() {
	var (
		serve     bool
		useDemo   bool
		card      string
		output    string
		allCommit bool
	)

	flag.BoolVar(&serve, "serve", false, "run the HTTP server instead of rendering a file")
	flag.BoolVar(&useDemo, "demo", false, "use the offline demo provider")
	flag.StringVar(&card, "card", "stats", "card to render: stats or top-langs")
	flag.StringVar(&output, "out", "devcards.svg", "output SVG file path")
	flag.BoolVar(&allCommit, "all-commits", false, "rank on lifetime commits instead of the last year")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	accounts := cfg.Accounts
	factory := func(acc config.Account) providers.Provider {
		return githubprovider.New(acc.Token)
	}
	if useDemo {
		factory = func(config.Account) providers.Provider { return demo.New() }
		if len(accounts) == 0 {
			accounts = []config.Account{{Index: 1, User: "demo"}, {Index: 2, User: "demo-work"}}
		}
	}
	for _, acc := range accounts {
		if acc.Token == "" && !useDemo {
			log.Warn("account has no token, GitHub GraphQL requires one", zap.Int("account", acc.Index), zap.String("user", acc.User))
		}
	}

	svc := cards.NewService(accounts, factory, cfg.FetchTimeout, log)

	if serve {
		if err := runServer(cfg, svc, log); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+5*time.Second)
	defer cancel()

	svg, err := renderCard(ctx, svc, card, allCommit)
	if err != nil {
		log.Fatal("failed to render card", zap.String("card", card), zap.Error(err))
	}

	if err := os.WriteFile(output, svg, 0o644); err != nil {
		log.Fatal("failed to write SVG", zap.String("path", output), zap.Error(err))
	}

	fmt.Printf("devcards: generated %s (%s) from %d account(s)\n", output, card, len(accounts))
}

func renderCard(ctx context.Context, svc *cards.Service, card string, allCommits bool) ([]byte, error) {
	switch card {
	case "stats":
		agg, err := svc.Stats(ctx, cards.StatsRequest{Options: providers.StatsOptions{IncludeAllCommits: allCommits}})
		if err != nil {
			return nil, err
		}
		return render.StatsCard(agg, render.StatsOptions{IncludeAllCommits: allCommits})
	case "top-langs":
		table, err := svc.TopLanguages(ctx, cards.LanguagesRequest{
			SizeWeight:  core.DefaultSizeWeight,
			CountWeight: core.DefaultCountWeight,
		})
		if err != nil {
			return nil, err
		}
		return render.LanguagesCard(table, render.LanguagesOptions{})
	}
	return nil, fmt.Errorf("unknown card %q", card)
}

func runServer(cfg *config.Config, svc *cards.Service, log *zap.Logger) error {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.New(svc, cfg.CacheSeconds, log).Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.Int("accounts", len(cfg.Accounts)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
