package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/university-recommender/internal/cache"
	"github.com/actuallystonmai/university-recommender/internal/dataset"
	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/enrich"
	"github.com/actuallystonmai/university-recommender/internal/handler"
	"github.com/actuallystonmai/university-recommender/internal/logging"
	"github.com/actuallystonmai/university-recommender/internal/metrics"
	"github.com/actuallystonmai/university-recommender/internal/recommend"
	"github.com/actuallystonmai/university-recommender/internal/repository"
	"github.com/actuallystonmai/university-recommender/internal/router"
	"github.com/actuallystonmai/university-recommender/internal/service"
	"github.com/actuallystonmai/university-recommender/seeds"
)

// loadTable reads the dataset once at startup: a configured CSV wins, then
// PostgreSQL, then generated rows when no database is configured.
func loadTable(ctx context.Context) (*domain.Table, error) {
	switch {
	case cfg.DatasetPath != "" && cfg.DatabaseURL == "":
		rows, err := dataset.LoadFile(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		return domain.NewTable(rows), nil
	case cfg.DatabaseURL != "":
		var rows []domain.University
		err := withRepo(ctx, func(repo *repository.Repository) error {
			if err := checkSeed(ctx, repo); err != nil {
				return err
			}
			var err error
			rows, err = repo.ListUniversities(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		return domain.NewTable(rows), nil
	default:
		logging.Warn().Msg("no database or dataset configured, using generated universities")
		return domain.NewTable(seeds.Generate(seeds.DefaultCount, seeds.DefaultSeed)), nil
	}
}

// stores returns Redis-backed stores when a Redis URL is configured and
// in-process ones otherwise.
func stores(ctx context.Context) (service.ResultCache, service.SessionStore, func(), error) {
	if cfg.RedisURL == "" {
		logging.Warn().Msg("no redis configured, caching in process")
		return cache.NewMemoryCache(cfg.CacheTTL), cache.NewMemorySessionStore(cfg.SessionTTL), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	results := cache.NewCache(client, cfg.CacheTTL)
	if err := results.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("redis not ready: %w", err)
	}
	logging.Info().Msg("connected to Redis")
	return results, cache.NewSessionStore(client, cfg.SessionTTL), func() { client.Close() }, nil
}

func narrator() service.Narrator {
	if cfg.LLMAPIKey == "" {
		logging.Warn().Msg("no LLM API key configured, narratives disabled")
		return nil
	}
	completer := enrich.NewOpenAICompleter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	return enrich.New(completer, enrich.Options{
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
		RatePerSec: cfg.LLMRatePerSec,
	})
}

func buildService(ctx context.Context, m metrics.Recorder) (*service.Service, func(), error) {
	table, err := loadTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}
	logging.Info().Int("universities", table.Len()).Msg("dataset loaded")

	results, sessions, closeStores, err := stores(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewService(service.Deps{
		Table:    table,
		Pipeline: recommend.NewPipeline(cfg.Pipeline()),
		Cache:    results,
		Sessions: sessions,
		Narrator: narrator(),
		Metrics:  m,
	}, service.Options{
		MaxLimit:         cfg.MaxLimit,
		BatchConcurrency: cfg.BatchConcurrency,
	})
	return svc, closeStores, nil
}

func createServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.NewManager()
			svc, closeStores, err := buildService(ctx, m)
			if err != nil {
				return err
			}
			defer closeStores()

			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           router.Setup(handler.NewHandler(svc), m),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logging.Info().Str("addr", srv.Addr).Msg("server running")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logging.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func createRecommendCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recommend [sentence]",
		Short: "Run one recommendation against the configured dataset and print JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStores, err := buildService(cmd.Context(), metrics.Nop)
			if err != nil {
				return err
			}
			defer closeStores()

			result, err := svc.Recommend(cmd.Context(), service.RecommendRequest{Query: args[0], Limit: limit})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Recommendation)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 uses the configured default)")
	return cmd
}
