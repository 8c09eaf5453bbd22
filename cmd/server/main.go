package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/api"
	"github.com/tensorplex-labs/territory-ranker/internal/config"
	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
	"github.com/tensorplex-labs/territory-ranker/internal/storage"
	"github.com/tensorplex-labs/territory-ranker/internal/utils/logger"
	"github.com/tensorplex-labs/territory-ranker/internal/utils/redis"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	source, err := storage.NewSource(&cfg.StorageEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage source")
	}
	source = storage.WithFetchTimeout(source, config.NewTimeoutConfig(cfg.Environment).FetchTimeout)

	var cache redis.RedisInterface
	if cfg.CacheEnabled {
		r, err := redis.NewRedis(&cfg.RedisEnvConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer r.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = r.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Redis did not answer ping")
		}
		cache = r
	}

	eval, err := evaluator.NewEvaluatorFromConfig(cfg, source, cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize evaluator")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server, err := api.NewServer(&cfg.ServerEnvConfig, eval, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down ranking server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
