package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/gymdesk"
	"github.com/MrEthical07/gymdesk/api"
	"github.com/MrEthical07/gymdesk/internal/config"
	"github.com/MrEthical07/gymdesk/storage"
)

var (
	auditLog       string
	collectMetrics bool
)

var rootCmd = &cobra.Command{
	Use:           "gymdesk",
	Short:         "Administrator console session client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLog, "audit-log", "", "append audit events as JSON lines to this file")
	rootCmd.PersistentFlags().BoolVar(&collectMetrics, "metrics", false, "collect in-process metrics")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, profileCmd, gymCmd, metricsCmd)
}

// withSession loads the configuration, opens the configured store, restores any
// persisted credential and runs fn. Everything opened is released before it returns.
func withSession(ctx context.Context, fn func(engine *gymdesk.Engine, snap gymdesk.Session) error) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("could not load the configuration: %w", err)
	}
	setLogLevel(cfg)

	engineCfg := gymdesk.DefaultConfig()
	engineCfg.API.BaseURL = cfg.APIURL
	engineCfg.Credential.TTL = cfg.CredentialTTL
	engineCfg.Credential.KeyPrefix = cfg.RedisPrefix
	engineCfg.Metrics.Enabled = collectMetrics
	engineCfg.Metrics.EnableLatencyHistograms = collectMetrics

	store, closeStore, err := openStore(cfg, engineCfg.StorageKeys())
	if err != nil {
		return fmt.Errorf("could not open the %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Debug().Err(err).Msg("could not close the store")
		}
	}()

	builder := gymdesk.New().WithStore(store).WithLogger(log.Logger)
	if auditLog != "" {
		f, err := os.OpenFile(auditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("could not open the audit log: %w", err)
		}
		defer f.Close()
		engineCfg.Audit.Enabled = true
		engineCfg.Audit.DropIfFull = false
		builder = builder.WithAuditSink(gymdesk.NewJSONWriterSink(f))
	}

	engine, err := builder.WithConfig(engineCfg).Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	snap, err := engine.Initialize(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not restore the stored credential")
	}
	return fn(engine, snap)
}

func setLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.IsEnvProduction() && level < zerolog.InfoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func openStore(cfg *config.Config, keys storage.Keys) (storage.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return storage.NewRedisStore(rdb, keys), rdb.Close, nil
	case config.StoreMemory:
		store, err := storage.NewMemoryStore(keys)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	default:
		store, err := storage.OpenBoltStore(cfg.BoltPath, keys)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
}

// report prints the operator-facing text for err and returns err so the process
// exits non-zero.
func report(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var msg string
	switch {
	case errors.Is(err, gymdesk.ErrNotAuthenticated):
		msg = "not signed in"
	case errors.Is(err, gymdesk.ErrNoGym):
		msg = "no gym associated with this account"
	default:
		msg = api.UserMessage(err)
	}
	fmt.Fprintln(w, msg)
	return err
}
