// Package main provides the CLI entrypoint for flowread.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/flowread/internal/config"
	"github.com/verte-zerg/flowread/internal/logging"
	"github.com/verte-zerg/flowread/internal/store"
	"github.com/verte-zerg/flowread/internal/store/redisstore"
)

const (
	backendSQLite = "sqlite"
	backendRedis  = "redis"

	defaultRedisAddr   = "localhost:6379"
	defaultRedisPrefix = "flowread"
)

var (
	globalConfigPath    string
	globalDBPath        string
	globalBackend       string
	globalRedisAddr     string
	globalRedisPassword string
	globalRedisDB       int
	globalRedisPrefix   string
	globalLogLevel      string
	globalLogFile       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flowread",
		Short:         "Terminal speed-reading trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalConfigPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&globalDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&globalBackend, "store", backendSQLite, "storage backend (sqlite or redis)")
	flags.StringVar(&globalRedisAddr, "redis-addr", defaultRedisAddr, "Redis address")
	flags.StringVar(&globalRedisPassword, "redis-password", "", "Redis password")
	flags.IntVar(&globalRedisDB, "redis-db", 0, "Redis database number")
	flags.StringVar(&globalRedisPrefix, "redis-prefix", defaultRedisPrefix, "Redis key prefix")
	flags.StringVar(&globalLogLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&globalLogFile, "log-file", config.DefaultLogPath(), "log file path, or - for stderr")

	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newAssessCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newTextsCmd())
	rootCmd.AddCommand(newDrillCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// env is the per-command runtime: a logger and an open store.
type env struct {
	log      *zap.Logger
	repo     store.Repository
	closeLog func()
}

// loadFileConfig reads the config file and applies its store and log
// sections to flags that were not set explicitly.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(globalConfigPath)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "store", &globalBackend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "db", &globalDBPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "redis-addr", &globalRedisAddr, fileCfg.Store.RedisAddr)
	applyStringConfig(cmd, "redis-password", &globalRedisPassword, fileCfg.Store.RedisPassword)
	applyIntConfig(cmd, "redis-db", &globalRedisDB, fileCfg.Store.RedisDB)
	applyStringConfig(cmd, "redis-prefix", &globalRedisPrefix, fileCfg.Store.RedisPrefix)
	applyStringConfig(cmd, "log-level", &globalLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &globalLogFile, fileCfg.Log.File)
	return fileCfg, nil
}

func validateGlobal() error {
	switch globalBackend {
	case backendSQLite:
		if strings.TrimSpace(globalDBPath) == "" {
			return fmt.Errorf("--db must not be empty")
		}
	case backendRedis:
		if strings.TrimSpace(globalRedisAddr) == "" {
			return fmt.Errorf("--redis-addr must not be empty")
		}
		if globalRedisDB < 0 {
			return fmt.Errorf("--redis-db must be >= 0")
		}
	default:
		return fmt.Errorf("--store must be %s or %s", backendSQLite, backendRedis)
	}
	if _, err := logging.ParseLevel(globalLogLevel); err != nil {
		return err
	}
	return nil
}

// setup loads config, validates flags and opens the logger and the store.
// validateLocal runs after the config file has been applied and before any
// side effect.
func setup(cmd *cobra.Command, validateLocal func(config.FileConfig) error) (*env, error) {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := validateGlobal(); err != nil {
		return nil, err
	}
	if validateLocal != nil {
		if err := validateLocal(fileCfg); err != nil {
			return nil, err
		}
	}
	log, closeLog, err := logging.New(globalLogLevel, globalLogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	repo, err := openStore(cmd.Context())
	if err != nil {
		closeLog()
		return nil, err
	}
	log.Debug("store opened", zap.String("backend", globalBackend), zap.String("command", cmd.Name()))
	return &env{log: log, repo: repo, closeLog: closeLog}, nil
}

func (e *env) close() {
	if cerr := e.repo.Close(); cerr != nil {
		logErrf("failed to close store: %v\n", cerr)
	}
	e.closeLog()
}

func openStore(ctx context.Context) (store.Repository, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch globalBackend {
	case backendRedis:
		st, err := redisstore.Dial(ctx, globalRedisAddr, globalRedisPassword, globalRedisDB, globalRedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return st, nil
	default:
		st, err := store.Open(globalDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
