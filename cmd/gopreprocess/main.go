package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/config"
	"github.com/geneontology/gopreprocess/internal/logger"
	"github.com/geneontology/gopreprocess/internal/pipeline"
	"github.com/geneontology/gopreprocess/internal/retrieval"
	"github.com/geneontology/gopreprocess/internal/storage"
)

const Version = "0.4.0"

var (
	rootCmd = &cobra.Command{
		Use:           "gopreprocess",
		Short:         "Transfer GO annotations between organisms via orthology",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the run database (SQLite); overrides db.path")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(convertProteinCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// env holds what every transfer command needs. close releases it.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store *storage.SQLiteStore
}

func setup() (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	e := &env{cfg: cfg, log: log}
	if cfg.DB.Path != "" {
		store, err := storage.NewSQLiteStore(cfg.DB.Path)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		e.store = store
	}
	return e, nil
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

func (e *env) deps(refresh bool) pipeline.Deps {
	r := e.cfg.Retrieval
	fetcher := retrieval.NewService(e.cfg.Sources, retrieval.Options{
		CacheDir:   r.CacheDir,
		Retries:    r.Retries,
		RetryDelay: r.RetryDelay,
		Timeout:    r.Timeout,
		Parallel:   r.Parallel,
		Refresh:    refresh,
	}, e.log)

	d := pipeline.Deps{Config: e.cfg, Log: e.log, Fetcher: fetcher}
	if e.store != nil {
		d.Store = e.store
	}
	return d
}

func printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	label := "Error"
	if k, ok := apperr.KindOf(err); ok {
		label = "Error (" + string(k) + ")"
	}
	_, _ = red.Fprintf(os.Stderr, "%s: ", label)
	fmt.Fprintln(os.Stderr, err)
}
