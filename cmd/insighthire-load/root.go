package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/insighthire/internal/config"
	dbRedis "github.com/kailas-cloud/insighthire/internal/db/redis"
	"github.com/kailas-cloud/insighthire/internal/ingest"
	logpkg "github.com/kailas-cloud/insighthire/internal/logger"
	"github.com/kailas-cloud/insighthire/internal/metrics"
	candidaterepo "github.com/kailas-cloud/insighthire/internal/repository/candidate"
	openaiEmb "github.com/kailas-cloud/insighthire/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/insighthire/internal/usecase/embedding"
	"github.com/kailas-cloud/insighthire/internal/version"
)

const app = "insighthire-load"

type loadFlags struct {
	env       string
	file      string
	batchSize int
	dryRun    bool
}

func newRootCmd() *cobra.Command {
	var f loadFlags

	root := &cobra.Command{
		Use:           app + " --file resumes.jsonl",
		Short:         "Load resume records (JSONL, with optional txt/pdf/docx files) into insighthire",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, &f)
		},
	}

	root.Flags().StringVarP(&f.file, "file", "f", "", "JSONL file with one resume record per line (\"-\" for stdin)")
	root.Flags().StringVarP(&f.env, "env", "e", "", "config environment (default: $ENV or local)")
	root.Flags().IntVarP(&f.batchSize, "batch-size", "b", ingest.DefaultBatchSize, "records embedded and stored per round")
	root.Flags().BoolVar(&f.dryRun, "dry-run", false, "validate and embed without writing to the store")
	_ = root.MarkFlagRequired("file")

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s)\n", app, version.Version, version.Commit, version.Date)
		},
	}
}

func runLoad(cmd *cobra.Command, f *loadFlags) error {
	_ = godotenv.Load()

	env := f.env
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	in, baseDir, closeIn, err := openInput(cmd, f.file)
	if err != nil {
		return err
	}
	defer closeIn()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterProviderMetrics()
	embedder := embeddinguc.NewInstrumentedEmbedder(
		openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		}),
		cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	loader := ingest.New(
		candidaterepo.New(store, cfg.Storage.KeyPrefix, logger),
		embedder,
		ingest.WithBatchSize(f.batchSize),
		ingest.WithDryRun(f.dryRun),
		ingest.WithLogger(logger),
	)

	logger.Info("Loading resumes",
		zap.String("file", f.file),
		zap.String("key_prefix", cfg.Storage.KeyPrefix),
		zap.Bool("dry_run", f.dryRun),
	)

	rep, err := loader.Load(ctx, in, baseDir)
	printReport(cmd.OutOrStdout(), &rep)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, string, func(), error) {
	if path == "-" {
		wd, _ := os.Getwd()
		return cmd.InOrStdin(), wd, func() {}, nil
	}
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", nil, fmt.Errorf("open %s: %w", path, err)
	}
	return fh, filepath.Dir(path), func() { _ = fh.Close() }, nil
}

func printReport(w io.Writer, rep *ingest.Report) {
	fmt.Fprintf(w, "read: %d, created: %d, updated: %d, embedded: %d (%d tokens), failed: %d\n",
		rep.Read, rep.Created, rep.Updated, rep.Embedded, rep.Tokens, len(rep.Failed))
	for _, f := range rep.Failed {
		fmt.Fprintf(w, "  %s\n", f.Error())
	}
}
