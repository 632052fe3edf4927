package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/sentembed/internal/cli"
	"github.com/hyperjump/sentembed/internal/config"
	"github.com/hyperjump/sentembed/internal/model"
	"github.com/hyperjump/sentembed/internal/server"
	"github.com/hyperjump/sentembed/internal/vector"
	"github.com/hyperjump/sentembed/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
}

// load resolves config and builds a logger. Local commands stay quiet unless --debug is set.
func (o *rootOptions) load(quiet bool) (*config.Config, *zap.Logger, string, error) {
	cfg, path, err := loadConfig(o.configPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || o.debug
	if quiet && !debug {
		return cfg, zap.NewNop(), path, nil
	}
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, path, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "sentembed",
		Short: "Local sentence embedding and similarity service",
		Long: `sentembed turns text into fixed-size vectors with a local sentence-transformers
model (exported to ONNX) and ranks vectors by cosine similarity.

Examples:
  sentembed server                               # serve the HTTP API
  sentembed embed "olá mundo" "hello world"      # print embeddings
  sentembed similar -q "coca" refrigerante suco  # rank texts against a query`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServerCmd(opts),
		newEmbedCmd(opts),
		newSimilarCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sentembed version %s\n", version)
		},
	}
}

func newServerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, path, err := opts.load(false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			logger.Info("config loaded",
				zap.String("config_path", path),
				zap.Bool("debug", cfg.Debug || opts.debug))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger)
		},
	}
}

// runServer warms the model, serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	components := initializeComponents(cfg, logger)
	defer components.Close()

	if cfg.Embedding.WarmUpOrDefault() {
		if _, err := components.Manager.Acquire(ctx); err != nil {
			// Keep serving: /ready stays 503 and requests retry the load.
			logger.Error("model warm-up failed", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Manager, cfg, components.Metrics, logger, version)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// encodeFlags are shared by embed and similar.
type encodeFlags struct {
	batchSize int
	progress  bool
	output    string
}

func (f *encodeFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.batchSize, "batch-size", "b", 0, "texts per model call (default from config)")
	fs.BoolVar(&f.progress, "progress", false, "show a progress bar on stderr")
	fs.StringVarP(&f.output, "output", "o", "text", "output format: text or json")
}

func (f *encodeFlags) encodeOptions(cfg *config.Config) model.EncodeOptions {
	bs := f.batchSize
	if bs == 0 {
		bs = cfg.Embedding.BatchSize
	}
	return model.EncodeOptions{BatchSize: bs, ShowProgress: f.progress}
}

func newEmbedCmd(opts *rootOptions) *cobra.Command {
	flags := &encodeFlags{}
	cmd := &cobra.Command{
		Use:   "embed [flags] <text>...",
		Short: "Print embeddings for texts (one per argument, or one per stdin line)",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(flags.output)
			if err != nil {
				return err
			}
			texts, err := textsFromArgs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, logger, _, err := opts.load(true)
			if err != nil {
				return err
			}
			components := initializeComponents(cfg, logger, model.WithProgressWriter(cmd.ErrOrStderr()))
			defer components.Close()

			vecs, err := components.Manager.EncodeMany(cmd.Context(), texts, flags.encodeOptions(cfg))
			if err != nil {
				return err
			}
			return cli.WriteEmbeddings(cmd.OutOrStdout(), texts, vecs, format)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newSimilarCmd(opts *rootOptions) *cobra.Command {
	flags := &encodeFlags{}
	var (
		query  string
		topK   int
		minSim float64
	)
	cmd := &cobra.Command{
		Use:   "similar --query <text> [flags] <corpus text>...",
		Short: "Rank corpus texts (arguments or stdin lines) by similarity to a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			if utils.IsBlank(query) {
				return errors.New("--query is required")
			}
			format, err := cli.ParseOutputFormat(flags.output)
			if err != nil {
				return err
			}
			corpus, err := textsFromArgs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, logger, _, err := opts.load(true)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-k") {
				topK = cfg.Similarity.DefaultTopK
			}
			if !cmd.Flags().Changed("min-similarity") {
				minSim = cfg.Similarity.MinSimilarityOrDefault()
			}

			components := initializeComponents(cfg, logger, model.WithProgressWriter(cmd.ErrOrStderr()))
			defer components.Close()

			ctx := cmd.Context()
			q, err := components.Manager.EncodeOne(ctx, query)
			if err != nil {
				return err
			}
			vecs, err := components.Manager.EncodeMany(ctx, corpus, flags.encodeOptions(cfg))
			if err != nil {
				return err
			}
			matches, err := vector.FindMostSimilar(q, vecs, topK, minSim)
			if err != nil {
				return err
			}
			return cli.WriteMatches(cmd.OutOrStdout(), query, corpus, matches, format)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&query, "query", "q", "", "query text")
	cmd.Flags().IntVarP(&topK, "top-k", "k", vector.DefaultTopK, "maximum number of matches")
	cmd.Flags().Float64Var(&minSim, "min-similarity", vector.DefaultMinSimilarity, "minimum cosine similarity")
	return cmd
}

// textsFromArgs returns args, or the non-blank lines of in when args is empty.
func textsFromArgs(args []string, in io.Reader) ([]string, error) {
	var texts []string
	if len(args) > 0 {
		texts = args
	} else {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 1<<20)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				texts = append(texts, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	for i, t := range texts {
		if utils.IsBlank(t) {
			return nil, fmt.Errorf("text %d is empty", i)
		}
	}
	if len(texts) == 0 {
		return nil, errors.New("no input texts (pass them as arguments or on stdin)")
	}
	return texts, nil
}
