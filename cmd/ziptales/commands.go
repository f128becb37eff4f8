package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ZipTales/internal/app"
	"ZipTales/internal/config"
	"ZipTales/internal/credibility"
	"ZipTales/internal/domain"
	"ZipTales/internal/logging"
)

const configPathEnv = "ZIPTALES_CONFIG"

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "ziptales",
		Short: "News credibility scoring service",
		Long: `ziptales scores news articles for credibility.

Example usage:
  ziptales serve                                  # HTTP API plus periodic ingest/rescore
  ziptales score --source bbc --text "..."        # Score one text locally
  ziptales rescore                                # Recompute every stored score once
  ziptales ingest --since 24h                     # Pull configured feeds once`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				return os.Setenv(configPathEnv, cfgFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default from $"+configPathEnv+")")

	root.AddCommand(newServeCmd(), newScoreCmd(), newRescoreCmd(), newIngestCmd())
	return root
}

// loadRuntime logs to stderr so command output on stdout stays machine readable.
func loadRuntime() (config.Config, *slog.Logger) {
	cfg := config.Load()
	return cfg, logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled ingest/rescore job",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger := loadRuntime()
			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Serve(ctx)
		},
	}
}

func newScoreCmd() *cobra.Command {
	var (
		source    string
		text      string
		upvotes   int
		downvotes int
		userVotes int
		attested  bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single text without touching storage",
		Long: `Score a single text with the configured tables.

Pass --text - to read the text from stdin. --user-votes switches to the
simple mode where the vote signal is an already computed 0-100 value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimSpace(string(raw))
			}

			cfg, logger := loadRuntime()
			engine, err := app.BuildEngine(cfg.Scoring, logger)
			if err != nil {
				return err
			}

			var out any
			if cmd.Flags().Changed("user-votes") {
				out = engine.ScoreSimple(credibility.SimpleInput{
					Source:    source,
					Text:      text,
					UserVotes: userVotes,
					Attested:  attested,
				})
			} else {
				out = engine.Analyze(credibility.NewInput(source, text, upvotes, downvotes, attested))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "publication name, domain or URL")
	cmd.Flags().StringVar(&text, "text", "", "article text (- for stdin)")
	cmd.Flags().IntVar(&upvotes, "upvotes", 0, "community upvotes")
	cmd.Flags().IntVar(&downvotes, "downvotes", 0, "community downvotes")
	cmd.Flags().IntVar(&userVotes, "user-votes", 0, "pre-computed 0-100 vote score (simple mode)")
	cmd.Flags().BoolVar(&attested, "attested", false, "content is externally attested")
	return cmd
}

func newRescoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescore",
		Short: "Recompute and persist credibility scores for every stored article",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, func(ctx context.Context, a *app.Application) (domain.BatchReport, error) {
				return a.Rescore(ctx)
			})
		},
	}
}

func newIngestCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch configured sites once, score new articles and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, func(ctx context.Context, a *app.Application) (domain.BatchReport, error) {
				var from time.Time
				if since > 0 {
					from = time.Now().Add(-since)
				}
				return a.Ingest(ctx, from)
			})
		},
	}
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "only articles published within this window (0 for all)")
	return cmd
}

func runBatch(cmd *cobra.Command, job func(context.Context, *app.Application) (domain.BatchReport, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger := loadRuntime()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := job(ctx, application)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
