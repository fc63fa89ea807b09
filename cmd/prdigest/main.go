// Command prdigest summarizes GitHub pull requests with an LLM and
// caches the results in a summary store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/prdigest/prdigest/config"
	"github.com/prdigest/prdigest/github"
	"github.com/prdigest/prdigest/llm"
	"github.com/prdigest/prdigest/storage"
	"github.com/prdigest/prdigest/storage/jsonfile"
	"github.com/prdigest/prdigest/storage/postgres"
	"github.com/prdigest/prdigest/summary"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "prdigest",
		Usage: "summarize GitHub pull requests with an LLM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   "prdigest.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "summarize",
				Usage: "summarize a single pull request",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "repo", Usage: "repository name (without owner)", Required: true},
					&cli.IntFlag{Name: "pr", Usage: "pull request number", Required: true},
				},
				Action: runSummarize,
			},
			{
				Name:  "weekly",
				Usage: "roll one week of pull requests into a report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "repo", Usage: "repository name (without owner)", Required: true},
					&cli.StringFlag{Name: "week", Usage: "week start date (YYYY-MM-DD, a Sunday or Monday)", Required: true},
					&cli.StringSliceFlag{Name: "user", Usage: "PR author to include (repeatable)", Required: true},
				},
				Action: runWeekly,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runtime bundles everything a command needs after wiring.
type runtime struct {
	cfg        *config.Config
	logger     *slog.Logger
	git        *github.Client
	model      llm.Client
	store      storage.Store
	summarizer *summary.Summarizer
	closers    []func() error
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn("close failed", "error", err)
		}
	}
}

func setup(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	git, err := newGitHubClient(cfg)
	if err != nil {
		return nil, err
	}

	r := &runtime{cfg: cfg, logger: logger, git: git}

	r.model, err = newModelClient(ctx, cfg, r)
	if err != nil {
		return nil, err
	}
	r.store, err = newStore(ctx, cfg)
	if err != nil {
		r.close()
		return nil, err
	}
	r.closers = append(r.closers, r.store.Close)

	r.summarizer = summary.NewSummarizer(git, r.model, r.store, logger)
	r.summarizer.SetStrictModelMatch(cfg.StrictModelMatch)
	if t, ok := overrideTemplates(summary.DefaultPRTemplates(), cfg.Prompts.PRSummary); ok {
		r.summarizer.SetTemplates(t)
	}
	return r, nil
}

func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	if cfg.GitHub.AppID != 0 {
		key, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading github app private key: %w", err)
		}
		return github.NewAppClient(cfg.GitHub.Owner, cfg.GitHub.AppID, cfg.GitHub.InstallationID, key)
	}
	if cfg.GitHub.Token == "" {
		return nil, &config.ConfigurationError{Reason: "set GITHUB_TOKEN or configure github app auth"}
	}
	return github.NewClient(cfg.GitHub.Owner, cfg.GitHub.Token), nil
}

func newModelClient(ctx context.Context, cfg *config.Config, r *runtime) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		if cfg.LLM.AnthropicAPIKey == "" {
			return nil, &config.ConfigurationError{Reason: "provider anthropic requires ANTHROPIC_API_KEY"}
		}
		model := cfg.LLM.Model
		if model == "" {
			model = llm.DefaultAnthropicModel
		}
		return llm.NewAnthropic(cfg.LLM.AnthropicAPIKey, model, cfg.LLM.Temperature, cfg.LLM.TokenBuffer), nil
	case config.ProviderGemini:
		if cfg.LLM.GeminiAPIKey == "" {
			return nil, &config.ConfigurationError{Reason: "provider gemini requires GEMINI_API_KEY"}
		}
		model := cfg.LLM.Model
		if model == "" {
			model = llm.DefaultGeminiModel
		}
		g, err := llm.NewGemini(ctx, cfg.LLM.GeminiAPIKey, model, cfg.LLM.Temperature, cfg.LLM.TokenBuffer)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, g.Close)
		return g, nil
	default:
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("unknown llm provider %q", cfg.LLM.Provider)}
	}
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pg, err := postgres.NewFromDSN(cfg.Storage.DSN, cfg.Storage.Overwrite)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case config.BackendJSONFile:
		return jsonfile.New(cfg.Storage.Path, cfg.Storage.Overwrite)
	default:
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("unknown storage backend %q", cfg.Storage.Backend)}
	}
}

// overrideTemplates applies non-empty config overrides on top of the
// defaults. Returns false when nothing was overridden.
func overrideTemplates(base summary.Templates, pair config.PromptPair) (summary.Templates, bool) {
	changed := false
	if pair.System != "" {
		base.System = pair.System
		changed = true
	}
	if pair.User != "" {
		base.User = pair.User
		changed = true
	}
	return base, changed
}

func runSummarize(ctx context.Context, cmd *cli.Command) error {
	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.close()

	repo := cmd.String("repo")
	prNumber := int(cmd.Int("pr"))

	s, meta, err := r.summarizer.Summarize(ctx, repo, prNumber)
	if err != nil {
		return err
	}
	r.logger.Info("summarized pull request",
		"repo", repo,
		"pr_number", prNumber,
		"title", s.Title,
		"model", meta.ModelName)

	return printSummary(s)
}

func runWeekly(ctx context.Context, cmd *cli.Command) error {
	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.close()

	weekly := summary.NewWeeklySummarizer(r.git, r.summarizer, r.model, r.logger)
	if t, ok := overrideTemplates(summary.DefaultWeeklyTemplates(), r.cfg.Prompts.WeeklySummary); ok {
		weekly.SetTemplates(t)
	}

	report, err := weekly.Run(ctx, cmd.StringSlice("user"), cmd.String("repo"), cmd.String("week"))
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func printSummary(s *summary.PRSummary) error {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
