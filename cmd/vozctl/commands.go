package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/quevendi/backend/internal/domain"
	"github.com/quevendi/backend/internal/infrastructure/cache"
	"github.com/quevendi/backend/internal/infrastructure/catalog"
	"github.com/quevendi/backend/internal/observability"
	"github.com/quevendi/backend/internal/usecase"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	errNoPendingAmbiguity  = errors.New("no pending ambiguity to answer")
	errUnansweredAmbiguity = errors.New("ambiguities left unanswered")
)

// cliOptions holds the persistent flags shared by every subcommand
type cliOptions struct {
	catalogPath string
	storeID     string
	logLevel    string
	noFold      bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "vozctl",
		Short: "Parse and resolve Spanish voice commands offline",
		Long: `vozctl runs the voice-command parser and product resolver locally.

Use this tool to:
- See how an utterance is classified and which fields are extracted
- Check which catalog product a spoken name resolves to
- Rank a store catalog against a free-text query

All output is JSON.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "./catalog.yaml", "catalog snapshot (YAML or JSON)")
	root.PersistentFlags().StringVarP(&opts.storeID, "store", "s", "", "store ID inside the catalog")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "disabled", "log level written to stderr")
	root.PersistentFlags().BoolVar(&opts.noFold, "no-fold", false, "compare accents strictly")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newResolveCmd(opts))
	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newInterpretCmd(opts))

	return root
}

func (o *cliOptions) logger() zerolog.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       o.logLevel,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: "vozctl",
	})
}

func (o *cliOptions) matcher(logger zerolog.Logger) *usecase.MatchingService {
	return usecase.NewMatchingService(usecase.MatchConfig{FoldAccents: !o.noFold}, logger)
}

// products loads the selected store from the catalog snapshot
func (o *cliOptions) products(ctx context.Context) ([]domain.Product, *catalog.FileRepository, error) {
	if o.storeID == "" {
		return nil, nil, errors.New("--store is required")
	}
	repo, err := catalog.NewFileRepository(o.catalogPath)
	if err != nil {
		return nil, nil, err
	}
	products, err := repo.ProductsByStore(ctx, o.storeID)
	if err != nil {
		return nil, nil, fmt.Errorf("store %q: %w", o.storeID, err)
	}
	return products, repo, nil
}

func newParseCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <utterance>",
		Short: "Classify an utterance and extract its fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := usecase.NewCommandParser(opts.logger())
			parsed := parser.Parse(strings.Join(args, " "))
			if parsed == nil {
				return domain.ErrUnparseableCommand
			}
			return writeJSON(cmd.OutOrStdout(), parsed)
		},
	}
}

func newResolveCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <product name>",
		Short: "Resolve a spoken product name against a store catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, _, err := opts.products(cmd.Context())
			if err != nil {
				return err
			}
			result := opts.matcher(opts.logger()).Resolve(strings.Join(args, " "), products)
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Rank a store catalog against a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, _, err := opts.products(cmd.Context())
			if err != nil {
				return err
			}
			results := opts.matcher(opts.logger()).Search(strings.Join(args, " "), products)
			if results == nil {
				results = []domain.ScoredProduct{}
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
}

func newInterpretCmd(opts *cliOptions) *cobra.Command {
	var replies []string

	cmd := &cobra.Command{
		Use:   "interpret <utterance>",
		Short: "Parse an utterance and resolve it against a store catalog",
		Long: `Interpret runs the full voice pipeline. Each --reply answers the first
pending ambiguity, as a user would in the follow-up turn. When replies are
given, every ambiguity must be answered and every reply must be used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, repo, err := opts.products(ctx)
			if err != nil {
				return err
			}

			logger := opts.logger()
			sessions := cache.NewMemoryCache(time.Minute)
			defer sessions.Close()

			parser := usecase.NewCommandParser(logger)
			interpreter := usecase.NewInterpreterService(parser, opts.matcher(logger), repo, sessions,
				usecase.InterpreterServiceConfig{}, logger)

			interp, err := interpreter.Interpret(ctx, opts.storeID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), interp); err != nil {
				return err
			}

			// A narrowed ambiguity stays at the head of the queue so the
			// next reply refines the same item.
			pending := append([]domain.Ambiguity(nil), interp.Ambiguities...)
			for _, reply := range replies {
				if len(pending) == 0 {
					return fmt.Errorf("reply %q: %w", reply, errNoPendingAmbiguity)
				}
				next := pending[0]
				pending = pending[1:]

				interp, err = interpreter.Disambiguate(ctx, next.Token, reply)
				if err != nil {
					return fmt.Errorf("reply %q: %w", reply, err)
				}
				if err := writeJSON(cmd.OutOrStdout(), interp); err != nil {
					return err
				}
				pending = append(append([]domain.Ambiguity(nil), interp.Ambiguities...), pending...)
			}

			if len(replies) > 0 && len(pending) > 0 {
				return fmt.Errorf("%d %w", len(pending), errUnansweredAmbiguity)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&replies, "reply", "r", nil, "follow-up reply to a pending ambiguity (repeatable)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
