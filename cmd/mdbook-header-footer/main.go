// Command mdbook-header-footer is an mdBook preprocessor that prepends and
// appends text to chapters whose path matches configured regexes.
//
// In book.toml:
//
//	[preprocessor.header-footer]
//
//	[[preprocessor.header-footer.headers]]
//	regex = "^guide/"
//	padding = "> This guide is a draft.\n\n"
//
//	[[preprocessor.header-footer.footers]]
//	padding = "\n\n---\n[Edit this page](https://example.com)"
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/mdbook-header-footer/internal/config"
	"github.com/dgallion1/mdbook-header-footer/internal/padding"
	"github.com/dgallion1/mdbook-header-footer/internal/parser"
	"github.com/dgallion1/mdbook-header-footer/internal/pipeline"
	"github.com/dgallion1/mdbook-header-footer/internal/preprocess"
)

var version = "dev"

func main() {
	cfg := config.Load()
	// stdout carries the book, so diagnostics go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := newRootCmd(cfg, log).Execute(); err != nil {
		log.Error("mdbook-header-footer failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var rulesFile string

	root := &cobra.Command{
		Use:           "mdbook-header-footer",
		Short:         "mdBook preprocessor to prepend header and append footer to certain chapters",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := rulesOverride(rulesFile, cfg.RulesFile)
			if err != nil {
				return err
			}
			orch := pipeline.NewOrchestrator(cfg, nil, log)
			report, err := preprocess.New(orch, rules).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			log.Debug("preprocessed book", "chapters", report.Chapters, "padded", report.Padded)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&rulesFile, "rules", "", "rules file (.yaml, .toml, .json) used instead of book.toml")

	root.AddCommand(
		newSupportsCmd(log),
		newRenderCmd(cfg, log, &rulesFile),
		newPadCmd(cfg, log, &rulesFile),
		newServeCmd(cfg),
	)
	return root
}

func newSupportsCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "supports <renderer>",
		Short: "Check whether a renderer is supported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := args[0]
			log.Debug("supports", "renderer", renderer)
			if !preprocess.Supports(renderer) {
				return fmt.Errorf("renderer %q is not supported", renderer)
			}
			return nil
		},
	}
}

func newRenderCmd(cfg config.Config, log *slog.Logger, rulesFile *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "render <book-dir>",
		Short: "Pad the chapters of a book directory and write them to --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookDir := args[0]

			rules, err := rulesOverride(*rulesFile, cfg.RulesFile)
			if err != nil {
				return err
			}
			if rules == nil {
				raw, err := config.LoadRulesFile(filepath.Join(bookDir, config.BookFile))
				if err != nil {
					return err
				}
				rules = &raw
			}
			padCfg, err := rules.Compile()
			if err != nil {
				return fmt.Errorf("compile rules: %w", err)
			}

			srcDir, err := config.BookSourceDir(bookDir)
			if err != nil {
				return err
			}
			book, err := parser.LoadBook(srcDir)
			if err != nil {
				return err
			}
			report, err := pipeline.NewOrchestrator(cfg, nil, log).PadBook(cmd.Context(), book, padCfg)
			if err != nil {
				return err
			}
			written, err := parser.WriteChapters(book, outDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "padded %d of %d chapters, wrote %d files to %s\n",
				report.Padded, report.Chapters, written, outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "padded", "output directory")
	return cmd
}

func newPadCmd(cfg config.Config, log *slog.Logger, rulesFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pad <book.json|SUMMARY.md>",
		Short: "Pad a serialized book with --rules and print it as mdBook JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			rules, err := rulesOverride(*rulesFile, cfg.RulesFile)
			if err != nil {
				return err
			}
			if rules == nil {
				return fmt.Errorf("pad needs a rules file (--rules or PAD_RULES_FILE)")
			}
			padCfg, err := rules.Compile()
			if err != nil {
				return fmt.Errorf("compile rules: %w", err)
			}

			p, err := parser.ForFile(source)
			if err != nil {
				return err
			}
			f, err := os.Open(source)
			if err != nil {
				return err
			}
			defer f.Close()

			book, err := p.Parse(f, filepath.Base(source))
			if err != nil {
				return err
			}
			if _, ok := p.(*parser.SummaryParser); ok {
				if err := parser.LoadContent(book, filepath.Dir(source)); err != nil {
					return err
				}
			}

			if _, err := pipeline.NewOrchestrator(cfg, nil, log).PadBook(cmd.Context(), book, padCfg); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(book)
		},
	}
}

// rulesOverride loads the rules file named by the flag, falling back to the
// environment. It returns nil when neither is set.
func rulesOverride(flag, env string) (*padding.RawConfig, error) {
	path := flag
	if path == "" {
		path = env
	}
	if path == "" {
		return nil, nil
	}
	raw, err := config.LoadRulesFile(path)
	if err != nil {
		return nil, err
	}
	return &raw, nil
}
