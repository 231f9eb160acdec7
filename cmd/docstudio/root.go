package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/cli"
	"github.com/hyperjump/docstudio/internal/config"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// rootOptions carries the global flags and the state they resolve to.
type rootOptions struct {
	configPath string
	debug      bool
	output     string

	cfg     *config.Config
	cfgPath string
	logger  *zap.Logger
	format  cli.OutputFormat
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "docstudio",
		Short: "Summarize, compliance-check and search documents with LLM agents",
		Long: `docstudio extracts text from PDF, Word, Excel, CSV and plain-text files and runs
LLM agents over it: summaries with key takeaways, chunked compliance reports against
GDPR, HIPAA, SOC 2, ISO 27001, PCI-DSS or a custom protocol, marketing copy and
campaign analysis. Summaries are kept in a JSON, CSV or SQLite history.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServeCmd(opts),
		newExtractCmd(opts),
		newSummarizeCmd(opts),
		newComplyCmd(opts),
		newAskCmd(opts),
		newBannerCmd(opts),
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newPromptsCmd(opts),
		newDomainsCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) init() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	format, err := cli.ParseOutputFormat(o.output)
	if err != nil {
		return err
	}
	o.format = format
	cfg, path, err := loadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	o.cfg, o.cfgPath = cfg, path
	debug := cfg.Debug || o.debug
	if o.logger, err = utils.NewLogger(debug); err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	o.logger.Debug("config loaded", zap.String("config_path", path), zap.Bool("debug", debug))
	return nil
}

// components initializes the services for one command; the caller closes them.
func (o *rootOptions) components(ctx context.Context) (*Components, error) {
	c, err := initializeComponents(ctx, o.cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return c, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Show version",
		Args:              cobra.NoArgs,
		PersistentPreRun:  func(*cobra.Command, []string) {},
		PersistentPostRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docstudio version %s\n", version)
		},
	}
}
