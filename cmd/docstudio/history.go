package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/cli"
	"github.com/hyperjump/docstudio/internal/keyword"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/storage"
)

// historyBackend resolves --backend against the configured default.
func historyBackend(c *Components, name string) (storage.Backend, error) {
	if name == "" {
		return c.Backend, nil
	}
	return storage.ParseBackend(name)
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, search, export and delete saved summaries",
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "history backend: json, csv or sqlite (default from config)")

	// withStore runs fn with initialized components and the resolved backend.
	withStore := func(fn func(cmd *cobra.Command, c *Components, b storage.Backend, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			b, err := historyBackend(c, backend)
			if err != nil {
				return err
			}
			return fn(cmd, c, b, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved summaries, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, c *Components, b storage.Backend, _ []string) error {
			recs, err := c.Store.ListAll(cmd.Context(), b)
			if err != nil {
				return err
			}
			return cli.WriteRecords(cmd.OutOrStdout(), recs, opts.format)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <text>",
		Short: "Filter summaries whose filename or summary contains text",
		Args:  cobra.MinimumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, c *Components, b storage.Backend, args []string) error {
			recs, err := c.Store.Search(cmd.Context(), b, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return cli.WriteRecords(cmd.OutOrStdout(), recs, opts.format)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete every summary of filename (sqlite backend only)",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, c *Components, b storage.Backend, args []string) error {
			n, err := c.Store.Delete(cmd.Context(), b, args[0])
			if err != nil {
				return err
			}
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]any{"filename": args[0], "deleted": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d summaries of %s\n", n, args[0])
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, c *Components, b storage.Backend, _ []string) error {
			recs, err := c.Store.ListAll(cmd.Context(), b)
			if err != nil {
				return err
			}
			return cli.WriteStats(cmd.OutOrStdout(), storage.ComputeStats(recs, time.Now()), opts.format)
		}),
	})

	var exportFormat, exportOut string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as JSON, CSV or Excel",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, c *Components, b storage.Backend, _ []string) error {
			format, err := storage.ParseExportFormat(exportFormat)
			if err != nil {
				return err
			}
			recs, err := c.Store.ListAll(cmd.Context(), b)
			if err != nil {
				return err
			}
			if exportOut == "" || exportOut == "-" {
				return storage.Export(cmd.OutOrStdout(), recs, format)
			}
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			if err := storage.Export(f, recs, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d summaries to %s\n", len(recs), exportOut)
			return nil
		}),
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format: json, csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	cmd.AddCommand(exportCmd)

	var (
		findLimit int
		findFuzzy bool
	)
	findCmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Ranked full-text search over sqlite history, with spelling suggestions",
		Args:  cobra.MinimumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, c *Components, _ storage.Backend, args []string) error {
			query := strings.Join(args, " ")
			hits, err := c.Index.Search(cmd.Context(), query, findLimit,
				&keyword.SearchOptions{FilenameBoost: 2, Fuzzy: findFuzzy})
			if err != nil {
				return err
			}
			suggestion, err := keyword.NewSuggester(c.Index, 0).Suggest(query)
			if err != nil {
				opts.logger.Debug("suggestion failed", zap.Error(err))
			}
			return cli.WriteHits(cmd.OutOrStdout(), query, hits, suggestion, opts.format)
		}),
	}
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 10, "maximum number of results")
	findCmd.Flags().BoolVar(&findFuzzy, "fuzzy", false, "tolerate typos")
	cmd.AddCommand(findCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text index from sqlite history",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, c *Components, _ storage.Backend, _ []string) error {
			recs, err := c.Store.ListAll(cmd.Context(), storage.BackendSQLite)
			if err != nil {
				return err
			}
			if err := c.Index.Rebuild(cmd.Context(), recs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d summaries\n", len(recs))
			return nil
		}),
	})

	var reportsLimit int
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "List saved compliance reports",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, c *Components, _ storage.Backend, _ []string) error {
			db, err := c.Store.SQLite()
			if err != nil {
				return err
			}
			reports, err := db.ListReports(cmd.Context(), reportsLimit)
			if err != nil {
				return err
			}
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), reports)
			}
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-14s %d violations  %s\n",
					r.AnalyzedAt.Local().Format("2006-01-02 15:04"), r.Domain, r.OverallStatus, r.TotalViolations,
					strings.Join(r.FilesAnalyzed, ", "))
			}
			return nil
		}),
	}
	reportsCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "maximum number of reports")
	cmd.AddCommand(reportsCmd)
	return cmd
}

func newPromptsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage saved compliance protocols",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved protocols, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			db, err := c.Store.SQLite()
			if err != nil {
				return err
			}
			prompts, err := db.ListPrompts(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WritePrompts(cmd.OutOrStdout(), prompts, opts.format)
		},
	})

	var rec models.PromptRecord
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Save a custom compliance protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rec.Validate(); err != nil {
				return err
			}
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			db, err := c.Store.SQLite()
			if err != nil {
				return err
			}
			if err := db.SavePrompt(cmd.Context(), &rec); err != nil {
				return err
			}
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved protocol #%d %s\n", rec.ID, rec.ProtocolName)
			return nil
		},
	}
	addCmd.Flags().StringVar(&rec.ProtocolName, "name", "", "protocol name (required)")
	addCmd.Flags().StringVar(&rec.ProtocolDescription, "description", "", "rule description (required)")
	addCmd.Flags().StringVar(&rec.WhatToFlag, "flag", "", "what to flag")
	addCmd.Flags().StringVar(&rec.SeverityThreshold, "severity", models.SeverityMedium, "severity threshold: Low, Medium or High")
	addCmd.Flags().StringVar(&rec.OutputFormat, "format", models.OutputJSON, "expected output: Summary, JSON, Checklist or Bullet List")
	addCmd.Flags().BoolVar(&rec.CitationRequired, "citation", false, "require clause citations")
	addCmd.Flags().StringVar(&rec.Language, "language", "English", "answer language")
	cmd.AddCommand(addCmd)
	return cmd
}
