package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/agent"
	"github.com/hyperjump/docstudio/internal/cli"
	"github.com/hyperjump/docstudio/internal/compliance"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/storage"
)

// extractFile extracts path after checking it against the configured size limit.
func extractFile(c *Components, path string) (*models.ExtractedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if limit := c.Config.Extract.MaxFileSizeBytes(); limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s is %d bytes, over the %d MB limit", path, info.Size(), c.Config.Extract.MaxFileSizeMB)
	}
	return c.Extractor.Extract(path)
}

// inputText returns text, or stdin when text is "-".
func inputText(cmd *cobra.Command, text string) (string, error) {
	if text != "-" {
		return text, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(b), nil
}

func newExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the normalized text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			doc, err := extractFile(c, args[0])
			if err != nil {
				return err
			}
			return cli.WriteDocument(cmd.OutOrStdout(), doc, opts.format)
		},
	}
}

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	var (
		text      string
		name      string
		length    string
		backend   string
		takeaways bool
		noSave    bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize a document or text and save it to history",
		Example: `  docstudio summarize report.pdf --length long --takeaways
  docstudio summarize --text "pasted text" --backend json
  cat notes.txt | docstudio summarize --text - --no-save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			band, err := models.ParseSummaryLength(length)
			if err != nil {
				return err
			}
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			b := c.Backend
			if backend != "" {
				if b, err = storage.ParseBackend(backend); err != nil {
					return err
				}
			}

			var doc *models.ExtractedDocument
			switch {
			case len(args) == 1:
				if doc, err = extractFile(c, args[0]); err != nil {
					return err
				}
			case text != "":
				if text, err = inputText(cmd, text); err != nil {
					return err
				}
				doc = agent.TextDocument(name, text)
			default:
				return fmt.Errorf("a file or --text is required")
			}

			res, err := c.Summarizer.Summarize(cmd.Context(), doc, band, takeaways)
			if err != nil {
				return err
			}
			if !noSave {
				if err := c.Store.Append(cmd.Context(), b, res.Record); err != nil {
					return err
				}
			}
			return cli.WriteSummary(cmd.OutOrStdout(), res, opts.format)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", `text to summarize ("-" reads stdin)`)
	cmd.Flags().StringVar(&name, "name", "", "filename to record for --text input")
	cmd.Flags().StringVarP(&length, "length", "l", "medium", "summary length: short, medium or long")
	cmd.Flags().StringVar(&backend, "backend", "", "history backend: json, csv or sqlite (default from config)")
	cmd.Flags().BoolVar(&takeaways, "takeaways", false, "also extract key takeaways")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the summary to history")
	return cmd
}

func newComplyCmd(opts *rootOptions) *cobra.Command {
	var (
		text        string
		domain      string
		instruction string
		protocolID  int64
		reportOut   string
	)
	cmd := &cobra.Command{
		Use:   "comply [files...]",
		Short: "Check documents against a compliance domain or protocol",
		Example: `  docstudio comply policy.pdf annex.docx --domain HIPAA
  docstudio comply contract.pdf --protocol 3 --report-out report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			docs := make([]*models.ExtractedDocument, 0, len(args))
			var failed []models.FileFailure
			for _, path := range args {
				doc, err := extractFile(c, path)
				if err != nil {
					if len(args) == 1 {
						return err
					}
					opts.logger.Warn("file skipped", zap.String("file", path), zap.Error(err))
					failed = append(failed, models.FileFailure{Name: filepath.Base(path), Error: err.Error()})
					continue
				}
				docs = append(docs, doc)
			}
			if len(docs) == 0 && len(failed) > 0 {
				return fmt.Errorf("no document could be extracted: %s", failed[0].Error)
			}
			if len(docs) == 0 {
				if text, err = inputText(cmd, text); err != nil {
					return err
				}
				if strings.TrimSpace(text) != "" {
					docs = append(docs, agent.TextDocument(agent.TextInputName, text))
				}
			}
			if d, ok := compliance.LookupDomain(domain); ok {
				domain = d.Name
			}

			var sess *agent.Session
			if protocolID > 0 {
				db, err := c.Store.SQLite()
				if err != nil {
					return err
				}
				rec, err := db.GetPrompt(cmd.Context(), protocolID)
				if err != nil {
					return fmt.Errorf("protocol %d: %w", protocolID, err)
				}
				sess = c.Sessions.Create(agent.KindCompliance)
				if err := c.Compliance.UseProtocol(sess, rec); err != nil {
					return err
				}
			}

			report, err := c.Compliance.Check(cmd.Context(), sess, docs, domain, instruction)
			if err != nil {
				return err
			}
			report.FilesFailed = failed
			if reportOut != "" {
				f, err := os.Create(reportOut)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := cli.WriteJSON(f, report); err != nil {
					return err
				}
			}
			return cli.WriteReport(cmd.OutOrStdout(), report, opts.format)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", `text to check when no files are given ("-" reads stdin)`)
	cmd.Flags().StringVarP(&domain, "domain", "d", compliance.Domains[0].Name, "compliance domain")
	cmd.Flags().StringVar(&instruction, "instruction", "", "custom instruction replacing the domain prompt")
	cmd.Flags().Int64Var(&protocolID, "protocol", 0, "id of a saved protocol to apply")
	cmd.Flags().StringVar(&reportOut, "report-out", "", "also write the JSON report to this file")
	return cmd
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var contextFile string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the compliance chatbot a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			var contextText string
			if contextFile != "" {
				doc, err := extractFile(c, contextFile)
				if err != nil {
					return err
				}
				contextText = doc.Text
			}
			sess := c.Sessions.Create(agent.KindCompliance)
			answer, err := c.Chatbot.Reply(cmd.Context(), sess, strings.Join(args, " "), contextText)
			if err != nil {
				return err
			}
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]string{"answer": answer})
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&contextFile, "context", "", "document whose text grounds the answer")
	return cmd
}

func newBannerCmd(opts *rootOptions) *cobra.Command {
	var req agent.BannerRequest
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Write social media copy for a campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			copyText, err := c.Banner.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]string{
					"platform": req.Platform, "style": req.Style, "copy": copyText,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), copyText)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Platform, "platform", agent.Platforms[0], "target platform: "+strings.Join(agent.Platforms, ", "))
	cmd.Flags().StringVar(&req.Style, "style", agent.Styles[0], "copy style: "+strings.Join(agent.Styles, ", "))
	cmd.Flags().StringVar(&req.Brief, "brief", "", "campaign brief (required)")
	cmd.Flags().StringVar(&req.KeyMessage, "message", "", "key message (required)")
	return cmd
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var analysisType, goal string
	cmd := &cobra.Command{
		Use:   "analyze <campaign.csv|campaign.xlsx>",
		Short: "Analyze campaign performance data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			analysis, err := c.Analyst.AnalyzeFile(cmd.Context(), args[0], content, analysisType, goal)
			if err != nil {
				return err
			}
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]string{"analysis_type": analysisType, "analysis": analysis})
			}
			fmt.Fprintln(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
	cmd.Flags().StringVarP(&analysisType, "type", "t", agent.AnalysisSummary, "analysis: "+strings.Join(agent.AnalysisTypes, ", "))
	cmd.Flags().StringVar(&goal, "goal", "", "campaign goal to consider")
	return cmd
}

func newDomainsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List built-in compliance domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), compliance.Domains)
			}
			for _, d := range compliance.Domains {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", d.Name, d.Description)
			}
			return nil
		},
	}
}
