package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/pipeline"
	"github.com/trellis-learn/trellis/pkg/quality"
)

// qualityOpts holds the command-line flags for the quality command.
type qualityOpts struct {
	mode       string
	asJSON     bool
	strictGate bool
	refresh    bool
	noCache    bool
	configPath string
}

// qualityCommand creates the quality command. It builds the graph without
// persisting and reports content coverage: missing definitions, empty key
// points, title anomalies, and per-chapter topic distribution.
func (c *CLI) qualityCommand() *cobra.Command {
	opts := qualityOpts{mode: pipeline.DefaultMode}

	cmd := &cobra.Command{
		Use:   "quality <file>",
		Short: "Report content quality of a curriculum document",
		Long: `Quality builds the graph and analyzes its content instead of its
structure: which learnable nodes lack definitions or key points, which
titles look broken, and how topics are distributed across chapters.

Examples:
  trellis quality curriculum.json
  trellis quality curriculum.json --json > report.json
  trellis quality curriculum.json --fail-on-issues`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuality(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", opts.mode, "edge validation mode: strict or lenient")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit the report as JSON on stdout")
	cmd.Flags().BoolVar(&opts.strictGate, "fail-on-issues", false, "exit nonzero when the report contains issues")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached pipeline stages")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/trellis/config.toml)")

	return cmd
}

func (c *CLI) runQuality(ctx context.Context, input string, opts *qualityOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	report, cached, err := runner.QualityWithCacheInfo(ctx, pipeline.Options{
		InputPath: input,
		Mode:      opts.mode,
		DryRun:    true,
		Refresh:   opts.refresh,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if cached {
		logger.Debug("quality report served from cache")
	}

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printQualityReport(report)
	}

	if opts.strictGate && report.Issues() > 0 {
		return fmt.Errorf("quality gate failed: %d issues", report.Issues())
	}
	return nil
}

// printQualityReport renders the report for terminal consumption.
func printQualityReport(r quality.Report) {
	fmt.Println(StyleTitle.Render("Quality Report"))
	printNewline()

	printKeyValue("Nodes by label", countLine(labelCounts(r.NodesByLabel)))
	printKeyValue("Edges by relation", countLine(relationCounts(r.EdgesByRelation)))
	printKeyValue("Avg definition length", fmt.Sprintf("%.1f chars", r.AvgDefinitionLength))
	printNewline()

	if len(r.TopicsPerChapter) > 0 {
		fmt.Println(StyleHighlight.Render("Topics per chapter"))
		for _, id := range sortedKeys(r.TopicsPerChapter) {
			printDetail("%s: %d", id, r.TopicsPerChapter[id])
		}
		printNewline()
	}

	printIssueList("Missing definitions", r.MissingDefinitions)
	printIssueList("Empty key points", r.EmptyKeyPoints)
	printIssueList("Overlong titles", r.LongTitles)

	if len(r.DuplicateTitles) > 0 {
		printInfo("Duplicate titles (%d)", len(r.DuplicateTitles))
		titles := make([]string, 0, len(r.DuplicateTitles))
		for title := range r.DuplicateTitles {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		for _, title := range titles {
			printDetail("%q: %s", title, strings.Join(r.DuplicateTitles[title], ", "))
		}
	}

	if n := r.Issues(); n > 0 {
		printWarning("%d issues found", n)
	} else {
		printSuccess("No issues found")
	}
}

func printIssueList(name string, ids []string) {
	if len(ids) == 0 {
		return
	}
	printInfo("%s (%d)", name, len(ids))
	for _, id := range ids {
		printDetail("%s", id)
	}
}

func labelCounts(m map[curriculum.Label]int) []string {
	var parts []string
	for _, l := range curriculum.Labels() {
		if n := m[l]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(l))))
		}
	}
	return parts
}

func relationCounts(m map[curriculum.Relation]int) []string {
	var parts []string
	for _, rel := range curriculum.Relations() {
		if n := m[rel]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, string(rel)))
		}
	}
	return parts
}

func countLine(parts []string) string {
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
