package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/trellis-learn/trellis/pkg/pipeline"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	mode       string
	noImplicit bool
	noReduce   bool
	noCache    bool
	configPath string
}

// checkCommand creates the check command. It runs the full import and
// build sequence without touching any store, so authors can validate a
// document before pushing it.
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{mode: pipeline.DefaultMode}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate an extractor document without persisting",
		Long: `Check runs the complete build pipeline on a document and reports what
it would produce, without connecting to any store. It fails with a nonzero
exit code on the first structural problem: an unknown label or relation, a
duplicate id, a dangling edge in strict mode, or a prerequisite cycle.

Examples:
  trellis check curriculum.json
  trellis check curriculum.json --mode lenient`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", opts.mode, "edge validation mode: strict or lenient")
	cmd.Flags().BoolVar(&opts.noImplicit, "no-implicit", false, "skip implicit containment edge derivation")
	cmd.Flags().BoolVar(&opts.noReduce, "no-reduce", false, "skip transitive reduction of containment edges")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/trellis/config.toml)")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, opts *checkOpts) error {
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

	res, err := runner.Execute(ctx, pipeline.Options{
		InputPath:  input,
		Mode:       opts.mode,
		NoImplicit: opts.noImplicit,
		NoReduce:   opts.noReduce,
		DryRun:     true,
		Logger:     logger,
	}, nil)
	if err != nil {
		printError("Validation failed")
		return err
	}

	printSuccess("Graph is valid")
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.BuildHit)
	printDetail("%d explicit, %d derived, %d removed by reduction", res.Counts.Explicit, res.Counts.Generated, res.Counts.Reduced)
	if res.DroppedEdges > 0 {
		printWarning("Dropped %d dangling edges (lenient mode)", res.DroppedEdges)
	}
	printNextStep("Persist it", "trellis build "+input)
	return nil
}
