package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgio "github.com/trellis-learn/trellis/pkg/io"
	"github.com/trellis-learn/trellis/pkg/pipeline"
	"github.com/trellis-learn/trellis/pkg/store"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	mode       string // edge validation mode: strict or lenient
	noImplicit bool   // skip containment edge derivation
	noReduce   bool   // skip transitive reduction
	dryRun     bool   // validate and report without persisting
	refresh    bool   // bypass cached pipeline stages
	noCache    bool   // disable the pipeline cache entirely
	output     string // optional path for the built graph JSON
	configPath string // config file override
}

// buildCommand creates the build command, the main entry point of the tool.
// It imports an extractor document, derives the containment hierarchy,
// validates the result, and persists it to the configured store.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{mode: pipeline.DefaultMode}

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Build a curriculum graph and persist it to the store",
		Long: `Build imports an extractor document, derives implicit containment edges
from node ids, merges and transitively reduces them, validates the result,
and writes the graph to the configured store in a single transaction.

Examples:
  trellis build curriculum.json
  trellis build curriculum.json --mode lenient
  trellis build curriculum.json --dry-run -o built.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", opts.mode, "edge validation mode: strict or lenient")
	cmd.Flags().BoolVar(&opts.noImplicit, "no-implicit", false, "skip implicit containment edge derivation")
	cmd.Flags().BoolVar(&opts.noReduce, "no-reduce", false, "skip transitive reduction of containment edges")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate and report without persisting")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached pipeline stages")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the built graph JSON to this path")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/trellis/config.toml)")

	return cmd
}

// runBuild executes the full pipeline for input and reports the outcome.
func (c *CLI) runBuild(ctx context.Context, input string, opts *buildOpts) error {
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

	var st store.Store
	if !opts.dryRun {
		sp := newSpinnerWithContext(ctx, fmt.Sprintf("Connecting to %s...", cfg.Store))
		sp.Start()
		st, err = openStore(ctx, cfg, logger)
		if err != nil {
			sp.StopWithError(fmt.Sprintf("Could not connect to %s", cfg.Store))
			return err
		}
		sp.Stop()
		defer st.Close(ctx)
	}

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, pipeline.Options{
		InputPath:  input,
		Mode:       opts.mode,
		NoImplicit: opts.noImplicit,
		NoReduce:   opts.noReduce,
		DryRun:     opts.dryRun,
		Refresh:    opts.refresh,
		Logger:     logger,
	}, st)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d nodes and %d edges", res.Stats.NodeCount, res.Stats.EdgeCount))

	printSuccess("Curriculum graph built")
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.BuildHit)
	printDetail("%d explicit, %d derived, %d removed by reduction", res.Counts.Explicit, res.Counts.Generated, res.Counts.Reduced)
	if res.DroppedEdges > 0 {
		printWarning("Dropped %d dangling edges (lenient mode)", res.DroppedEdges)
	}

	if opts.output != "" {
		if err := pkgio.ExportFile(res.Graph, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}

	if res.Persisted {
		printSuccess("Persisted to %s", st.Name())
	} else {
		printInfo("Dry run, nothing persisted")
		printNextStep("Persist it", fmt.Sprintf("trellis build %s", input))
	}
	return nil
}
