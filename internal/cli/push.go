package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trellis-learn/trellis/pkg/curriculum/validate"
	pkgio "github.com/trellis-learn/trellis/pkg/io"
	"github.com/trellis-learn/trellis/pkg/observability"
)

// pushOpts holds the command-line flags for the push command.
type pushOpts struct {
	configPath string
	skipChecks bool
}

// pushCommand creates the push command. It takes a graph that was already
// built (for example with "build --dry-run -o") and writes it to the store
// without rerunning the construction pipeline.
func (c *CLI) pushCommand() *cobra.Command {
	var opts pushOpts

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Persist a previously built graph to the store",
		Long: `Push writes a built graph file to the configured store as a single
transaction. The graph is revalidated first so a stale or hand-edited file
cannot corrupt the store; use --skip-checks to trust the file as is.

Examples:
  trellis push built.json
  trellis push built.json --skip-checks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPush(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.skipChecks, "skip-checks", false, "persist without revalidating the graph")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/trellis/config.toml)")

	return cmd
}

func (c *CLI) runPush(ctx context.Context, input string, opts *pushOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	g, err := pkgio.ImportFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	if !opts.skipChecks {
		v := validate.New(validate.ModeStrict, logger)
		if _, err := v.Graph(g); err != nil {
			printError("Graph failed validation, not persisting")
			return err
		}
	}

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Connecting to %s...", cfg.Store))
	sp.Start()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		sp.StopWithError(fmt.Sprintf("Could not connect to %s", cfg.Store))
		return err
	}
	sp.Stop()
	defer st.Close(ctx)

	observability.Pipeline().OnPersistStart(ctx, st.Name(), g.NodeCount(), g.EdgeCount())
	start := time.Now()
	prog := newProgress(logger)
	if err := st.EnsureSchema(ctx); err != nil {
		observability.Pipeline().OnPersistComplete(ctx, st.Name(), time.Since(start), err)
		return err
	}
	if err := st.Persist(ctx, g); err != nil {
		observability.Pipeline().OnPersistComplete(ctx, st.Name(), time.Since(start), err)
		return err
	}
	observability.Pipeline().OnPersistComplete(ctx, st.Name(), time.Since(start), nil)
	prog.done(fmt.Sprintf("Persisted %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))

	printSuccess("Persisted to %s", st.Name())
	printStats(g.NodeCount(), g.EdgeCount(), false)
	return nil
}
