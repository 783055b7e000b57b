package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"searchkit/internal/model"
	"searchkit/internal/scape"
	"searchkit/pkg/searchkit"
)

type searchOptions struct {
	Problem         string
	NumToSearch     int
	Seed            int64
	Parallel        bool
	ChunkSize       int
	Workers         int
	ChildrenPerStep int
	AlwaysReplace   bool
	Queue           bool
	QueueCapacity   int
	PlotPath        string
	Target          int64
	Bits            int
}

func newSearchCommand(a *app, use string) *cobra.Command {
	mode := model.RunModeRandom
	short := "Score independent samples drawn from the problem's distribution"
	if use == "hillclimb" {
		mode = model.RunModeHillClimb
		short = "Climb from one sample by keeping the best of each batch of mutations"
	}
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: fmt.Sprintf(`  searchctl %s --problem count-ones --num 5000 --seed 7
  searchctl %s --config run.yaml --plot best.png`, use, use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := searchkit.RunRequestFromConfig(a.cfg, mode)
			opts.apply(cmd, &req)

			summary, err := a.client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			printRunResult(cmd, summary)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Problem, "problem", scape.NameInteger, fmt.Sprintf("problem to search: %v", scape.Names()))
	flags.IntVarP(&opts.NumToSearch, "num", "n", 1000, "number of samples to evaluate")
	flags.Int64Var(&opts.Seed, "seed", 1, "random seed")
	flags.IntVar(&opts.Workers, "workers", 0, "concurrent workers (0 uses the configured value)")
	flags.BoolVar(&opts.Queue, "queue", true, "run the processors behind a bounded queue")
	flags.IntVar(&opts.QueueCapacity, "queue-capacity", 1000, "queue capacity")
	flags.StringVar(&opts.PlotPath, "plot", "", "write a best-score trajectory plot to this PNG path")
	flags.Int64Var(&opts.Target, "target", scape.DefaultIntegerConfig().Target, "integer problem target")
	flags.IntVar(&opts.Bits, "bits", scape.DefaultCountOnesConfig().Bits, "count-ones bitstring length")
	if mode == model.RunModeRandom {
		flags.BoolVar(&opts.Parallel, "parallel", true, "evaluate chunks concurrently")
		flags.IntVar(&opts.ChunkSize, "chunk-size", 1000, "samples per parallel chunk")
	} else {
		flags.IntVar(&opts.ChildrenPerStep, "children", 1, "mutations evaluated per step")
		flags.BoolVar(&opts.AlwaysReplace, "always-replace", false, "accept the best child even when it is worse")
	}
	return cmd
}

// apply overrides req with the flags the user actually set.
func (o *searchOptions) apply(cmd *cobra.Command, req *searchkit.RunRequest) {
	flags := cmd.Flags()
	if flags.Changed("problem") {
		req.Problem = o.Problem
	}
	if flags.Changed("num") {
		req.NumToSearch = o.NumToSearch
	}
	if flags.Changed("seed") {
		req.Seed = o.Seed
	}
	if flags.Changed("workers") {
		req.Workers = o.Workers
	}
	if flags.Changed("queue") {
		req.UseQueue = o.Queue
	}
	if flags.Changed("queue-capacity") {
		req.QueueCapacity = o.QueueCapacity
	}
	if flags.Changed("plot") {
		req.PlotPath = o.PlotPath
	}
	if flags.Changed("target") {
		req.Integer.Target = o.Target
	}
	if flags.Changed("bits") {
		req.CountOnes.Bits = o.Bits
	}
	if flags.Changed("parallel") {
		req.Parallel = o.Parallel
	}
	if flags.Changed("chunk-size") {
		req.ChunkSize = o.ChunkSize
	}
	if flags.Changed("children") {
		req.ChildrenPerStep = o.ChildrenPerStep
	}
	if flags.Changed("always-replace") {
		req.AlwaysReplace = o.AlwaysReplace
	}
}

func printRunResult(cmd *cobra.Command, summary model.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run_id=%s mode=%s problem=%s samples=%s\n",
		summary.RunID, summary.Mode, summary.Problem, humanize.Comma(int64(summary.Emitted)))
	if summary.Best != nil {
		fmt.Fprintf(out, "best score=%s genome=%s sample=%d\n",
			summary.Best.Score, summary.Best.Genome, summary.Best.Index)
	}
}
