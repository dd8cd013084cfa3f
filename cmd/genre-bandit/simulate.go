package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/simulation"
	"github.com/gosuri/uilive"
	"github.com/spf13/cobra"
)

func simulateCommand() *cobra.Command {
	var (
		rounds  int
		epsilon float64
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compare random, epsilon-greedy and UCB1 on the configured genres",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := NewConfig(configFile)
			if err != nil {
				return err
			}

			cfg := simulation.CompareConfig{
				Labels:        config.Simulation.Genres,
				Probabilities: config.Simulation.Probabilities,
				Rounds:        config.Simulation.Rounds,
				Epsilon:       config.Simulation.Epsilon,
				Seed:          config.Simulation.Seed,
			}

			flags := cmd.Flags()
			if flags.Changed("rounds") {
				cfg.Rounds = rounds
			}
			if flags.Changed("epsilon") {
				cfg.Epsilon = epsilon
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}

			return runSimulation(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", simulation.DefaultRounds, "Number of rounds per policy")
	cmd.Flags().Float64Var(&epsilon, "epsilon", simulation.DefaultEpsilon, "Exploration rate of epsilon-greedy")
	cmd.Flags().Uint64Var(&seed, "seed", simulation.DefaultSeed, "Random seed shared by every run")

	return cmd
}

func runSimulation(ctx context.Context, out io.Writer, cfg simulation.CompareConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	writer := uilive.New()
	writer.Out = out
	writer.Start()

	status := make(map[bandit.Kind]string, len(bandit.Kinds))
	render := func(done int) {
		fmt.Fprintf(writer, "simulating %d rounds over %d genres (seed %d), %d/%d policies done\n",
			cfg.Rounds, len(cfg.Labels), cfg.Seed, done, len(bandit.Kinds))

		for _, kind := range bandit.Kinds {
			state, ok := status[kind]
			if !ok {
				state = "running"
			}

			fmt.Fprintf(writer, "  %-15s %s\n", kind, state)
		}

		writer.Flush() //nolint:errcheck
	}

	render(0)

	cfg.Progress = func(kind bandit.Kind, done, _ int) {
		status[kind] = "done"
		render(done)
	}

	runs, err := simulation.Compare(ctx, cfg)

	writer.Stop()

	if err != nil {
		return err
	}

	fmt.Fprintf(out, "best genre: %s\n\n", cfg.Labels[runs[0].Result.BestArm])
	printRuns(out, cfg, runs)

	return nil
}

func printRuns(out io.Writer, cfg simulation.CompareConfig, runs []simulation.Run) {
	last := cfg.Rounds - 1

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "policy\tlikes\tlike rate\tbest genre share")

	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%.0f\t%.3f\t%.3f\n",
			run.Kind,
			run.Result.CumulativeReward[last],
			run.Result.CumulativeReward[last]/float64(cfg.Rounds),
			run.Result.PctOptimal[last])
	}

	tw.Flush()

	for _, run := range runs {
		fmt.Fprintf(out, "\n%s\n", run.Kind)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "genre\tplays\tlikes\tmean")

		for arm, label := range cfg.Labels {
			fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.2f\n",
				label, run.Summary.Counts[arm], run.Summary.Totals[arm], run.Summary.Means[arm])
		}

		tw.Flush()
	}
}
