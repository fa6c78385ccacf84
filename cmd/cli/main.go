package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gostreak/adapters/battery"
	"gostreak/adapters/excel"
	"gostreak/app"
	"gostreak/domain/outcome"
	"gostreak/domain/streak"
	"gostreak/internal"
	"gostreak/internal/config"
	"gostreak/internal/errors"
	"gostreak/internal/testkit"
	"gostreak/ports"
)

// options shared by every command
type options struct {
	file        string
	output      string
	persistence float64
	cfg         *config.Config
	logger      *internal.Logger
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "gostreak",
		Short: "Streak measures, permutation tests and hot-hand selection bias",
		Long: `gostreak measures how streaky win/loss sequences are, tests the measures
against random reorderings of the same season, and computes the exact
selection-bias expectation for outcomes that follow a streak.

Without --file a synthetic league schedule is generated.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
			if opts.file == "" {
				opts.file = cfg.Data.GamesFile
			}
			return validateOutput(opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.file, "file", "", "Games file (.xlsx or .csv); synthetic schedule when empty")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().Float64Var(&opts.persistence, "persistence", 0, "Synthetic schedules only: chance a team repeats its last result")

	rootCmd.AddCommand(
		newMeasureCmd(opts),
		newSimulateCmd(opts),
		newExpectationCmd(opts),
		newAutocorrelationCmd(opts),
		newSummaryCmd(opts),
		newSweepCmd(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// service wires the streak service to the configured schedule source
func (o *options) service() (*app.StreakService, error) {
	synthetic := o.syntheticSchedule()
	kit, err := testkit.NewTestKitWithConfig(synthetic)
	if err != nil {
		return nil, errors.FromCore(err, "invalid synthetic schedule settings")
	}

	referee := battery.NewPermutationReferee(kit.RNGAdapter())
	referee.SetWorkers(o.cfg.MonteCarlo.Workers)
	referee.SetSeed(o.cfg.MonteCarlo.Seed)
	referee.SetLogger(o.logger.With("permutation_referee"))

	var schedules ports.SchedulePort
	if o.file != "" {
		schedules = excel.NewScheduleReader(o.file)
	} else {
		o.logger.Debug("no games file given, generating %d teams x %d games", synthetic.Teams, synthetic.GamesPerTeam)
		schedules = kit.ScheduleAdapter()
	}

	service := app.NewStreakService(o.cfg, referee, schedules)
	service.SetLogger(o.logger.With("streak_service"))
	return service, nil
}

func (o *options) syntheticSchedule() testkit.ScheduleGeneratorConfig {
	synthetic := testkit.DefaultScheduleConfig()
	synthetic.GamesPerTeam = o.cfg.Selection.SeasonGames
	synthetic.Seed = o.cfg.MonteCarlo.Seed
	synthetic.Persistence = o.persistence
	return synthetic
}

// validateAlpha bounds the highlighting threshold to (0, 1]
func validateAlpha(alpha float64) error {
	if alpha <= 0 || alpha > 1 {
		return errors.InvalidInput(fmt.Sprintf("--alpha must lie in (0, 1], got %g", alpha))
	}
	return nil
}

func parseMeasure(name, polarity string) (streak.Kind, outcome.Polarity, error) {
	kind, err := streak.ParseKind(name)
	if err != nil {
		return 0, 0, err
	}
	pol, err := outcome.ParsePolarity(polarity)
	if err != nil {
		return 0, 0, err
	}
	// "clump (losses)" implies losses polarity
	if strings.Contains(strings.ToLower(name), "loss") {
		pol = outcome.Losses
	}
	return kind, pol, nil
}

func parseKinds(list string) ([]streak.Kind, error) {
	if list == "" {
		return nil, nil
	}
	kinds := make([]streak.Kind, 0)
	for _, name := range strings.Split(list, ",") {
		kind, err := streak.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func newMeasureCmd(opts *options) *cobra.Command {
	var measureName, polarity string

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Compute a streak measure for every team",
		Long: `Compute one streak measure for every team of the schedule.

Example: gostreak measure --file games.csv --measure clump --polarity losses`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, pol, err := parseMeasure(measureName, polarity)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			schedule, err := service.LoadSchedule(cmd.Context())
			if err != nil {
				return err
			}
			result, err := service.ComputeMeasure(schedule, kind, pol)
			if err != nil {
				return err
			}
			// the per-game trace is only useful in structured output
			if opts.output == outputTable {
				result.Trace = nil
			}
			return render(os.Stdout, opts.output, result, measureTable(result))
		},
	}

	cmd.Flags().StringVar(&measureName, "measure", "gap", "Measure: gap, clump, second_moment, entropy, log_utility, runs")
	cmd.Flags().StringVar(&polarity, "polarity", "wins", "Which outcome counts as a success: wins or losses")
	return cmd
}

func newSimulateCmd(opts *options) *cobra.Command {
	var measureName, polarity, team string
	var trials, bins int
	var alpha float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Permutation test of one team's streakiness",
		Long: `Compare a team's measure with the same measure on random reorderings of
its season and report the upper-tail p-value.

Example: gostreak simulate --file games.csv --team BOS --measure gap --trials 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bins < 1 {
				return errors.InvalidInput(fmt.Sprintf("--bins must be positive, got %d", bins))
			}
			if err := validateAlpha(alpha); err != nil {
				return err
			}
			kind, pol, err := parseMeasure(measureName, polarity)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			schedule, err := service.LoadSchedule(cmd.Context())
			if err != nil {
				return err
			}
			unit := outcome.UnitID(team)
			if units := schedule.Units(); unit == "" && len(units) > 0 {
				unit = units[0]
			}
			result, err := service.SignificanceTest(cmd.Context(), schedule, kind, pol, unit, trials)
			if err != nil {
				return err
			}
			histogram, err := result.Null.Histogram(bins)
			if err != nil {
				return err
			}
			return render(os.Stdout, opts.output, result, significanceTable(result, histogram, alpha))
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team to test (default: first team in the schedule)")
	cmd.Flags().StringVar(&measureName, "measure", "gap", "Measure to test")
	cmd.Flags().StringVar(&polarity, "polarity", "wins", "Which outcome counts as a success: wins or losses")
	cmd.Flags().IntVar(&trials, "trials", 0, "Number of permutations (default MC_TRIALS)")
	cmd.Flags().IntVar(&bins, "bins", 10, "Histogram bins for the null distribution")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level used for highlighting")
	return cmd
}

func newExpectationCmd(opts *options) *cobra.Command {
	var games, k int
	var p float64
	var curve bool

	cmd := &cobra.Command{
		Use:   "expectation",
		Short: "Exact expected success rate right after a streak",
		Long: `Compute the expected proportion of successes immediately following k
consecutive successes in N independent trials with success probability p.

Example: gostreak expectation --games 82 --k 3 --p 0.5 --curve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if games <= 0 {
				games = opts.cfg.Selection.SeasonGames
			}
			if k < 0 {
				k = opts.cfg.Selection.StreakLength
			}
			if p < 0 {
				p = opts.cfg.Selection.Probability
			}
			service, err := opts.service()
			if err != nil {
				return err
			}

			if curve {
				seq, err := service.ExpectationCurve(games, k, p)
				if err != nil {
					return err
				}
				points := make([]curvePoint, 0, games)
				for n, v := range seq {
					points = append(points, curvePoint{Games: n, Expectation: v})
				}
				return render(os.Stdout, opts.output, points, curveTable(points, p))
			}

			expected, err := service.SelectionBiasExpectation(games, k, p)
			if err != nil {
				return err
			}
			point := expectationPoint{Games: games, K: k, P: p, Expectation: expected, Bias: expected - p}
			return render(os.Stdout, opts.output, point, expectationTable(point))
		},
	}

	cmd.Flags().IntVar(&games, "games", 0, "Sequence length N (default SEASON_GAMES)")
	cmd.Flags().IntVar(&k, "k", -1, "Streak length (default STREAK_K)")
	cmd.Flags().Float64Var(&p, "p", -1, "Success probability (default STREAK_P)")
	cmd.Flags().BoolVar(&curve, "curve", false, "Print the expectation for every length up to --games")
	return cmd
}

func newAutocorrelationCmd(opts *options) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "autocorrelation",
		Short: "Win rate after k straight wins versus overall and expected",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := opts.service()
			if err != nil {
				return err
			}
			schedule, err := service.LoadSchedule(cmd.Context())
			if err != nil {
				return err
			}
			report, err := service.Autocorrelation(schedule, k)
			if err != nil {
				return err
			}
			return render(os.Stdout, opts.output, report, autocorrelationTable(report))
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Streak length (default STREAK_K)")
	return cmd
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Every streak measure for every team in one table",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := opts.service()
			if err != nil {
				return err
			}
			schedule, err := service.LoadSchedule(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := service.Summary(schedule)
			if err != nil {
				return err
			}
			return render(os.Stdout, opts.output, rows, summaryTable(rows))
		},
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	var trials int
	var polarity, kindList string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Permutation p-values for every team and measure",
		Long: `Run the permutation test for every team and every selected measure.

Example: gostreak sweep --file games.csv --trials 500 --measures gap,runs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateAlpha(alpha); err != nil {
				return err
			}
			kinds, err := parseKinds(kindList)
			if err != nil {
				return err
			}
			pol, err := outcome.ParsePolarity(polarity)
			if err != nil {
				return err
			}
			service, err := opts.service()
			if err != nil {
				return err
			}
			schedule, err := service.LoadSchedule(cmd.Context())
			if err != nil {
				return err
			}
			result, err := service.Sweep(cmd.Context(), schedule, kinds, pol, trials)
			if err != nil {
				return err
			}
			return render(os.Stdout, opts.output, result, sweepTable(result, alpha))
		},
	}

	cmd.Flags().IntVar(&trials, "trials", 0, "Permutations per test (default MC_TRIALS)")
	cmd.Flags().StringVar(&polarity, "polarity", "wins", "Which outcome counts as a success: wins or losses")
	cmd.Flags().StringVar(&kindList, "measures", "", "Comma-separated measures (default all)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level used for highlighting")
	return cmd
}
