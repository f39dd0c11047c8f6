// Command barrierbench stresses the barrier implementations with the
// three-scenario demonstration workload: UNSAFE (no barrier,
// nonzero failure count expected), SYNCED (asymmetric barrier), and SYMMBR
// (symmetric barrier). The latter two must report zero failures.
package main

import (
	"fmt"
	"os"
	"strings"

	asymbarrier "github.com/joeycumines/go-asymbarrier"
	"github.com/joeycumines/go-asymbarrier/internal/harness"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig models the optional YAML scenario file, flag-overridable.
type fileConfig struct {
	Threads   int      `yaml:"threads"`
	Epochs    uint64   `yaml:"epochs"`
	Scenarios []string `yaml:"scenarios"`
}

var rootCmd = &cobra.Command{
	Use:   "barrierbench",
	Short: "Race-detection benchmark for the asymmetric and symmetric barriers",
	Long: `barrierbench runs the barrier demonstration workload: one updater
increments a shared counter while reader threads load it twice per iteration,
counting iterations where the two loads differ by more than one.

Three scenarios run in sequence: UNSAFE (no barrier - the baseline, expected
to fail), SYNCED (asymmetric barrier), and SYMMBR (symmetric barrier, every
thread taking the updater role in turn). The barrier-backed scenarios must
report a FAILED count of zero.`,
	RunE:          runBench,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.Flags().Int("threads", harness.DefaultThreads, "reader/peer thread count")
	rootCmd.Flags().Uint64("epochs", harness.DefaultEpochs, "updates per scenario")
	rootCmd.Flags().StringSlice("scenario", []string{"all"}, "scenarios to run (all, unsafe, synced, symmbr)")
	rootCmd.Flags().String("config", "", "YAML config file (threads, epochs, scenarios); flags take precedence")
	rootCmd.Flags().Bool("metrics", false, "collect and log barrier counters")
	rootCmd.Flags().Bool("plain", false, "suppress decorative output, print only the RESULT block")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	threads, _ := cmd.Flags().GetInt("threads")
	epochs, _ := cmd.Flags().GetUint64("epochs")
	scenarios, _ := cmd.Flags().GetStringSlice("scenario")
	configPath, _ := cmd.Flags().GetString("config")
	withMetrics, _ := cmd.Flags().GetBool("metrics")
	plain, _ := cmd.Flags().GetBool("plain")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if configPath != "" {
		var fc fileConfig
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("barrierbench: reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("barrierbench: parsing config: %w", err)
		}
		if fc.Threads > 0 && !cmd.Flags().Changed("threads") {
			threads = fc.Threads
		}
		if fc.Epochs > 0 && !cmd.Flags().Changed("epochs") {
			epochs = fc.Epochs
		}
		if len(fc.Scenarios) > 0 && !cmd.Flags().Changed("scenario") {
			scenarios = fc.Scenarios
		}
	}

	level := logiface.LevelInformational
	if verbose {
		level = logiface.LevelDebug
	}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
		stumpy.L.WithLevel(level),
	).Logger()

	runners, err := selectScenarios(scenarios)
	if err != nil {
		return err
	}

	cfg := harness.Config{
		Threads: threads,
		Epochs:  epochs,
		Options: []asymbarrier.Option{
			asymbarrier.WithLogger(logger),
			asymbarrier.WithMetrics(withMetrics),
		},
	}

	if !plain {
		pterm.DefaultHeader.WithFullWidth().Println("go-asymbarrier benchmark")
		pterm.Info.Printfln("threads=%d epochs=%d scenarios=%s",
			threads, epochs, strings.Join(scenarioNames(runners), ","))
	}

	results := make([]harness.Result, 0, len(runners))
	for _, r := range runners {
		logger.Info().
			Str(`scenario`, r.name).
			Int(`threads`, threads).
			Uint64(`epochs`, epochs).
			Log(`scenario starting`)

		result, err := r.run(cfg)
		if err != nil {
			return fmt.Errorf("barrierbench: scenario %s: %w", r.name, err)
		}
		results = append(results, result)

		b := logger.Info().
			Str(`scenario`, result.Scenario).
			Uint64(`failed`, result.Failed).
			Uint64(`tested`, result.Tested)
		if withMetrics && result.Scenario != harness.ScenarioUnsafe {
			b = b.
				Uint64(`epochs_opened`, result.Stats.EpochsOpened).
				Uint64(`epochs_committed`, result.Stats.EpochsCommitted).
				Uint64(`checks_fast`, result.Stats.ChecksFast).
				Uint64(`checks_slow`, result.Stats.ChecksSlow).
				Uint64(`spins`, result.Stats.Spins)
		}
		b.Log(`scenario finished`)
	}

	if !plain {
		tableData := pterm.TableData{{"Scenario", "Failed", "Tested", "Total"}}
		for _, r := range results {
			row := []string{r.Scenario,
				fmt.Sprintf("%d", r.Failed),
				fmt.Sprintf("%d", r.Tested),
				fmt.Sprintf("%d", r.Total)}
			if r.Failed != 0 && r.Scenario != harness.ScenarioUnsafe {
				row[1] = pterm.FgRed.Sprint(row[1])
			}
			tableData = append(tableData, row)
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
			return err
		}
	}

	return harness.WriteResults(os.Stdout, results)
}

type scenarioRunner struct {
	name string
	run  func(harness.Config) (harness.Result, error)
}

func selectScenarios(names []string) ([]scenarioRunner, error) {
	all := []scenarioRunner{
		{harness.ScenarioUnsafe, harness.RunUnsafe},
		{harness.ScenarioSynced, harness.RunSynced},
		{harness.ScenarioSymm, harness.RunSymm},
	}

	var out []scenarioRunner
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			return all, nil
		case "unsafe":
			out = append(out, all[0])
		case "synced":
			out = append(out, all[1])
		case "symmbr", "symm":
			out = append(out, all[2])
		default:
			return nil, fmt.Errorf("barrierbench: unknown scenario %q", name)
		}
	}
	if len(out) == 0 {
		return all, nil
	}
	return out, nil
}

func scenarioNames(runners []scenarioRunner) []string {
	names := make([]string, len(runners))
	for i, r := range runners {
		names[i] = r.name
	}
	return names
}
