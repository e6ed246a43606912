package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/cubench/cubench/bench"
)

const AppName = "cubench"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Benchmark compute-unit usage of SVM programs",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run a benchmark and record its report",
		ArgsUsage: "BENCHMARK",
		Action:    app.run,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "samples",
				Aliases: []string{"s"},
				Usage:   "Number of measurement passes (default: 100)",
				Value:   100,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Append the report as line-delimited JSON to this file",
			},
		},
		Description: `Run a bundled benchmark and record its report.

The run performs one simulated context-discovery pass followed by N
executed measurement passes against a single warm environment, then
derives percentile compute-unit estimates from the N samples.

Running without a benchmark name prints the available benchmarks.`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous benchmark runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "benchmark",
				Aliases: []string{"b"},
				Usage:   "Filter by benchmark name (e.g., sol_transfer)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "View a benchmark report from history",
		ArgsUsage: "[ID|INDEX]",
		Action:    app.view,
		Description: `View a benchmark report from history.

Arguments:
  0           View last run (default)
  -1          View 2nd last run
  -2          View 3rd last run
  <hex-id>    View the run matching the hex ID prefix

Examples:
  cubench view           # View last run
  cubench view -1        # View 2nd last run
  cubench view abc123    # View run with ID starting with abc123`,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application and
// the generated_by identity in emitted reports.
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
	bench.SetGenerator(fmt.Sprintf("%s@%s", AppName, version))
}
