package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"philoscope/internal/config"
	"philoscope/internal/sim"
)

var (
	simPhilosophers int
	simTimeToDie    int64
	simTimeToEat    int64
	simTimeToSleep  int64
	simMaxMeals     int
	simLogFile      string
	simFaultsPath   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the built-in dining-philosophers simulation",
	Long: "simulate runs a goroutine-per-philosopher simulation and emits the standard log format on stdout.\n" +
		"Pipe it into `philoscope check --input -` or inject faults to produce dirty logs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := config.Params{
			Philosophers:  simPhilosophers,
			TimeToDieMS:   simTimeToDie,
			TimeToEatMS:   simTimeToEat,
			TimeToSleepMS: simTimeToSleep,
		}
		if simMaxMeals > 0 {
			mm := simMaxMeals
			params.MaxMeals = &mm
		}
		if err := (&config.Config{Params: &params}).Validate(); err != nil {
			return err
		}

		var faults sim.FaultPlan
		if simFaultsPath != "" {
			fp, err := sim.LoadFaults(simFaultsPath)
			if err != nil {
				return err
			}
			faults = *fp
		}

		var writer sim.LogWriter = sim.NewStdoutWriter()
		if simLogFile != "" {
			fw, err := sim.NewFileWriter(simLogFile)
			if err != nil {
				return err
			}
			defer fw.Close()
			writer = sim.NewMultiWriter(writer, fw)
		}

		ctx, cancel := context.WithCancel(cmdContext(cmd))
		defer cancel()
		go func() {
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			<-sigs
			cancel()
		}()

		return sim.NewSimulation(params, writer, faults).Run(ctx)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simPhilosophers, "philosophers", 5, "Number of philosophers")
	simulateCmd.Flags().Int64Var(&simTimeToDie, "time-to-die", 800, "time_to_die in milliseconds")
	simulateCmd.Flags().Int64Var(&simTimeToEat, "time-to-eat", 200, "time_to_eat in milliseconds")
	simulateCmd.Flags().Int64Var(&simTimeToSleep, "time-to-sleep", 200, "time_to_sleep in milliseconds")
	simulateCmd.Flags().IntVar(&simMaxMeals, "max-meals", 0, "Stop once every philosopher ate this often (0 runs until death or signal)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Also write the log to this file")
	simulateCmd.Flags().StringVar(&simFaultsPath, "faults", "", "Path to a YAML fault plan for producing dirty logs")
}
