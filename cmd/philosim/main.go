package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"philoscope/internal/config"
	"philoscope/internal/sim"
)

func main() {
	philosophers := flag.Int("philosophers", 5, "Number of philosophers")
	timeToDie := flag.Int64("time-to-die", 800, "time_to_die in milliseconds")
	timeToEat := flag.Int64("time-to-eat", 200, "time_to_eat in milliseconds")
	timeToSleep := flag.Int64("time-to-sleep", 200, "time_to_sleep in milliseconds")
	maxMeals := flag.Int("max-meals", 0, "Stop once every philosopher ate this often (0 runs until death)")
	logFile := flag.String("log-file", "", "Also write the log to this file")
	faultsPath := flag.String("faults", "", "Path to a YAML fault plan")
	flag.Parse()

	params := config.Params{
		Philosophers:  *philosophers,
		TimeToDieMS:   *timeToDie,
		TimeToEatMS:   *timeToEat,
		TimeToSleepMS: *timeToSleep,
	}
	if *maxMeals > 0 {
		params.MaxMeals = maxMeals
	}
	if err := (&config.Config{Params: &params}).Validate(); err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}

	var faults sim.FaultPlan
	if *faultsPath != "" {
		fp, err := sim.LoadFaults(*faultsPath)
		if err != nil {
			log.Fatalf("Fault plan load failed: %v", err)
		}
		faults = *fp
	}

	var writer sim.LogWriter = sim.NewStdoutWriter()
	if *logFile != "" {
		fw, err := sim.NewFileWriter(*logFile)
		if err != nil {
			log.Fatalf("Failed to create log file: %v", err)
		}
		defer fw.Close()
		writer = sim.NewMultiWriter(writer, fw)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		cancel()
	}()

	if err := sim.NewSimulation(params, writer, faults).Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}
