package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/drivethru-sim/drivethru-sim/sim"
)

var (
	configPath string // Path to the YAML config file
	logLevel   string // Log verbosity level
	seed       int64  // Seed for random customer generation
	quiet      bool   // Suppress the per-event table
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "drivethru-sim",
	Short: "Discrete-event simulator for multi-window drive-through queues",
}

// runCmd executes the simulations enabled in the config file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulations defined in the config file",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load %s: %v", configPath, err)
		}

		fmt.Println("=== Drive-Through Simulation System ===")
		fmt.Printf("Using config file: %s\n\n", configPath)

		if cfg.FixedSimulation.Enabled {
			fmt.Println("=== Drive-Through Simulation (Fixed Data from Config) ===")
			runFixed(&cfg.FixedSimulation)
			if cfg.RandomSimulation.Enabled {
				fmt.Println()
			}
		}

		if cfg.RandomSimulation.Enabled {
			fmt.Println("=== Drive-Through Simulation (Random Data from Config) ===")
			runRandom(&cfg.RandomSimulation)
		}

		fmt.Println("\nSimulation(s) completed.")
	},
}

func runFixed(cfg *FixedSimConfig) {
	s := sim.New(cfg.NumWindows)
	s.Seed(seed)
	for _, c := range cfg.Customers {
		s.AddCustomer(c.Arrival.Seconds(), c.Service.Seconds())
	}
	runAndReport(s, sim.RunOptions{HistoryPath: cfg.HistoryFile})
}

func runRandom(cfg *RandomSimConfig) {
	s := sim.New(cfg.NumWindows)
	s.Seed(seed)
	s.GenerateRandomCustomers(
		cfg.MaxSimulationTime.Seconds(),
		cfg.AvgArrivalInterval.Seconds(),
		cfg.MinServiceTime.Seconds(),
		cfg.MaxServiceTime.Seconds(),
	)
	runAndReport(s, sim.RunOptions{
		MaxTime:     cfg.MaxSimulationTime.Seconds(),
		HistoryPath: cfg.HistoryFile,
	})
}

// runAndReport wires the notification sink to the console table, runs the
// simulation, and prints the final statistics.
func runAndReport(s *sim.Simulation, opts sim.RunOptions) {
	var printerWG sync.WaitGroup
	if !quiet {
		events := make(chan sim.Notification, 1024)
		opts.Events = events

		printerWG.Add(1)
		go func() {
			defer printerWG.Done()
			fmt.Printf("%30s %-15s %-10s %-10s BusyServers\n", "Time", "Event", "CustID", "Queue")
			fmt.Println("-------------------------------------------------------------------------------------------")
			for n := range events {
				fmt.Printf("%s %-15s %-10d %-10d %d/%d\n",
					sim.FormatDurationFixed(n.Time), n.Kind, n.CustomerID,
					n.QueueLen, n.BusyServers, n.NumWindows)
			}
			fmt.Println("-------------------------------------------------------------------------------------------")
		}()
	}

	s.Run(opts)
	printerWG.Wait()

	fmt.Printf("Simulation finished at T=%s\n", sim.FormatDuration(s.State().CurrentTime()))
	s.PrintStatistics()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "config.yaml", "Path to the simulation config file")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random customer generation")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress the per-event table, print only the final report")

	rootCmd.AddCommand(runCmd)
}
