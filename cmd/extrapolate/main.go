package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/logging"
	"rai-digital-twin/internal/simulation"
	"rai-digital-twin/internal/twin"
)

func main() {
	// Parse flags
	steps := flag.Int("steps", 24, "Number of timesteps to simulate")
	runs := flag.Int("runs", 1, "Number of Monte Carlo runs")
	timedelta := flag.Float64("timedelta", 3600, "Seconds per timestep")
	predictorName := flag.String("predictor", "carry_forward", "Action predictor: carry_forward, window")
	minHistory := flag.Int("min-history", 1, "Minimum history rows before the predictor fits")
	window := flag.Int("window", 6, "Trailing window size for the window predictor")
	kp := flag.Float64("kp", twin.DefaultKp, "Controller proportional gain")
	ki := flag.Float64("ki", twin.DefaultKi, "Controller integral gain")
	outputJSON := flag.Bool("json", false, "Output trajectory as JSON instead of CSV")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(*logLevel)
	defer logger.Sync()

	predictor, err := buildPredictor(*predictorName)
	if err != nil {
		logger.Fatal("configure predictor", zap.Error(err))
	}

	params := twin.Params{
		Mode: twin.ExtrapolationMode{
			Predictor: predictor,
			UserActionParams: twin.UserActionParams{
				MinHistory: *minHistory,
				Window:     *window,
			},
		},
		ExtrapolationTimedelta: domain.Seconds(*timedelta),
		Controller:             twin.ControllerParams{Kp: *kp, Ki: *ki},
	}

	runner, err := simulation.NewRunner(params)
	if err != nil {
		logger.Fatal("configure simulation", zap.Error(err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
		cancel()
	}()

	logger.Info("running extrapolation",
		zap.Int("steps", *steps),
		zap.Int("runs", *runs),
		zap.Float64("timedelta", *timedelta),
		zap.String("predictor", *predictorName))

	trajectory, err := runner.Run(ctx, twin.DefaultInitialState(), *steps, *runs)
	if err != nil {
		logger.Fatal("run simulation", zap.Error(err))
	}

	if *outputJSON {
		printJSON(trajectory)
	} else {
		printCSV(trajectory)
	}
}

// buildPredictor maps a predictor name to its implementation.
func buildPredictor(name string) (twin.ActionPredictor, error) {
	switch strings.ToLower(name) {
	case "carry_forward":
		return twin.CarryForwardPredictor{}, nil
	case "window":
		return twin.WindowPredictor{}, nil
	default:
		return nil, fmt.Errorf("unknown predictor %q (carry_forward, window)", name)
	}
}

// columnValues extracts every column once, keyed by name.
func columnValues(trajectory *domain.Trajectory) (map[string][]float64, []string) {
	names := trajectory.Columns()
	values := make(map[string][]float64, len(names))
	for _, name := range names {
		col, err := trajectory.Column(name)
		if err != nil {
			continue
		}
		values[name] = col
	}
	return values, names
}

// printCSV writes the trajectory as CSV on stdout, one row per
// (run, timestep).
func printCSV(trajectory *domain.Trajectory) {
	values, names := columnValues(trajectory)

	fmt.Printf("run,timestep,%s\n", strings.Join(names, ","))
	for i, idx := range trajectory.Index() {
		fmt.Printf("%d,%d", idx.Run, idx.Timestep)
		for _, name := range names {
			fmt.Printf(",%g", values[name][i])
		}
		fmt.Println()
	}
}

// printJSON writes one JSON object per row on stdout.
func printJSON(trajectory *domain.Trajectory) {
	values, names := columnValues(trajectory)

	for i, idx := range trajectory.Index() {
		row := make(map[string]interface{}, len(names)+2)
		row["run"] = idx.Run
		row["timestep"] = idx.Timestep
		for _, name := range names {
			row[name] = values[name][i]
		}
		output, _ := json.Marshal(row)
		fmt.Println(string(output))
	}
}
