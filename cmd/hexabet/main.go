package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/hexabet/internal/config"
	"github.com/yourusername/hexabet/internal/logger"
	"github.com/yourusername/hexabet/internal/models"
	"github.com/yourusername/hexabet/internal/service"
	"github.com/yourusername/hexabet/internal/storage"
)

var (
	configFile string
	modeFlag   string
	appLog     *logrus.Logger
	cfg        *config.Config
	store      *storage.PostgresStore
	tracker    *service.Tracker
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Strategy mode (safe, balanced, value, aggressive)")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(statusCmd)
}

var rootCmd = &cobra.Command{
	Use:   "hexabet",
	Short: "Adaptive six-contender wagering tracker",
	Long:  `Logs resolved events into an append-only ledger, maintains odds-bucket statistics and signal weights, and recommends bets.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLog = logger.NewLogger("warn", cfg.App.Environment)

	store, err = storage.NewPostgresStore(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to blob store: %w", err)
	}

	tracker = service.NewTracker(store, nil, appLog)
	if err := tracker.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tracker state: %w", err)
	}
	return nil
}

func currentMode() models.StrategyMode {
	if modeFlag != "" {
		return models.StrategyMode(modeFlag)
	}
	return models.StrategyMode(cfg.App.DefaultMode)
}

func parseOdds(args []string) ([models.ContenderCount]float64, error) {
	var odds [models.ContenderCount]float64
	if len(args) != models.ContenderCount {
		return odds, fmt.Errorf("expected %d odds values, got %d", models.ContenderCount, len(args))
	}
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return odds, fmt.Errorf("invalid odds value %q: %w", arg, err)
		}
		odds[i] = v
	}
	return odds, nil
}

var predictCmd = &cobra.Command{
	Use:   "predict ODDS1 ODDS2 ODDS3 ODDS4 ODDS5 ODDS6",
	Short: "Show the prediction and recommendation for six odds",
	Args:  cobra.ExactArgs(models.ContenderCount),
	RunE: func(cmd *cobra.Command, args []string) error {
		odds, err := parseOdds(args)
		if err != nil {
			return err
		}

		proposal, err := tracker.Propose(odds, currentMode())
		if err != nil {
			return err
		}

		fmt.Printf("Mode: %s    Confidence: %s\n\n", currentMode(), proposal.Confidence)
		fmt.Printf("%-10s %8s %8s %8s %8s\n", "Contender", "Odds", "Implied", "Adjusted", "Edge")
		for i := 0; i < models.ContenderCount; i++ {
			fmt.Printf("%-10d %8.2f %7.2f%% %7.2f%% %+7.4f\n",
				i, odds[i],
				proposal.Prediction.Implied[i]*100,
				proposal.Prediction.Adjusted[i]*100,
				proposal.Prediction.Edges[i])
		}

		fmt.Println()
		if proposal.Recommendation.Skip {
			fmt.Printf("Recommendation: SKIP (%s)\n", proposal.Recommendation.Reason)
			return nil
		}
		fmt.Printf("Recommendation: contender %d, stake %.0f\n", proposal.Recommendation.Index, proposal.Stake)
		fmt.Printf("Signals: odds %.4f, historical %.4f, recent %.4f, consistency %.4f\n",
			proposal.Breakdown.Odds, proposal.Breakdown.Historical,
			proposal.Breakdown.Recent, proposal.Breakdown.Consistency)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log ODDS1..ODDS6 FIRST SECOND THIRD",
	Short: "Log a resolved event into the ledger",
	Args:  cobra.ExactArgs(models.ContenderCount + 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		odds := make([]float64, models.ContenderCount)
		for i := 0; i < models.ContenderCount; i++ {
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return fmt.Errorf("invalid odds value %q: %w", args[i], err)
			}
			odds[i] = v
		}

		finishers := make([]int, 3)
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(args[models.ContenderCount+i])
			if err != nil {
				return fmt.Errorf("invalid finisher index %q: %w", args[models.ContenderCount+i], err)
			}
			finishers[i] = v
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		rec, err := tracker.LogEvent(ctx, service.EventInput{
			Odds:         odds,
			Mode:         string(currentMode()),
			ActualFirst:  finishers[0],
			ActualSecond: finishers[1],
			ActualThird:  finishers[2],
		})
		if err != nil {
			return err
		}

		fmt.Printf("Event %s logged\n", rec.ID)
		if rec.Recommended == models.SkipIndex {
			fmt.Println("Recommendation was a skip; no bet settled")
		} else {
			fmt.Printf("Recommended contender %d, stake %.0f, profit/loss %+.0f\n",
				rec.Recommended, rec.Stake, rec.ProfitLoss)
		}
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Remove the most recently logged event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := tracker.UndoLast(ctx); err != nil {
			return err
		}
		fmt.Printf("Last event removed; ledger now holds %d records\n", len(tracker.Records()))
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild all derived state from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		if err := tracker.RebuildAll(ctx); err != nil {
			return err
		}
		fmt.Println("Derived state rebuilt")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger, model, and bucket statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		history := tracker.History()
		state := tracker.ModelState()
		buckets := tracker.BucketStats()

		fmt.Printf("Ledger: %d events, %d wins (%.1f%% win rate)\n",
			history.TotalRaces, history.Wins, history.WinRate)
		fmt.Printf("Profit: %+.0f on %.0f invested (ROI %.2f%%)\n\n",
			history.TotalProfit, history.TotalInvested, history.ROI)

		fmt.Printf("Model: accuracy %.2f%%, calibration %.3f, confidence scale %.2f\n",
			state.Accuracy*100, state.Calibration, state.ConfidenceScale)
		fmt.Printf("Weights: odds %.3f, historical %.3f, recent %.3f, consistency %.3f\n",
			state.Weights.Odds, state.Weights.Historical,
			state.Weights.Recent, state.Weights.Consistency)
		if state.Drift.DriftDetected {
			fmt.Printf("Drift detected at %s (score %.3f)\n",
				state.Drift.LastCheck.Format(time.RFC3339), state.Drift.DriftScore)
		}

		fmt.Printf("\n%-8s %8s %8s %8s %10s %10s\n", "Bucket", "Samples", "WinRate", "ROI", "Variance", "Recent")
		for _, key := range []models.BucketKey{models.BucketLow, models.BucketMid, models.BucketHigh, models.BucketLongshot} {
			bs := buckets.Get(key)
			fmt.Printf("%-8s %8d %7.1f%% %7.1f%% %10.3f %9.1f%%\n",
				key, bs.Total, bs.WinRate, bs.ROI, bs.VarianceScore, bs.RecentWinRate)
		}
		return nil
	},
}
