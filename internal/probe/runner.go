package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/pkg/logger"
)

// ErrFailed is returned when any probed game errored or violated a check.
var ErrFailed = errors.New("probe failed")

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Run executes a complete probe: health check, concurrent game probes,
// an optional report file and final statistics.
func Run(ctx context.Context, config *Config, log logger.Logger) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting attribution probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", config.Games),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.String("sport", config.Sport))

	client := newHTTPClient(config.BaseURL, config.Timeout)
	if err := checkServiceHealth(ctx, client, log); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	results := probeGames(ctx, config, client, generateGameIDs(config.Games), log)
	summarize(results, stats)
	stats.Requests = client.Requests()

	if config.OutputFile != "" {
		if err := saveResults(config.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		} else {
			log.Info(ctx, "results saved to file", logger.String("filename", config.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats, log)

	if stats.GamesFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d games", ErrFailed, stats.GamesFailed, stats.GamesProbed)
	}
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("probe interrupted: %w", err)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, log logger.Logger) error {
	if _, err := client.Get(ctx, "/healthz"); err != nil {
		return err
	}
	log.Info(ctx, "service is healthy")
	return nil
}

// probeGames fans game ids out to a worker pool. Results keep input order.
func probeGames(ctx context.Context, config *Config, client *HTTPClient, ids []string, log logger.Logger) []GameResult {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]GameResult, len(ids))
	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res := probeGame(ctx, client, config.Sport, ids[idx])
				results[idx] = res

				switch {
				case res.Error != "":
					log.Warn(ctx, "game probe errored", logger.String("gameID", res.GameID), logger.String("error", res.Error))
				case len(res.Violations) > 0:
					log.Warn(ctx, "game probe found violations", logger.String("gameID", res.GameID), logger.Any("violations", res.Violations))
				case config.Verbose:
					log.Info(ctx, "game probed",
						logger.String("gameID", res.GameID),
						logger.Float64("edge", res.Edge),
						logger.String("favored", res.Favored),
						logger.Float64("homeReadiness", res.HomeReadiness),
						logger.Float64("awayReadiness", res.AwayReadiness))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range ids {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()

	// Games never dispatched after cancellation are dropped.
	out := results[:0]
	for _, r := range results {
		if r.GameID != "" {
			out = append(out, r)
		}
	}
	return out
}

// probeGame scores one game end to end: the matchup, then readiness and
// performance for both sides, then a repeat readiness request.
func probeGame(ctx context.Context, client *HTTPClient, sport, gameID string) GameResult {
	res := GameResult{GameID: gameID}
	query := ""
	if sport != "" {
		query = "?sport=" + url.QueryEscape(sport)
	}
	base := "/v1/games/" + url.PathEscape(gameID)

	var mu model.MatchupReport
	if err := client.GetJSON(ctx, base+"/matchup"+query, &mu); err != nil {
		res.Error = err.Error()
		return res
	}
	res.HomeTeamID, res.AwayTeamID = mu.Matchup.HomeTeamID, mu.Matchup.AwayTeamID
	res.Edge, res.Favored = mu.Index.Edge, mu.Index.Favored
	res.Fallback = mu.Fallback
	res.Violations = append(res.Violations, checkMatchup(mu)...)

	for _, side := range []struct {
		label  string
		teamID string
		ready  *float64
		perf   *float64
	}{
		{"home", mu.Matchup.HomeTeamID, &res.HomeReadiness, &res.HomePerformance},
		{"away", mu.Matchup.AwayTeamID, &res.AwayReadiness, &res.AwayPerformance},
	} {
		team := base + "/teams/" + url.PathEscape(side.teamID)

		var ready, again model.ReadinessReport
		if err := client.GetJSON(ctx, team+"/readiness"+query, &ready); err != nil {
			res.Error = err.Error()
			return res
		}
		var perf model.PerformanceReport
		if err := client.GetJSON(ctx, team+"/performance"+query, &perf); err != nil {
			res.Error = err.Error()
			return res
		}
		if err := client.GetJSON(ctx, team+"/readiness"+query, &again); err != nil {
			res.Error = err.Error()
			return res
		}

		*side.ready, *side.perf = ready.Index.Score, perf.Performance.Score
		res.Fallback = res.Fallback || ready.Fallback || perf.Fallback
		res.Violations = append(res.Violations, checkIndex(side.label+" readiness", ready.Index)...)
		res.Violations = append(res.Violations, checkPerformance(side.label, perf)...)
		res.Violations = append(res.Violations, checkRepeat(side.label+" readiness", ready, again)...)
		if perf.Readiness.Score != ready.Index.Score {
			res.Violations = append(res.Violations, fmt.Sprintf("%s: performance report recomputed readiness %v, readiness endpoint scored %v",
				side.label, perf.Readiness.Score, ready.Index.Score))
		}
	}
	return res
}

func summarize(results []GameResult, stats *Stats) {
	for _, r := range results {
		stats.GamesProbed++
		switch {
		case r.Passed():
			stats.GamesPassed++
		default:
			stats.GamesFailed++
		}
		if r.Error != "" {
			stats.Errors++
		}
		stats.Violations += len(r.Violations)
		if r.Fallback {
			stats.Fallbacks++
		}
	}
}

// saveResults writes the per-game results as a JSON array.
func saveResults(filename string, results []GameResult) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats, log logger.Logger) {
	var passRate, gamesPerSecond float64
	if stats.GamesProbed > 0 {
		passRate = float64(stats.GamesPassed) / float64(stats.GamesProbed) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesProbed) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("gamesProbed", stats.GamesProbed),
		logger.Int("gamesPassed", stats.GamesPassed),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("errors", stats.Errors),
		logger.Int("violations", stats.Violations),
		logger.Int("fallbacks", stats.Fallbacks),
		logger.Any("requests", stats.Requests),
		logger.Duration("duration", stats.Duration),
		logger.Float64("passRate", passRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
