package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/richinex/tinytales/dedup"
	"github.com/richinex/tinytales/story"
)

// BatchOptions controls the batch command.
type BatchOptions struct {
	Save   bool
	NoSeed bool
	// RPM paces requests per minute. Zero disables pacing.
	RPM int
	// MetricsAddr serves /metrics while the batch runs when set.
	MetricsAddr string
	Progress    bool
}

// BatchResult summarizes a batch run. Failed counts stories the model
// step did not produce; SaveFailed counts generated stories that could not
// be stored.
type BatchResult struct {
	Generated  int
	Failed     int
	SaveFailed int
	Duplicates int
	Saved      []string
}

type batchFile struct {
	Stories []story.Parameters `toml:"story"`
}

// LoadBatchFile reads [[story]] tables from a TOML file. Missing fields take
// the form defaults.
func LoadBatchFile(path string) ([]story.Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var f batchFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	if len(f.Stories) == 0 {
		return nil, fmt.Errorf("batch file %s has no [[story]] entries", path)
	}

	params := make([]story.Parameters, len(f.Stories))
	for i, p := range f.Stories {
		params[i] = p.WithDefaults()
	}
	return params, nil
}

// Batch generates every story in order, one at a time. All stories share
// one duplicate history. A failed story is reported and skipped.
func Batch(ctx context.Context, app *App, params []story.Parameters, opts BatchOptions) (BatchResult, error) {
	logger := app.logger()

	if opts.MetricsAddr != "" && app.Metrics != nil {
		shutdown, err := serveMetrics(app, opts.MetricsAddr)
		if err != nil {
			return BatchResult{}, app.fail(err)
		}
		defer shutdown()
	}

	var limiter *rate.Limiter
	if opts.RPM > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RPM)/60.0), 1)
	}

	history := dedup.NewHistory(dedup.WithLimit(app.Settings.Generation.HistoryLimit))
	gen := app.Generator(history, !opts.NoSeed)

	var bar interface{ Add(int) error }
	if opts.Progress {
		bar = newBatchBar(app.Printer.err, len(params))
	}

	var result BatchResult
	for i, p := range params {
		if limiter != nil {
			start := time.Now()
			if err := limiter.Wait(ctx); err != nil {
				return result, app.fail(fmt.Errorf("batch interrupted: %w", err))
			}
			if app.Metrics != nil {
				app.Metrics.RateLimitWaited(time.Since(start))
			}
		}

		out, err := gen.GenerateStory(ctx, p)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			result.Failed++
			app.Printer.Error("story %d (%s): %s", i+1, p.Genre, describeError(err))
			logger.Warn("batch story failed", zap.Int("index", i), zap.Error(err))
			if ctx.Err() != nil {
				return result, app.fail(fmt.Errorf("batch interrupted: %w", ctx.Err()))
			}
			continue
		}

		result.Generated++
		if out.Duplicate.IsDuplicate {
			result.Duplicates++
		}

		if opts.Save {
			id, err := app.Store.Save(ctx, out.Record)
			if err != nil {
				result.SaveFailed++
				app.Printer.Error("story %d: save %s: %s", i+1, out.Record.ID, describeError(err))
				logger.Warn("batch story not saved", zap.String("story_id", out.Record.ID), zap.Error(err))
				continue
			}
			result.Saved = append(result.Saved, id)
		}
	}

	printBatchSummary(app, result)

	switch {
	case result.Failed > 0 && result.SaveFailed > 0:
		return result, &reportedError{err: fmt.Errorf("%d of %d stories failed, %d not saved",
			result.Failed, len(params), result.SaveFailed)}
	case result.Failed > 0:
		return result, &reportedError{err: fmt.Errorf("%d of %d stories failed", result.Failed, len(params))}
	case result.SaveFailed > 0:
		return result, &reportedError{err: fmt.Errorf("%d of %d stories not saved", result.SaveFailed, len(params))}
	}
	return result, nil
}

func printBatchSummary(app *App, r BatchResult) {
	app.Printer.Header("Batch summary")
	app.Printer.Print("  Generated:  %d", r.Generated)
	app.Printer.Print("  Saved:      %d", len(r.Saved))
	app.Printer.Print("  Failed:     %d", r.Failed)
	if r.SaveFailed > 0 {
		app.Printer.Print("  Not saved:  %d", r.SaveFailed)
	}
	app.Printer.Print("  Duplicates: %d", r.Duplicates)

	if app.Metrics == nil {
		return
	}
	summary := app.Metrics.Summary()
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		app.Printer.Print("  %s %s", app.Printer.Dim(name), summary[name])
	}
}

// serveMetrics starts a /metrics endpoint on addr and returns a function
// that stops it.
func serveMetrics(app *App, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger().Warn("metrics server stopped", zap.Error(err))
		}
	}()
	app.Printer.Info("Metrics at http://%s/metrics", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
