package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/mcskg/metrics"
	"github.com/c360studio/mcskg/pipeline"
	"github.com/c360studio/mcskg/source"
)

func watchCmd(a *app) *cobra.Command {
	var (
		inputs      []string
		metricsAddr string
		out         outputOptions
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate rules whenever statement files change",
		Long: `Watch statement files and regenerate their rules on every change.

Matching files are processed once at startup and again after each debounced
batch of modifications. With --metrics-addr, Prometheus metrics are served
at /metrics.`,
		Example: `  mcskg watch -i 'plant/**/*.mcsk' -f sparql --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			patterns := inputs
			if len(patterns) == 0 {
				patterns = a.cfg.Input.Patterns
			}
			if len(patterns) == 0 {
				return errors.New("no input patterns: pass --input or set input.patterns")
			}

			ctx := cmd.Context()
			m := metrics.NewMetrics(metrics.InstanceInfo{Version: Version})
			if metricsAddr != "" {
				srv := a.serveMetrics(metricsAddr, m)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			dest, closeSinks, err := a.openSinks(ctx, out)
			if err != nil {
				return err
			}
			defer closeSinks()
			dest.metrics = m

			w, err := source.NewWatcher(source.WatchConfig{
				Patterns:      patterns,
				DebounceDelay: a.cfg.Input.DebounceDelay,
			}, a.logger)
			if err != nil {
				return err
			}

			gen := a.newGenerator(m)
			if files, err := source.ResolveFiles(patterns); err != nil {
				a.logger.Warn("Initial scan found no statement files", "error", err)
			} else {
				a.processFiles(ctx, cmd.OutOrStdout(), gen, dest, out, files)
			}

			if err := w.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			for {
				select {
				case <-ctx.Done():
					return nil
				case change, ok := <-w.Events():
					if !ok {
						return nil
					}
					m.IncrementWatchRuns()
					for _, path := range change.Removed {
						a.logger.Info("Statement file removed", "path", path)
					}
					if len(change.Modified) > 0 {
						a.processFiles(ctx, cmd.OutOrStdout(), gen, dest, out, change.Modified)
					}
				}
			}
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Statement file or glob to watch (repeatable)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	out.addFlags(cmd)

	return cmd
}

// processFiles runs one watch cycle. Failures are logged so the watch keeps
// going.
func (a *app) processFiles(ctx context.Context, w io.Writer, gen *pipeline.Generator, s sinks, out outputOptions, files []string) {
	stmts, err := source.ReadFiles(files)
	if err != nil {
		a.logger.Error("Failed to read statement files", "error", err)
		return
	}

	res, err := gen.Batch(ctx, source.Texts(stmts))
	if err != nil {
		a.logger.Warn("Batch cancelled", "error", err)
		return
	}
	if err := a.writeBatch(w, out, res); err != nil {
		a.logger.Error("Failed to write output", "error", err)
		return
	}
	if err := a.deliver(ctx, s, res.Results()); err != nil {
		a.logger.Error("Failed to deliver rules", "error", err)
	}

	a.logger.Info("Processed statement files",
		"files", len(files),
		"rules", len(res.Rules),
		"skipped", len(res.Failures))
}

func (a *app) serveMetrics(addr string, m metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("Serving metrics", "addr", addr)
	return srv
}
