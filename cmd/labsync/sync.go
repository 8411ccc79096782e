package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"labsync/internal/credentials"
	"labsync/internal/inventory"
	"labsync/internal/metrics"
	"labsync/internal/service"
	"labsync/internal/watcher"
)

var (
	syncRunningConfig bool
	syncProgress      bool
	syncSkipPing      bool
	syncWatch         bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [file]",
	Short: "Collect facts and reconcile the lab into the inventory",
	Long: `Reconcile the topology's site, then collect facts from each device and
create or update it and its interfaces in the inventory. One failing device
never stops the batch; the run report lists every outcome.

With --watch the sync runs again each time the topology file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		creds, err := buildCredentials()
		if err != nil {
			return err
		}

		client, err := inventory.New(inventory.Config{
			URL:                cfg.Inventory.URL,
			Token:              cfg.Inventory.Token,
			InsecureSkipVerify: cfg.Inventory.InsecureSkipVerify,
			Timeout:            cfg.Inventory.Timeout.Duration(),
		}, inventory.WithLogger(log.WithComponent("inventory")))
		if err != nil {
			return err
		}
		defer client.Close()

		if !syncSkipPing {
			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("inventory not reachable at %s: %w", cfg.Inventory.URL, err)
			}
		}

		s := &syncer{
			rec:      service.NewReconciler(client, log),
			creds:    creds,
			out:      cmd.OutOrStdout(),
			progress: cmd.ErrOrStderr(),
		}

		if !syncWatch {
			report, err := s.run(ctx, args)
			if err != nil {
				return err
			}
			if strict && report.Failed() {
				return fmt.Errorf("run %s: %d of %d devices failed", report.RunID, report.Summary.Failed, report.Summary.Total)
			}
			return nil
		}

		path, err := topologyPath(args)
		if err != nil {
			return err
		}
		if _, err := s.run(ctx, args); err != nil {
			log.Error().Err(err).Msg("Sync failed")
		}

		err = watcher.New(log, path).Watch(ctx, func(string) {
			if _, err := s.run(ctx, args); err != nil {
				log.Error().Err(err).Msg("Sync failed")
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// syncer runs one reconcile pass per call against a shared inventory client
type syncer struct {
	rec      *service.Reconciler
	creds    credentials.Provider
	out      io.Writer
	progress io.Writer
}

func (s *syncer) run(ctx context.Context, args []string) (*service.Report, error) {
	site, err := loadSite(args)
	if err != nil {
		return nil, err
	}

	var observers service.Observers

	var recorder *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		recorder = metrics.NewRecorder()
		observers = append(observers, recorder)
	}

	var wg sync.WaitGroup
	var events chan service.Event
	if syncProgress {
		bus := service.NewEventBus()
		events = make(chan service.Event, 64)
		bus.Subscribe(events)
		observers = append(observers, bus)

		wg.Add(1)
		go func() {
			defer wg.Done()
			printProgress(s.progress, events)
		}()
	}

	opts := []service.RunnerOption{service.WithObserver(observers)}
	if prober := buildPreflight(ctx); prober != nil {
		opts = append(opts, service.WithPreflight(prober))
	}

	runner := service.NewRunner(s.rec, s.creds, runnerConfig(syncRunningConfig), log, opts...)
	report := runner.Run(ctx, site)

	if events != nil {
		close(events)
		wg.Wait()
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics textfile")
		}
	}

	return report, export(s.out, report, "json")
}

// printProgress writes one line per event until the channel is closed
func printProgress(w io.Writer, events <-chan service.Event) {
	for ev := range events {
		switch p := ev.Payload.(type) {
		case service.DeviceOutcome:
			line := fmt.Sprintf("%-20s %-10s %s", p.Device, p.Action, p.Stage)
			if p.Error != "" {
				line += "  " + p.Error
			}
			fmt.Fprintln(w, line)
		case *service.Report:
			sum := p.Summary
			fmt.Fprintf(w, "site %s: %d created, %d updated, %d unchanged, %d failed, %d skipped in %s\n",
				p.Site, sum.Created, sum.Updated, sum.Unchanged, sum.Failed, sum.Skipped, p.Duration().Round(time.Millisecond))
		}
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncRunningConfig, "running-config", false, "also retrieve the running configuration")
	syncCmd.Flags().BoolVar(&syncProgress, "progress", false, "print per-device progress to stderr")
	syncCmd.Flags().BoolVar(&syncSkipPing, "skip-ping", false, "do not check the inventory API before the run")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "run again whenever the topology file changes")
	rootCmd.AddCommand(syncCmd)
}
