package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"labsync/internal/credentials"
	"labsync/internal/domain"
	"labsync/internal/driver"
	"labsync/internal/logger"
)

// ErrUnreachable is recorded for devices that failed the preflight probe
var ErrUnreachable = errors.New("device unreachable")

// Prober reports which hosts accept connections on the transport port
type Prober interface {
	Reachable(ctx context.Context, hosts []string) (map[string]bool, error)
}

// Observer receives device and run outcomes as they complete
type Observer interface {
	ObserveDevice(o DeviceOutcome)
	ObserveRun(r *Report)
}

// RunnerConfig controls a batch run
type RunnerConfig struct {
	Driver        string
	DriverOptions driver.Options
	Workers       int
	CollectConfig bool
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithPreflight skips devices the prober reports unreachable
func WithPreflight(p Prober) RunnerOption {
	return func(r *Runner) {
		r.preflight = p
	}
}

// WithObserver registers an outcome observer
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithCollectorFactory replaces collector.New
func WithCollectorFactory(f CollectorFactory) RunnerOption {
	return func(r *Runner) {
		r.newCollector = f
	}
}

// Runner collects and reconciles every device of a site. A device failure
// is recorded in the report and never stops the batch. A Runner without a
// Reconciler only collects.
type Runner struct {
	rec          *Reconciler
	creds        credentials.Provider
	cfg          RunnerConfig
	log          logger.Logger
	preflight    Prober
	observer     Observer
	newCollector CollectorFactory

	// inventory writes are serialized across workers
	mu sync.Mutex
}

// NewRunner creates a batch runner
func NewRunner(rec *Reconciler, creds credentials.Provider, cfg RunnerConfig, log logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		rec:   rec,
		creds: creds,
		cfg:   cfg,
		log:   log.WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles the site, then collects and reconciles each device.
// Outcomes are reported in site order regardless of worker count.
func (r *Runner) Run(ctx context.Context, site *domain.Site) *Report {
	report := newReport(site.Name, r.cfg.Driver)

	r.log.Info().
		Str("run_id", report.RunID.String()).
		Str("site", site.Name).
		Int("devices", site.Len()).
		Str("driver", r.cfg.Driver).
		Msg("Starting run")

	if r.rec == nil {
		report.SiteAction = ActionSkipped
	} else if _, action, err := r.rec.ReconcileSite(ctx, site); err != nil {
		r.log.Error().Err(err).Str("site", site.Name).Msg("Site reconciliation failed")
		report.SiteAction = ActionFailed
		report.SiteError = err.Error()
	} else {
		report.SiteAction = action
	}

	devices := site.Devices()
	reachable := r.probe(ctx, devices)

	outcomes := make([]DeviceOutcome, len(devices))
	if r.cfg.Workers <= 1 {
		for i, d := range devices {
			outcomes[i] = r.device(ctx, d, reachable)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Workers)
		for i, d := range devices {
			i, d := i, d
			g.Go(func() error {
				outcomes[i] = r.device(gctx, d, reachable)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.Outcomes = outcomes
	report.finish()

	if r.observer != nil {
		r.observer.ObserveRun(report)
	}

	r.log.Info().
		Str("run_id", report.RunID.String()).
		Int("created", report.Summary.Created).
		Int("updated", report.Summary.Updated).
		Int("unchanged", report.Summary.Unchanged).
		Int("failed", report.Summary.Failed).
		Int("skipped", report.Summary.Skipped).
		Int("collected", report.Summary.Collected).
		Dur("duration", report.Duration()).
		Msg("Run complete")

	return report
}

// probe returns nil when no prober is set or the probe itself fails,
// in which case every device is attempted
func (r *Runner) probe(ctx context.Context, devices []*domain.Device) map[string]bool {
	if r.preflight == nil {
		return nil
	}

	var hosts []string
	for _, d := range devices {
		if h := managementHost(d.MgmtIP); h != "" {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		return nil
	}

	reachable, err := r.preflight.Reachable(ctx, hosts)
	if err != nil {
		r.log.Warn().Err(err).Msg("Preflight probe failed, attempting all devices")
		return nil
	}
	return reachable
}

func (r *Runner) device(ctx context.Context, d *domain.Device, reachable map[string]bool) DeviceOutcome {
	start := time.Now()
	out := DeviceOutcome{Device: d.Name, Host: managementHost(d.MgmtIP)}

	r.process(ctx, d, reachable, &out)
	out.Duration = time.Since(start)

	ev := r.log.Info()
	if out.Action == ActionFailed {
		ev = r.log.Error().Err(out.Err).Str("stage", string(out.Stage))
	} else if out.Action == ActionSkipped {
		ev = r.log.Warn().Err(out.Err)
	}
	ev.Str("device", d.Name).
		Str("action", string(out.Action)).
		Bool("facts", out.FactsCollected).
		Dur("duration", out.Duration).
		Msg("Device processed")

	if r.observer != nil {
		r.observer.ObserveDevice(out)
	}
	return out
}

func (r *Runner) process(ctx context.Context, d *domain.Device, reachable map[string]bool, out *DeviceOutcome) {
	if out.Host == "" {
		out.skip(StageAddress, ErrNoManagementAddress)
		return
	}
	if reachable != nil && !reachable[out.Host] {
		out.skip(StagePreflight, fmt.Errorf("%s: %w", out.Host, ErrUnreachable))
		return
	}

	creds, err := r.lookupCredentials(d)
	if err != nil {
		out.fail(StageCredentials, err)
		return
	}

	collected, err := CollectDevice(ctx, d, creds, CollectOptions{
		Driver:        r.cfg.Driver,
		DriverOptions: r.cfg.DriverOptions,
		WithConfig:    r.cfg.CollectConfig,
		NewCollector:  r.newCollector,
	})
	if err != nil {
		out.fail(StageCollect, err)
		return
	}

	if collected.Facts.OK() {
		out.FactsCollected = true
	} else {
		out.warn(collected.Facts.Err)
	}
	if !collected.Interfaces.OK() {
		out.warn(collected.Interfaces.Err)
	}
	if r.cfg.CollectConfig {
		if collected.Config.OK() {
			d.Config = collected.Config.Value
		} else {
			out.warn(collected.Config.Err)
		}
	}

	if err := ApplyFacts(d, collected.Facts.Value, collected.Interfaces.Value); err != nil {
		out.warn(err)
	}

	if r.rec == nil {
		out.Action = ActionCollected
		out.Stage = StageDone
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rec.ResolveReferences(ctx, d); err != nil {
		out.warn(err)
	}

	_, action, err := r.rec.ReconcileDevice(ctx, d)
	if err != nil {
		out.fail(StageReconcile, err)
		return
	}
	out.Action = action

	counts, err := r.rec.ReconcileInterfaces(ctx, d)
	out.Interfaces = counts
	if err != nil {
		out.Stage = StageInterfaces
		out.warn(err)
		return
	}
	out.Stage = StageDone
}

// lookupCredentials prefers credentials attached to the device
func (r *Runner) lookupCredentials(d *domain.Device) (domain.Credentials, error) {
	if d.Credentials.Valid() {
		return *d.Credentials, nil
	}
	if r.creds == nil {
		return domain.Credentials{}, fmt.Errorf("%w for %s", credentials.ErrNoCredentials, d.Name)
	}
	return r.creds.Lookup(d.Name)
}
