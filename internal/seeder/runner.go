package seeder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/bulk"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/logging"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/metrics"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/population"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/sink"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/temporal"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/pkg/output"
)

// ErrNoSinks is returned when a run has nowhere to send events.
var ErrNoSinks = errors.New("no sinks enabled")

// Runner handles the event seeding execution
type Runner struct {
	Config  *Config
	Logger  *logging.Logger
	Out     *output.Printer
	Metrics *metrics.Metrics

	// Now supplies the clock used for the default anchor and random seeds.
	Now func() time.Time
	// Sinks, when set, replaces the sinks built from Config.Sinks.
	Sinks []sink.Sink
}

// Result describes a completed run.
type Result struct {
	RunID  string
	Seed   int64
	Anchor time.Time
	Stats  Stats
	Events []signin.Event
	// Delivered maps sink name to accepted documents.
	Delivered map[string]int
}

// NewRunner creates a new seeder runner
func NewRunner(config *Config, logger *logging.Logger, out *output.Printer) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	if out == nil {
		out = output.NewPrinter(nil, nil)
	}
	return &Runner{
		Config:  config,
		Logger:  logger,
		Out:     out,
		Metrics: metrics.New(),
		Now:     time.Now,
	}
}

// Run generates the dataset, delivers it to every enabled sink and prints
// the summary.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	catalog := geo.Catalog()
	if err := geo.Validate(catalog); err != nil {
		return nil, fmt.Errorf("geo catalog: %w", err)
	}

	res := &Result{RunID: uuid.NewString()}
	ctx = logging.ContextWithRunID(ctx, res.RunID)
	gc := r.Config.Generator

	res.Seed = gc.Seed
	if res.Seed == 0 {
		res.Seed = r.Now().UnixNano()
	}
	anchor, err := r.Config.ResolveAnchor(r.Now())
	if err != nil {
		return nil, err
	}
	res.Anchor = anchor

	r.Logger.InfoContext(ctx, "starting generation",
		logging.Seed(res.Seed),
		logging.Users(gc.Users),
		logging.Anchor(anchor),
		"window_days", gc.WindowDays,
	)

	started := r.Now()
	src := random.New(res.Seed)

	users, err := population.Generate(gc.Users, catalog, src)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	sampler, err := temporal.NewSampler(anchor, gc.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("temporal sampler: %w", err)
	}
	synth := signin.NewSynthesizer(src)
	synth.MFARate = gc.MFARate

	gen := &Generator{
		Catalog:     catalog,
		Sampler:     sampler,
		Synth:       synth,
		Src:         src,
		HomeRate:    gc.HomeRate,
		AnomalyRate: gc.AnomalyRate,
		Shape:       gc.Shape(),
	}
	res.Events, res.Stats, err = gen.Generate(users)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	elapsed := r.Now().Sub(started)
	r.recordGeneration(res.Stats, elapsed)

	r.Logger.InfoContext(ctx, "generation complete",
		logging.Events(len(res.Events)),
		"sessions", res.Stats.Sessions,
		"anomalies", res.Stats.Anomalies,
		logging.Duration(elapsed),
	)

	sinks, err := r.sinks(r.Config.Sinks.Enabled)
	if err != nil {
		return nil, err
	}
	defer r.closeSinks(ctx, sinks)

	res.Delivered, err = r.deliver(ctx, sinks, res.Events)
	if err != nil {
		return res, err
	}

	r.summary(res.Events)

	r.Metrics.LastSuccess.Set(float64(r.Now().Unix()))
	if err := r.writeMetrics(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Push reads a bulk file and sends its events to the named sinks. With no
// names, every enabled sink except the file sink is used.
func (r *Runner) Push(ctx context.Context, path string, names []string) (map[string]int, error) {
	ctx = logging.ContextWithRunID(ctx, uuid.NewString())

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bulk file: %w", err)
	}
	defer f.Close()

	events, err := bulk.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for i := range events {
		if err := uuid.Validate(events[i].Event.ID); err != nil {
			return nil, fmt.Errorf("read %s: document %d: event.id: %w", path, i+1, err)
		}
	}
	r.Logger.InfoContext(ctx, "loaded bulk file", logging.Path(path), logging.Events(len(events)))

	if len(names) == 0 {
		for _, name := range r.Config.Sinks.Enabled {
			if name != sink.NameFile {
				names = append(names, name)
			}
		}
	}
	sinks, err := r.sinks(names)
	if err != nil {
		return nil, err
	}
	defer r.closeSinks(ctx, sinks)

	delivered, err := r.deliver(ctx, sinks, events)
	if err != nil {
		return delivered, err
	}
	if err := r.writeMetrics(ctx); err != nil {
		return delivered, err
	}
	return delivered, nil
}

func (r *Runner) sinks(names []string) ([]sink.Sink, error) {
	if r.Sinks != nil {
		return r.Sinks, nil
	}
	if len(names) == 0 {
		return nil, ErrNoSinks
	}
	cfg := r.Config.Sinks
	cfg.Enabled = names
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sinks: %w", err)
	}
	sinks, err := sink.Build(cfg, names)
	if err != nil {
		return nil, err
	}
	return sinks, nil
}

func (r *Runner) closeSinks(ctx context.Context, sinks []sink.Sink) {
	if r.Sinks != nil {
		return
	}
	if err := sink.CloseAll(sinks); err != nil {
		r.Logger.WarnContext(ctx, "failed to close sinks", logging.Error(err))
	}
}

// deliver writes events to each sink in order. The first failure aborts.
func (r *Runner) deliver(ctx context.Context, sinks []sink.Sink, events []signin.Event) (map[string]int, error) {
	delivered := make(map[string]int, len(sinks))
	for _, s := range sinks {
		start := r.Now()
		n, err := s.Write(ctx, events)
		r.Metrics.ObserveSink(s.Name(), len(events), n, r.Now().Sub(start))
		delivered[s.Name()] = n

		attrs := []any{logging.Sink(s.Name()), logging.Events(n)}
		if fs, ok := s.(*sink.FileSink); ok {
			attrs = append(attrs, logging.Path(fs.Path()))
		}
		if err != nil {
			r.Logger.ErrorContext(ctx, "sink write failed", append(attrs, logging.Error(err))...)
			return delivered, fmt.Errorf("%s sink: %w", s.Name(), err)
		}
		r.Logger.InfoContext(ctx, "sink write complete", attrs...)
	}
	return delivered, nil
}

func (r *Runner) recordGeneration(stats Stats, elapsed time.Duration) {
	m := r.Metrics
	m.Users.Set(float64(stats.Users))
	m.SessionsTotal.Add(float64(stats.Sessions))
	m.TravelSessionsTotal.Add(float64(stats.Travel))
	m.AnomaliesTotal.Add(float64(stats.Anomalies))
	m.EventsTotal.WithLabelValues(signin.ActionSignIn).Add(float64(stats.Logins + stats.Anomalies))
	m.EventsTotal.WithLabelValues(signin.ActionTokenRefresh).Add(float64(stats.Refreshes))
	m.GenerationDuration.Set(elapsed.Seconds())
}

func (r *Runner) writeMetrics(ctx context.Context) error {
	path := r.Config.Output.MetricsFile
	if path == "" {
		return nil
	}
	if err := r.Metrics.WriteTextfile(path); err != nil {
		return err
	}
	r.Logger.DebugContext(ctx, "wrote metrics textfile", logging.Path(path))
	return nil
}

// summary prints the event total and a preview of the first events.
func (r *Runner) summary(events []signin.Event) {
	r.Out.Info("Total events generated: %d", len(events))

	n := min(r.Config.Output.Preview, len(events))
	if n == 0 {
		return
	}
	table := output.NewTable([]string{"TIMESTAMP", "USER", "CITY", "ACTION"})
	for _, ev := range events[:n] {
		table.AddRow([]string{ev.Timestamp, ev.User.Name, ev.Geo.CityName, ev.Event.Action})
	}
	table.RenderTo(r.Out.Out)
}

// SinkNames returns the names in delivered, sorted.
func SinkNames(delivered map[string]int) []string {
	names := make([]string, 0, len(delivered))
	for name := range delivered {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
