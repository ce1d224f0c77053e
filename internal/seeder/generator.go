package seeder

import (
	"fmt"
	"time"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/population"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/temporal"
)

// SessionShape controls how many sessions a user has and what each looks like.
type SessionShape struct {
	// Sessions per user are Poisson(SessionMean)+1.
	SessionMean float64
	MinRefresh  int
	MaxRefresh  int
	// Refresh offsets are whole minutes in [MinRefreshGap, MaxRefreshGap].
	MinRefreshGap time.Duration
	MaxRefreshGap time.Duration
	AnomalyOffset time.Duration
}

// DefaultSessionShape matches the reference dataset.
var DefaultSessionShape = SessionShape{
	SessionMean:   5,
	MinRefresh:    1,
	MaxRefresh:    6,
	MinRefreshGap: 5 * time.Minute,
	MaxRefreshGap: 120 * time.Minute,
	AnomalyOffset: 2 * time.Minute,
}

// Default gate probabilities.
const (
	DefaultHomeRate    = 0.90
	DefaultAnomalyRate = 0.03
)

// Stats summarizes one generation run.
type Stats struct {
	Users     int
	Sessions  int
	Logins    int
	Refreshes int
	Anomalies int
	Travel    int
}

// Events returns the total number of events.
func (s Stats) Events() int {
	return s.Logins + s.Refreshes + s.Anomalies
}

// Generator turns users into sessions of sign-in events.
type Generator struct {
	Catalog []*geo.Location
	Sampler *temporal.Sampler
	Synth   *signin.Synthesizer
	Src     *random.Source

	HomeRate    float64
	AnomalyRate float64
	Shape       SessionShape
}

// Generate emits every user's events in user order.
func (g *Generator) Generate(users []population.User) ([]signin.Event, Stats, error) {
	var stats Stats
	events := make([]signin.Event, 0, len(users)*int(g.Shape.SessionMean+1)*5)
	for i := range users {
		var err error
		events, err = g.GenerateUser(&users[i], events, &stats)
		if err != nil {
			return nil, stats, err
		}
	}
	return events, stats, nil
}

// GenerateUser appends one user's sessions to events.
func (g *Generator) GenerateUser(u *population.User, events []signin.Event, stats *Stats) ([]signin.Event, error) {
	stats.Users++
	sessions := g.Src.Poisson(g.Shape.SessionMean) + 1
	for i := 0; i < sessions; i++ {
		var err error
		events, err = g.session(u, events, stats)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Handle, err)
		}
	}
	return events, nil
}

func (g *Generator) session(u *population.User, events []signin.Event, stats *Stats) ([]signin.Event, error) {
	loc := g.pickLocation(u)
	if !u.IsHome(loc) {
		stats.Travel++
	}

	base, err := g.Sampler.Sample(loc, g.Src)
	if err != nil {
		return nil, err
	}
	ip, err := geo.RandomLocationHost(loc, g.Src)
	if err != nil {
		return nil, err
	}
	sessionID := g.Src.UUID()

	stats.Sessions++
	stats.Logins++
	events = append(events, g.Synth.Build(signin.Params{
		User:      u,
		Location:  loc,
		Time:      base,
		IP:        ip,
		SessionID: sessionID,
	}))

	refreshes := g.Src.IntRange(g.Shape.MinRefresh, g.Shape.MaxRefresh)
	for i := 0; i < refreshes; i++ {
		stats.Refreshes++
		events = append(events, g.Synth.Build(signin.Params{
			User:      u,
			Location:  loc,
			Time:      base.Add(g.refreshGap()),
			IP:        ip,
			SessionID: sessionID,
			Refresh:   true,
		}))
	}

	if g.anomalous() {
		ev, err := g.anomaly(u, loc, base)
		if err != nil {
			return nil, err
		}
		stats.Anomalies++
		events = append(events, ev)
	}
	return events, nil
}

// pickLocation applies the home gate: usually a home location, otherwise
// any catalog location (ordinary travel).
func (g *Generator) pickLocation(u *population.User) *geo.Location {
	if len(u.Homes) > 0 && g.Src.Chance(g.HomeRate) {
		return u.Homes[g.Src.Pick(len(u.Homes))]
	}
	return g.Catalog[g.Src.Pick(len(g.Catalog))]
}

// anomalous applies the impossible-travel gate.
func (g *Generator) anomalous() bool {
	return g.Src.Chance(g.AnomalyRate)
}

func (g *Generator) refreshGap() time.Duration {
	lo := int(g.Shape.MinRefreshGap / time.Minute)
	hi := int(g.Shape.MaxRefreshGap / time.Minute)
	return time.Duration(g.Src.IntRange(lo, hi)) * time.Minute
}

// anomaly builds a login from a different location shortly after base, with
// a new address and an unrelated session id.
func (g *Generator) anomaly(u *population.User, from *geo.Location, base time.Time) (signin.Event, error) {
	far := g.elsewhere(from)
	if far == nil {
		return signin.Event{}, fmt.Errorf("no location other than %s for anomalous login", from.Name)
	}
	ip, err := geo.RandomLocationHost(far, g.Src)
	if err != nil {
		return signin.Event{}, err
	}
	return g.Synth.Build(signin.Params{
		User:      u,
		Location:  far,
		Time:      base.Add(g.Shape.AnomalyOffset),
		IP:        ip,
		Anomalous: true,
		SessionID: g.Src.UUID(),
	}), nil
}

func (g *Generator) elsewhere(from *geo.Location) *geo.Location {
	others := make([]*geo.Location, 0, max(len(g.Catalog)-1, 0))
	for _, l := range g.Catalog {
		if l != from {
			others = append(others, l)
		}
	}
	if len(others) == 0 {
		return nil
	}
	return others[g.Src.Pick(len(others))]
}
