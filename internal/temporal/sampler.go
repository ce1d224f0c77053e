// Package temporal picks plausible local sign-in times: mostly working hours
// on weekdays, a narrower and later band at weekends.
package temporal

import (
	"fmt"
	"time"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
)

// DefaultWindowDays is how far back from the anchor sign-ins are spread.
const DefaultWindowDays = 364

// HourBand declares a weight table for one kind of day.
type HourBand struct {
	First  int
	Last   int
	Weight float64
}

// Table expands the band into a weighted distribution over hours.
func (b HourBand) Table() (*random.Weighted[int], error) {
	if b.First < 0 || b.Last > 23 || b.First > b.Last {
		return nil, fmt.Errorf("invalid hour band %d-%d", b.First, b.Last)
	}
	hours := make([]int, 0, b.Last-b.First+1)
	weights := make([]float64, 0, cap(hours))
	for h := b.First; h <= b.Last; h++ {
		hours = append(hours, h)
		weights = append(weights, b.Weight)
	}
	return random.NewWeighted(hours, weights)
}

var (
	// WeekdayBand covers 07:00-19:59.
	WeekdayBand = HourBand{First: 7, Last: 19, Weight: 8}
	// WeekendBand covers 09:00-16:59 with lighter traffic.
	WeekendBand = HourBand{First: 9, Last: 16, Weight: 5}
)

// Sampler draws timestamps in a trailing window ending at Anchor.
type Sampler struct {
	Anchor     time.Time
	WindowDays int

	weekday *random.Weighted[int]
	weekend *random.Weighted[int]
}

// NewSampler builds a sampler with the default hour bands.
func NewSampler(anchor time.Time, windowDays int) (*Sampler, error) {
	return NewSamplerWithBands(anchor, windowDays, WeekdayBand, WeekendBand)
}

// NewSamplerWithBands builds a sampler with custom hour bands.
func NewSamplerWithBands(anchor time.Time, windowDays int, weekday, weekend HourBand) (*Sampler, error) {
	if windowDays < 0 {
		return nil, fmt.Errorf("window must not be negative, got %d days", windowDays)
	}
	wd, err := weekday.Table()
	if err != nil {
		return nil, fmt.Errorf("weekday band: %w", err)
	}
	we, err := weekend.Table()
	if err != nil {
		return nil, fmt.Errorf("weekend band: %w", err)
	}
	return &Sampler{Anchor: anchor, WindowDays: windowDays, weekday: wd, weekend: we}, nil
}

// Sample returns a time in l's timezone, on a day in [anchor-WindowDays, anchor].
func (s *Sampler) Sample(l *geo.Location, src *random.Source) (time.Time, error) {
	zone, err := l.Zone()
	if err != nil {
		return time.Time{}, fmt.Errorf("location %s: %w", l.Name, err)
	}

	day := s.Anchor.In(zone).AddDate(0, 0, -src.IntRange(0, s.WindowDays))

	var hour int
	if IsWeekend(day.Weekday()) {
		hour = s.weekend.Draw(src)
	} else {
		hour = s.weekday.Draw(src)
	}
	minute := src.IntRange(0, 59)
	second := src.IntRange(0, 59)

	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, second, 0, zone), nil
}

// IsWeekend reports whether d is Saturday or Sunday.
func IsWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// DayAnchor truncates t to midnight UTC. Two runs anchored on the same day
// and seed produce identical timestamps.
func DayAnchor(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
