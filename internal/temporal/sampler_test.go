package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
)

var anchor = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestSample_StaysInWindowAndBands(t *testing.T) {
	s, err := NewSampler(anchor, DefaultWindowDays)
	require.NoError(t, err)
	src := random.New(42)

	for _, l := range geo.Catalog() {
		zone, err := l.Zone()
		require.NoError(t, err)
		localAnchor := anchor.In(zone)
		earliest := time.Date(localAnchor.Year(), localAnchor.Month(), localAnchor.Day(), 0, 0, 0, 0, zone).
			AddDate(0, 0, -DefaultWindowDays)
		latest := time.Date(localAnchor.Year(), localAnchor.Month(), localAnchor.Day(), 23, 59, 59, 0, zone)

		for i := 0; i < 300; i++ {
			ts, err := s.Sample(l, src)
			require.NoError(t, err)

			assert.Equal(t, zone.String(), ts.Location().String())
			assert.False(t, ts.Before(earliest), "%s before window start %s", ts, earliest)
			assert.False(t, ts.After(latest), "%s after anchor day %s", ts, latest)
			assert.Zero(t, ts.Nanosecond())

			if IsWeekend(ts.Weekday()) {
				assert.GreaterOrEqual(t, ts.Hour(), 9)
				assert.LessOrEqual(t, ts.Hour(), 16)
			} else {
				assert.GreaterOrEqual(t, ts.Hour(), 7)
				assert.LessOrEqual(t, ts.Hour(), 19)
			}
		}
	}
}

func TestSample_UTCConversionIsLossless(t *testing.T) {
	s, err := NewSampler(anchor, 30)
	require.NoError(t, err)
	l, _ := geo.Lookup("Sydney")

	ts, err := s.Sample(l, random.New(4))
	require.NoError(t, err)
	assert.True(t, ts.Equal(ts.UTC()))
	assert.True(t, ts.UTC().In(ts.Location()).Equal(ts))
}

func TestSample_ZeroWindowUsesAnchorDay(t *testing.T) {
	s, err := NewSampler(anchor, 0)
	require.NoError(t, err)
	l, _ := geo.Lookup("London")
	zone, _ := l.Zone()

	for i := 0; i < 50; i++ {
		ts, err := s.Sample(l, random.New(int64(i+1)))
		require.NoError(t, err)
		y, m, d := anchor.In(zone).Date()
		ty, tm, td := ts.Date()
		assert.Equal(t, []int{y, int(m), d}, []int{ty, int(tm), td})
	}
}

func TestSample_HourDistributionIsFlat(t *testing.T) {
	s, err := NewSampler(anchor, DefaultWindowDays)
	require.NoError(t, err)
	l, _ := geo.Lookup("Berlin")
	src := random.New(17)

	weekdayHours := map[int]int{}
	weekdays := 0
	for i := 0; i < 20000; i++ {
		ts, err := s.Sample(l, src)
		require.NoError(t, err)
		if !IsWeekend(ts.Weekday()) {
			weekdayHours[ts.Hour()]++
			weekdays++
		}
	}

	require.Len(t, weekdayHours, 13)
	for h, n := range weekdayHours {
		assert.InDelta(t, 1.0/13, float64(n)/float64(weekdays), 0.015, "hour %d", h)
	}
}

func TestHourBand_Table(t *testing.T) {
	tbl, err := WeekendBand.Table()
	require.NoError(t, err)
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16}, tbl.Values())
	assert.InDelta(t, 1.0/8, tbl.Probability(0), 1e-9)

	_, err = HourBand{First: 20, Last: 3, Weight: 1}.Table()
	assert.Error(t, err)
	_, err = HourBand{First: 0, Last: 24, Weight: 1}.Table()
	assert.Error(t, err)
}

func TestNewSampler_NegativeWindow(t *testing.T) {
	_, err := NewSampler(anchor, -1)
	assert.Error(t, err)
}

func TestDayAnchor(t *testing.T) {
	in := time.Date(2025, 3, 9, 22, 45, 1, 99, time.FixedZone("X", -5*3600))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DayAnchor(in))
}
