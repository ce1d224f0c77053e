package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PrivateRegistries(t *testing.T) {
	a := New()
	b := New()

	a.SessionsTotal.Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.SessionsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionsTotal))
}

func TestEventsTotal_ByAction(t *testing.T) {
	m := New()
	m.EventsTotal.WithLabelValues("Sign-in activity").Add(5)
	m.EventsTotal.WithLabelValues("tokenRefresh").Add(12)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("Sign-in activity")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("tokenRefresh")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.EventsTotal))
}

func TestObserveSink(t *testing.T) {
	m := New()
	m.ObserveSink("opensearch", 10, 8, 250*time.Millisecond)
	m.ObserveSink("file", 10, 10, time.Millisecond)

	assert.Equal(t, 8.0, testutil.ToFloat64(m.SinkDocumentsTotal.WithLabelValues("opensearch", ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SinkDocumentsTotal.WithLabelValues("opensearch", ResultFailure)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.SinkDocumentsTotal.WithLabelValues("file", ResultSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SinkDuration))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Users.Set(1000)
	m.AnomaliesTotal.Inc()

	path := filepath.Join(t.TempDir(), "entraseed.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "entraseed_users 1000")
	assert.Contains(t, text, "entraseed_anomalies_total 1")
	assert.True(t, strings.HasPrefix(text, "# HELP"))
}

func TestWriteTextfile_BadPath(t *testing.T) {
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	require.Error(t, err)
}
