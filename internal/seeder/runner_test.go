package seeder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/bulk"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/logging"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/sink"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/pkg/output"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestRunner(t *testing.T, users int, seed int64, path string) (*Runner, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Generator.Users = users
	cfg.Generator.Seed = seed
	cfg.Generator.Anchor = "2025-06-01T00:00:00Z"
	cfg.Sinks.File.Path = path

	var out bytes.Buffer
	r := NewRunner(cfg, logging.Discard(), output.NewPrinter(&out, &out))
	return r, &out
}

var totalLine = regexp.MustCompile(`Total events generated: (\d+)`)

func reportedTotal(t *testing.T, out string) int {
	t.Helper()
	m := totalLine.FindStringSubmatch(out)
	require.NotNil(t, m, "summary line missing from %q", out)
	n, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	return n
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
	}
	require.NoError(t, sc.Err())
	return n
}

func TestRun_ByteIdenticalForFixedSeed(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.ndjson")
	second := filepath.Join(dir, "second.ndjson")

	r1, _ := newTestRunner(t, 1, 42, first)
	_, err := r1.Run(context.Background())
	require.NoError(t, err)

	r2, _ := newTestRunner(t, 1, 42, second)
	_, err = r2.Run(context.Background())
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)

	other := filepath.Join(dir, "other.ndjson")
	r3, _ := newTestRunner(t, 1, 43, other)
	_, err = r3.Run(context.Background())
	require.NoError(t, err)
	c, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestRun_ThousandUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), sink.DefaultFilePath)
	r, out := newTestRunner(t, 1000, 42, path)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	total := reportedTotal(t, out.String())
	lines := countLines(t, path)
	assert.Equal(t, 0, lines%2)
	assert.Equal(t, lines/2, total)
	assert.GreaterOrEqual(t, total, 2*1000)
	assert.Equal(t, total, res.Stats.Events())
	assert.Len(t, res.Events, total)
	assert.Equal(t, map[string]int{sink.NameFile: total}, res.Delivered)
}

func TestRun_Summary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	r, out := newTestRunner(t, 3, 42, path)
	r.Config.Output.Preview = 4

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 1+2+4)
	assert.Equal(t, "Total events generated: "+strconv.Itoa(len(res.Events)), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "TIMESTAMP"))
	for i, ev := range res.Events[:4] {
		row := lines[3+i]
		assert.Contains(t, row, ev.Timestamp)
		assert.Contains(t, row, ev.User.Name)
		assert.Contains(t, row, ev.Event.Action)
	}
}

func TestRun_WritesMetricsFile(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRunner(t, 5, 42, filepath.Join(dir, "out.ndjson"))
	r.Config.Output.MetricsFile = filepath.Join(dir, "entraseed.prom")

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(r.Config.Output.MetricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "entraseed_users 5")
	assert.Contains(t, text, `entraseed_events_generated_total{action="tokenRefresh"} `+strconv.Itoa(res.Stats.Refreshes))
	assert.Contains(t, text, `entraseed_sink_documents_total{result="success",sink="file"} `+strconv.Itoa(len(res.Events)))
}

func TestRun_SeedZeroUsesClock(t *testing.T) {
	r, _ := newTestRunner(t, 1, 0, filepath.Join(t.TempDir(), "out.ndjson"))
	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	r.Now = func() time.Time { return now }
	r.Config.Generator.Anchor = ""

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.UnixNano(), res.Seed)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), res.Anchor)
}

func TestRun_InvalidConfig(t *testing.T) {
	r, out := newTestRunner(t, 0, 42, filepath.Join(t.TempDir(), "out.ndjson"))
	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Empty(t, out.String())
}

type recordingSink struct {
	name   string
	events []signin.Event
	err    error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ context.Context, events []signin.Event) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.events = append(s.events, events...)
	return len(events), nil
}

func (s *recordingSink) Close() error { return nil }

func TestRun_SinkFailureAborts(t *testing.T) {
	r, out := newTestRunner(t, 2, 42, filepath.Join(t.TempDir(), "unused.ndjson"))
	failing := &recordingSink{name: "opensearch", err: errors.New("connection refused")}
	after := &recordingSink{name: "nats"}
	r.Sinks = []sink.Sink{failing, after}

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opensearch sink: connection refused")
	assert.Empty(t, after.events, "sinks after a failure are skipped")
	assert.NotContains(t, out.String(), "Total events generated")
}

func TestPush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	r, _ := newTestRunner(t, 4, 42, path)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	pusher, _ := newTestRunner(t, 4, 42, path)
	rec := &recordingSink{name: "elasticsearch"}
	pusher.Sinks = []sink.Sink{rec}

	delivered, err := pusher.Push(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"elasticsearch": len(res.Events)}, delivered)
	assert.Equal(t, res.Events, rec.events)
}

func TestPush_NoNetworkSinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	r, _ := newTestRunner(t, 1, 42, path)
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	_, err = r.Push(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrNoSinks)
}

func TestPush_RejectsMalformedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ndjson")
	var buf bytes.Buffer
	require.NoError(t, bulk.Encode(&buf, "", []signin.Event{{Event: signin.EventMeta{ID: "not-a-uuid"}}}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, _ := newTestRunner(t, 1, 42, path)
	r.Sinks = []sink.Sink{&recordingSink{name: "hec"}}
	_, err := r.Push(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event.id")
}

func TestPush_MissingFile(t *testing.T) {
	r, _ := newTestRunner(t, 1, 42, "")
	_, err := r.Push(context.Background(), filepath.Join(t.TempDir(), "nope.ndjson"), []string{sink.NameHEC})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open bulk file")
}

func TestSinkNames(t *testing.T) {
	assert.Equal(t, []string{"file", "hec", "nats"}, SinkNames(map[string]int{"nats": 1, "file": 2, "hec": 3}))
}
