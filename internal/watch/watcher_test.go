package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"skywatcher/internal/config"
	"skywatcher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns a canned result and records the query
type fakeFetcher struct {
	records []models.AircraftRecord
	err     error

	lat, lon, radius float64
	calls            int
}

func (f *fakeFetcher) FetchNearby(_ context.Context, lat, lon, radiusKm float64) ([]models.AircraftRecord, error) {
	f.calls++
	f.lat, f.lon, f.radius = lat, lon, radiusKm
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakeNotifier records bodies; errs are returned in order, one per call
type fakeNotifier struct {
	bodies []string
	errs   []error
}

func (n *fakeNotifier) Send(_ context.Context, body string) error {
	n.bodies = append(n.bodies, body)
	if len(n.errs) > 0 {
		err := n.errs[0]
		n.errs = n.errs[1:]
		return err
	}
	return nil
}

// fakeLookup serves reference aircraft from a map
type fakeLookup struct {
	aircraft map[string]*models.Aircraft
	err      error
}

func (l *fakeLookup) LookupByICAO(icao string) (*models.Aircraft, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.aircraft[icao], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Location: config.LocationConfig{Latitude: 53.4264, Longitude: -6.2499, RadiusKm: 25},
		Operator: config.OperatorConfig{Match: "ryanair", Name: "Ryanair"},
	}
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})), &buf
}

func logLines(buf *bytes.Buffer) []string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func countLines(lines []string, substr string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func TestRun_RyanairDetected(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.AircraftRecord{{
		Operator:     "Ryanair DAC",
		Callsign:     "FR123",
		Origin:       "DUB",
		Destination:  "STN",
		AircraftType: "B738",
		PosTime:      models.EpochMillis(time.Now().Add(-30 * time.Second)),
	}}}
	notifier := &fakeNotifier{}
	logger, buf := newTestLogger()

	report := New(testConfig(), fetcher, notifier, logger).Run(context.Background())

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 53.4264, fetcher.lat)
	assert.Equal(t, -6.2499, fetcher.lon)
	assert.Equal(t, 25.0, fetcher.radius)

	require.Len(t, notifier.bodies, 1)
	msg := notifier.bodies[0]
	for _, want := range []string{"FR123", "B738", "DUB", "STN"} {
		assert.Contains(t, msg, want)
	}

	seenIdx := strings.Index(msg, "Seen: ")
	require.GreaterOrEqual(t, seenIdx, 0)
	seenClock, err := time.Parse("15:04:05", strings.TrimSuffix(msg[seenIdx+len("Seen: "):], " UTC"))
	require.NoError(t, err)
	now := time.Now().UTC()
	expected := now.Add(-30 * time.Second)
	seen := time.Date(now.Year(), now.Month(), now.Day(), seenClock.Hour(), seenClock.Minute(), seenClock.Second(), 0, time.UTC)
	if seen.Sub(expected) > 12*time.Hour {
		seen = seen.Add(-24 * time.Hour) // run straddled midnight
	}
	assert.WithinDuration(t, expected, seen, 2*time.Second)

	lines := logLines(buf)
	assert.Equal(t, 1, countLines(lines, "Detected Ryanair flight"))
	assert.Equal(t, 0, countLines(lines, "level=ERROR"))

	assert.Equal(t, Report{Fetched: 1, Matched: 1, Sent: 1}, report)
}

func TestRun_NonMatchingOperator(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.AircraftRecord{{Operator: "Lufthansa", Callsign: "LH456"}}}
	notifier := &fakeNotifier{}
	logger, buf := newTestLogger()

	report := New(testConfig(), fetcher, notifier, logger).Run(context.Background())

	assert.Empty(t, notifier.bodies)
	assert.Equal(t, 0, countLines(logLines(buf), "Detected"))
	assert.Equal(t, 1, report.Fetched)
	assert.Equal(t, 0, report.Matched)
}

func TestRun_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("unexpected HTTP status: 500 Internal Server Error")}
	notifier := &fakeNotifier{}
	logger, buf := newTestLogger()

	report := New(testConfig(), fetcher, notifier, logger).Run(context.Background())

	assert.Empty(t, notifier.bodies)
	lines := logLines(buf)
	assert.Equal(t, 1, countLines(lines, "level=ERROR"))
	assert.Equal(t, 1, countLines(lines, "Error fetching aircraft data"))
	assert.Len(t, lines, 1)
	assert.Error(t, report.FetchErr)
	assert.Equal(t, 0, report.Fetched)
}

func TestRun_SendFailureDoesNotStopLaterMatches(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.AircraftRecord{
		{Operator: "Ryanair", Callsign: "FR1"},
		{Operator: "Ryanair", Callsign: "FR2"},
		{Operator: "Ryanair", Callsign: "FR3"},
	}}
	sendErr := errors.New("twilio: 401")
	notifier := &fakeNotifier{errs: []error{sendErr}}
	logger, buf := newTestLogger()

	report := New(testConfig(), fetcher, notifier, logger).Run(context.Background())

	require.Len(t, notifier.bodies, 3)
	assert.Contains(t, notifier.bodies[2], "FR3")

	lines := logLines(buf)
	assert.Equal(t, 1, countLines(lines, "Error sending WhatsApp message"))
	assert.Equal(t, 2, countLines(lines, "WhatsApp message sent successfully"))
	// A detection is logged whatever the notifier outcome
	assert.Equal(t, 3, countLines(lines, "Detected Ryanair flight"))

	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []error{sendErr}, report.SendErrs)
}

func TestRun_EmptyList(t *testing.T) {
	notifier := &fakeNotifier{}
	logger, buf := newTestLogger()

	report := New(testConfig(), &fakeFetcher{}, notifier, logger).Run(context.Background())

	assert.Empty(t, notifier.bodies)
	assert.Empty(t, logLines(buf))
	assert.Equal(t, Report{}, report)
}

func TestRun_EnrichesMissingType(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.AircraftRecord{
		{Operator: "Ryanair", Callsign: "FR1", ICAO: "4CA7B3"},
		{Operator: "Ryanair", Callsign: "FR2", ICAO: "4CA7B3", AircraftType: "A320"},
		{Operator: "Ryanair", Callsign: "FR3", ICAO: "000000"},
	}}
	lookup := &fakeLookup{aircraft: map[string]*models.Aircraft{
		"4CA7B3": {ICAO24: "4ca7b3", TypeCode: "B738", Registration: "EI-DCL"},
	}}
	notifier := &fakeNotifier{}
	logger, _ := newTestLogger()

	New(testConfig(), fetcher, notifier, logger, WithLookup(lookup)).Run(context.Background())

	require.Len(t, notifier.bodies, 3)
	assert.Contains(t, notifier.bodies[0], "Type: B738")
	assert.Contains(t, notifier.bodies[1], "Type: A320")
	assert.Contains(t, notifier.bodies[2], "Type: Unknown")
}

func TestRun_LookupErrorIsIgnored(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.AircraftRecord{{Operator: "Ryanair", ICAO: "4CA7B3"}}}
	notifier := &fakeNotifier{}
	logger, buf := newTestLogger()

	New(testConfig(), fetcher, notifier, logger, WithLookup(&fakeLookup{err: errors.New("db locked")})).
		Run(context.Background())

	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.bodies[0], "Type: Unknown")
	assert.Equal(t, 1, countLines(logLines(buf), "Aircraft reference lookup failed"))
}

func TestRun_CustomFormatter(t *testing.T) {
	fetcher := &fakeFetcher{records: []models.AircraftRecord{{Operator: "Ryanair"}}}
	notifier := &fakeNotifier{}
	logger, _ := newTestLogger()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	New(testConfig(), fetcher, notifier, logger,
		WithFormatter(&Formatter{OperatorName: "Ryanair", Now: fixedClock(now)})).
		Run(context.Background())

	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.bodies[0], "Seen: 03:04:05 UTC")
}
