package twfy

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pmqwatch/lib/restyutil"
	"pmqwatch/lib/timezone"

	"github.com/stretchr/testify/require"
)

func testCandidate() Candidate {
	return Candidate{Date: timezone.Date(2025, time.January, 29), Edition: "a"}
}

func TestMinRequestIntervalSpacing(t *testing.T) {
	var mu sync.Mutex
	var hits []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, time.Now())
		mu.Unlock()
		w.Write([]byte(`<publicwhip latest="yes"></publicwhip>`))
	}))
	defer server.Close()

	const interval = 50 * time.Millisecond
	client, err := NewClient(ClientOptions{
		BaseUrl:            server.URL,
		MinRequestInterval: interval,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.FetchDebateXML(ctx, testCandidate())
	require.NoError(t, err)
	_, err = client.FetchDebateXML(ctx, testCandidate())
	require.NoError(t, err)

	require.Len(t, hits, 2)
	// the gate spaces request starts, allow a little scheduling slack
	require.GreaterOrEqual(t, hits[1].Sub(hits[0]), interval-10*time.Millisecond)
}

func TestZeroIntervalDoesNotGate(t *testing.T) {
	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	client.waitTurn()
	client.waitTurn()
	// a disabled gate never records a request time
	require.True(t, client.lastRequest.IsZero())
}

func TestFetchDebateXMLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	_, err = client.FetchDebateXML(context.Background(), testCandidate())
	require.ErrorIs(t, err, ErrDebateNotFound)
}

func TestClientInstrumentOutput(t *testing.T) {
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() {
		slog.SetDefault(prev)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<publicwhip latest="yes"></publicwhip>`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "resty_telemetry")
	client, err := NewClient(ClientOptions{
		BaseUrl:          server.URL,
		InstrumentOutput: restyutil.NewFilesystemOutput(dir),
	})
	require.NoError(t, err)

	_, err = client.FetchDebateXML(context.Background(), testCandidate())
	require.NoError(t, err)

	// the configured output received a full message dump
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
