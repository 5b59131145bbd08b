package observability

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordOutcome("migrated")
	m.RecordOutcome("migrated")
	m.RecordOutcome("skipped")
	m.AssetUploaded()
	m.ObserveRun(3 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Records.WithLabelValues("migrated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues("skipped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Records.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssetsUploaded))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordOutcome("failed")
		m.AssetUploaded()
		m.ObserveRun(time.Second)
	})
	assert.Error(t, m.Push("http://localhost:9091"))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordOutcome("failed")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `migration_records_total{outcome="failed"} 1`)
}

func TestPushSendsToGateway(t *testing.T) {
	paths := make(chan string, 1)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := NewMetrics()
	m.AssetUploaded()

	require.NoError(t, m.Push(gateway.URL))
	assert.Equal(t, "/metrics/job/"+pushJob, <-paths)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartServesMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())

	logs := &lockedBuffer{}
	srv := NewMetrics().Start(port, zerolog.New(logs))
	defer srv.Shutdown(context.Background())

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Empty(t, logs.String())
}

func TestStartLogsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	logs := &lockedBuffer{}
	NewMetrics().Start(port, zerolog.New(logs))

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "metrics server stopped")
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, logs.String(), `"port":"`+port+`"`)
}
