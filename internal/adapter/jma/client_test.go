package jma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/quakewatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
	fetchFailureMsg   = "Failed to fetch or parse earthquake data"
)

// --- recording reporter ---

type report struct {
	msg  string
	args []any
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []report
}

func (r *recordingReporter) Report(msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{msg: msg, args: args})
}

func (r *recordingReporter) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.reports))
	for i, rep := range r.reports {
		out[i] = rep.msg
	}
	return out
}

// --- helpers ---

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(url string, rep domain.Reporter) *Client {
	return NewClient(5*time.Second, rep, WithFeedURL(url))
}

// --- tests ---

func TestClient_Fetch_KeepsOnlyHypocenterRecords(t *testing.T) {
	body := `[
		{"ttl":"震源・震度情報","cod":"+34.8+139.3-10000/","eid":"20261018115500","at":"2026-10-18T11:55:00+09:00","anm":"伊豆半島東方沖","mag":"3.2","maxi":"2"},
		{"ttl":"震度速報","cod":"","eid":"20261018115400"}
	]`
	srv := feedServer(t, http.StatusOK, body)
	rep := &recordingReporter{}

	got := testClient(srv.URL, rep).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, 34.8, got[0].Latitude)
	assert.Equal(t, 139.3, got[0].Longitude)
	assert.InDelta(t, 10.0, got[0].Depth, 1e-9)
	assert.Equal(t, "20261018115500", got[0].EventID)
	assert.Equal(t, "伊豆半島東方沖", got[0].Area)
	assert.Empty(t, rep.messages(), "other kinds are skipped silently")
}

func TestClient_Fetch_MaxDepth(t *testing.T) {
	body := `[
		{"ttl":"震源・震度情報","cod":"+36.1+140.7-30000/"},
		{"ttl":"震源・震度情報","cod":"+34.8+139.3-10000/"}
	]`
	srv := feedServer(t, http.StatusOK, body)
	c := testClient(srv.URL, &recordingReporter{})

	t.Run("filtered", func(t *testing.T) {
		got := c.Fetch(context.Background(), WithMaxDepth(15))
		require.Len(t, got, 1)
		assert.InDelta(t, 10.0, got[0].Depth, 1e-9)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		got := c.Fetch(context.Background(), WithMaxDepth(10))
		require.Len(t, got, 1)
	})

	t.Run("unfiltered keeps feed order", func(t *testing.T) {
		got := c.Fetch(context.Background())
		require.Len(t, got, 2)
		assert.InDelta(t, 30.0, got[0].Depth, 1e-9)
		assert.InDelta(t, 10.0, got[1].Depth, 1e-9)
	})
}

func TestClient_Fetch_DropsUnparseableRecords(t *testing.T) {
	body := `[
		{"ttl":"震源・震度情報","cod":"invalid"},
		{"ttl":"震源・震度情報","cod":"+36.1+140.7/"},
		{"ttl":"震源・震度情報","cod":"+34.8+139.3-10000/"}
	]`
	srv := feedServer(t, http.StatusOK, body)
	rep := &recordingReporter{}

	got := testClient(srv.URL, rep).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, 34.8, got[0].Latitude)
	assert.Equal(t, []string{"Invalid coordinate string format", "Failed to parse coordinates"}, rep.messages())
}

func TestClient_Fetch_StatusError(t *testing.T) {
	srv := feedServer(t, http.StatusServiceUnavailable, `maintenance`)
	rep := &recordingReporter{}

	got := testClient(srv.URL, rep).Fetch(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Equal(t, []string{fetchFailureMsg}, rep.messages())

	var statusErr *StatusError
	var found bool
	for _, a := range rep.reports[0].args {
		if err, ok := a.(error); ok && errors.As(err, &statusErr) {
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "maintenance", statusErr.Body)
}

func TestClient_Fetch_DecodeError(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"not":"an array"`)
	rep := &recordingReporter{}

	got := testClient(srv.URL, rep).Fetch(context.Background())

	assert.Empty(t, got)
	assert.Equal(t, []string{fetchFailureMsg}, rep.messages())
}

func TestClient_Fetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()
	rep := &recordingReporter{}

	got := testClient(url, rep).Fetch(context.Background())

	assert.Empty(t, got)
	assert.Equal(t, []string{fetchFailureMsg}, rep.messages())
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	rep := &recordingReporter{}

	c := NewClient(50*time.Millisecond, rep, WithFeedURL(srv.URL))
	got := c.Fetch(context.Background())

	assert.Empty(t, got)
	assert.Equal(t, []string{fetchFailureMsg}, rep.messages())
}

func TestClient_Fetch_CancelledContext(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[]`)
	rep := &recordingReporter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := testClient(srv.URL, rep).Fetch(ctx)

	assert.Empty(t, got)
	assert.Equal(t, []string{fetchFailureMsg}, rep.messages())
}

func TestClient_FetchRecords_ReturnsFeedErrors(t *testing.T) {
	srv := feedServer(t, http.StatusBadGateway, `upstream down`)
	rep := &recordingReporter{}

	got, err := testClient(srv.URL, rep).FetchRecords(context.Background())

	assert.Nil(t, got)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Empty(t, rep.messages(), "feed errors are returned, not reported")
}

func TestClient_FetchRecords_EmptyFeedIsNotAnError(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[]`)

	got, err := testClient(srv.URL, &recordingReporter{}).FetchRecords(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_Fetch_DropsNonFiniteDepth(t *testing.T) {
	body := `[
		{"ttl":"震源・震度情報","cod":"+36.1+140.7NaN/"},
		{"ttl":"震源・震度情報","cod":"+36.1+140.7-Inf/"},
		{"ttl":"震源・震度情報","cod":"+34.8+139.3-10000/"}
	]`
	srv := feedServer(t, http.StatusOK, body)
	rep := &recordingReporter{}

	got := testClient(srv.URL, rep).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.InDelta(t, 10.0, got[0].Depth, 1e-9)
	assert.Equal(t, []string{"Failed to parse coordinates", "Failed to parse coordinates"}, rep.messages())
}

func TestClient_Fetch_DecodesIssueTime(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[{"ttl":"震源・震度情報","cod":"+36.1+140.7-30000/","eid":"20261018115500","ctt":"20261018115800"}]`)

	got := testClient(srv.URL, &recordingReporter{}).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.True(t, got[0].IssuedAt.Equal(time.Date(2026, time.October, 18, 2, 58, 0, 0, time.UTC)))
	assert.Equal(t, "20261018115500@20261018115800", got[0].RevisionKey())
}

func TestClient_Fetch_IgnoresUnknownFields(t *testing.T) {
	body := `[{"ttl":"震源・震度情報","cod":"+36.1+140.7-30000/","json":"detail.json","int":[{"code":"08","maxi":"2"}],"ctt":"20261018115800"}]`
	srv := feedServer(t, http.StatusOK, body)

	got := testClient(srv.URL, &recordingReporter{}).Fetch(context.Background())

	require.Len(t, got, 1)
	assert.InDelta(t, 30.0, got[0].Depth, 1e-9)
}

func TestClient_Fetch_ConcurrentCallsAreIndependent(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[{"ttl":"震源・震度情報","cod":"+36.1+140.7-30000/"}]`)
	c := testClient(srv.URL, &recordingReporter{})

	var wg sync.WaitGroup
	results := make([][]domain.EarthquakeRecord, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Fetch(context.Background())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Len(t, got, 1)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(3*time.Second, domain.NopReporter{})
	assert.Equal(t, DefaultFeedURL, c.feedURL)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)

	hc := &http.Client{}
	c = NewClient(0, domain.NopReporter{}, WithHTTPClient(hc))
	assert.Same(t, hc, c.httpClient)
}
