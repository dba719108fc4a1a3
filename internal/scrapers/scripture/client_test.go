package scripture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"scripture-scraper/internal/components/chrono"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/lib/restyutil"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, server *httptest.Server, tel telemetry.API, cache *badger.DB) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{
		BaseUrl:     server.URL,
		UserAgent:   "scripture-scraper-test",
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Cache:       cache,
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func openMemoryCache(t testing.TB) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFetchRetries(t *testing.T) {
	var hits atomic.Int32
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		userAgent.Store(r.Header.Get("user-agent"))
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>Genesis 1</h1></body></html>`))
	}))
	defer server.Close()

	tel := &telemetry.Recorder{}
	client := newTestClient(t, server, tel, nil)

	doc, err := client.Fetch(context.Background(), "/scriptures/ot/gen/1")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Genesis 1", doc.Find("h1").Text())
	require.Equal(t, int32(3), hits.Load())
	require.Equal(t, "scripture-scraper-test", userAgent.Load())

	var retries int
	for _, rep := range tel.Reports("warning") {
		if rep.Id == "scripture_client: "+report_client_fetch_retry {
			retries++
		}
	}
	require.Equal(t, 2, retries)
	require.Empty(t, tel.Reports("broken"))
}

func TestFetchExhaustsAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tel := &telemetry.Recorder{}
	client := newTestClient(t, server, tel, nil)

	_, err := client.Fetch(context.Background(), "/scriptures/ot/gen/1")
	require.ErrorIs(t, err, ErrFetchFailure)
	require.Contains(t, err.Error(), "503")
	require.Equal(t, int32(3), hits.Load())

	broken := tel.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "scripture_client: "+report_client_fetch, broken[0].Id)
}

func TestFetchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server, &telemetry.Recorder{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Fetch(ctx, "/scriptures/ot/gen/1")
	require.ErrorIs(t, err, ErrFetchFailure)
}

func TestFetchDecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html><body><p>Caf\xe9</p></body></html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server, &telemetry.Recorder{}, nil)

	doc, err := client.Fetch(context.Background(), "/page")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Café", doc.Find("p").Text())
}

func TestFetchCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<html><body><p>cached</p></body></html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &telemetry.Recorder{}, openMemoryCache(t))

	for range 3 {
		doc, err := client.Fetch(context.Background(), "/scriptures/ot/gen/1?lang=eng")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "cached", doc.Find("p").Text())
	}
	// the absolute and relative forms of an address share an entry
	_, err := client.Fetch(context.Background(), server.URL+"/scriptures/ot/gen/1?lang=eng")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int32(1), hits.Load())
}

func TestFetchCacheLifetime(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<html><body><p>page</p></body></html>`))
	}))
	defer server.Close()

	clock := chrono.NewFakeImpl(time.Date(2018, time.March, 1, 0, 0, 0, 0, time.UTC))
	client, err := NewClient(ClientOptions{
		BaseUrl:       server.URL,
		MaxAttempts:   1,
		Cache:         openMemoryCache(t),
		CacheLifetime: 24 * time.Hour,
		Clock:         clock,
	}, &telemetry.Recorder{})
	if err != nil {
		t.Fatal(err)
	}

	fetch := func() {
		_, err := client.Fetch(context.Background(), "/scriptures/nt/matt/1")
		if err != nil {
			t.Fatal(err)
		}
	}

	fetch()
	clock.Advance(23 * time.Hour)
	fetch()
	require.Equal(t, int32(1), hits.Load())

	clock.Advance(time.Hour)
	fetch()
	require.Equal(t, int32(2), hits.Load())
}

func TestResolve(t *testing.T) {
	client, err := NewClient(ClientOptions{BaseUrl: "https://www.lds.org"}, &telemetry.Recorder{})
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		address  string
		expected string
	}{
		{address: "/scriptures/ot/gen/1?lang=eng", expected: "https://www.lds.org/scriptures/ot/gen/1?lang=eng"},
		{address: "https://example.com/x", expected: "https://example.com/x"},
		{address: "/fn/1#note", expected: "https://www.lds.org/fn/1#note"},
	}
	for _, testCase := range testCases {
		resolved, err := client.Resolve(testCase.address)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, testCase.expected, resolved)
	}

	_, err = client.Resolve("%zz")
	require.ErrorIs(t, err, ErrInvalidAddress)
	require.True(t, strings.HasPrefix(err.Error(), ErrInvalidAddress.Error()))
}

func TestFetchDumpsExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>Genesis 1</h1></body></html>`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	out, err := restyutil.NewDirectoryOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(ClientOptions{
		BaseUrl:     server.URL,
		Timeout:     5 * time.Second,
		MaxAttempts: 1,
		Dump:        out,
	}, &telemetry.Recorder{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Fetch(context.Background(), "/scriptures/ot/gen/1")
	if err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "00001_200.txt"))
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, string(contents), "GET "+server.URL+"/scriptures/ot/gen/1")
	require.Contains(t, string(contents), "<h1>Genesis 1</h1>")
}
