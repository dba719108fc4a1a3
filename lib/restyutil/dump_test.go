package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu    sync.Mutex
	files map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = contents
}

func TestDumpExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("x-page", "gen-1")
		w.Write([]byte("<p>In the beginning</p>"))
	}))
	defer server.Close()

	output := &memoryOutput{files: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL).SetHeader("user-agent", "dump-test")
	DumpExchanges(client, output)

	_, err := client.R().Get("/scriptures/ot/gen/1")
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.R().Get("/missing")
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, output.files, 2)
	first := output.files["00001_200.txt"]
	require.True(t, strings.HasPrefix(first, "---- REQUEST ----\n\nGET "+server.URL+"/scriptures/ot/gen/1"), first)
	require.Contains(t, first, "User-Agent: dump-test")
	require.Contains(t, first, "X-Page: gen-1")
	require.True(t, strings.HasSuffix(first, "<p>In the beginning</p>"), first)
	require.Contains(t, output.files, "00002_404.txt")
}

func TestDirectoryOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	output, err := NewDirectoryOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	output.Write("00001_200.txt", "exchange")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, entries, 1)
	require.Equal(t, "00001_200.txt", entries[0].Name())
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("X-B", "2")
	headers.Add("X-A", "1")
	headers.Add("X-A", "3")
	require.Equal(t, "X-A: 1\nX-A: 3\nX-B: 2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestFormatRequestBody(t *testing.T) {
	get, err := http.NewRequest(http.MethodGet, "http://localhost/scriptures", nil)
	if err != nil {
		t.Fatal(err)
	}
	post, err := http.NewRequest(http.MethodPost, "http://localhost/scriptures", strings.NewReader("lang=eng"))
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		req      *http.Request
		expected string
	}{
		{name: "no request", req: nil, expected: ""},
		{name: "no GetBody", req: get, expected: ""},
		{
			name: "nil body",
			req: &http.Request{GetBody: func() (io.ReadCloser, error) {
				return nil, nil
			}},
			expected: "",
		},
		{name: "body", req: post, expected: "lang=eng"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, formatRequestBody(testCase.req))
		})
	}
}
