package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

// newTestServer serves a fixed set of routes and records the last query string.
func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *atomic.Value) {
	t.Helper()
	lastQuery := &atomic.Value{}
	lastQuery.Store("")

	mux := http.NewServeMux()
	for pattern, h := range routes {
		h := h
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			lastQuery.Store(r.URL.RawQuery)
			if r.Header.Get(requestIDHeader) == "" {
				t.Errorf("missing %s header", requestIDHeader)
			}
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, lastQuery
}

func writeJSON(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

// TestListSources verifies the source list is decoded in order
func TestListSources(t *testing.T) {
	srv, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /sources": writeJSON(`["rte","stock_prices","world_bank"]`),
	})

	client := NewClient(srv.URL, time.Second)
	sources, err := client.ListSources(context.Background())
	if err != nil {
		t.Fatalf("ListSources() error = %v", err)
	}

	want := []string{"rte", "stock_prices", "world_bank"}
	if len(sources) != len(want) {
		t.Fatalf("ListSources() = %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, sources[i], want[i])
		}
	}
}

// TestFetchDataQuery verifies only non-empty filters reach the server
func TestFetchDataQuery(t *testing.T) {
	tests := []struct {
		name      string
		filters   models.Filters
		limit     int
		wantQuery url.Values
	}{
		{
			name:      "start year and country",
			filters:   models.Filters{StartYear: "2015", Country: "France"},
			wantQuery: url.Values{"annee_debut": {"2015"}, "pays": {"France"}},
		},
		{
			name:      "no filters",
			filters:   models.Filters{},
			wantQuery: url.Values{},
		},
		{
			name:      "limit configured",
			filters:   models.Filters{Query: "solar"},
			limit:     50,
			wantQuery: url.Values{"q": {"solar"}, "limit": {"50"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, lastQuery := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
				"GET /data/{source}": writeJSON(`{"source":"world_bank","count":1,"data":[{"pays":"France","annee":2015}]}`),
			})

			client := NewClient(srv.URL, time.Second, WithLimit(tt.limit))
			resp, err := client.FetchData(context.Background(), "world_bank", tt.filters)
			if err != nil {
				t.Fatalf("FetchData() error = %v", err)
			}
			if len(resp.Data) != 1 {
				t.Fatalf("FetchData() returned %d records, want 1", len(resp.Data))
			}

			got, err := url.ParseQuery(lastQuery.Load().(string))
			if err != nil {
				t.Fatalf("bad query: %v", err)
			}
			if got.Encode() != tt.wantQuery.Encode() {
				t.Errorf("query = %q, want %q", got.Encode(), tt.wantQuery.Encode())
			}
			for key, values := range got {
				for _, v := range values {
					if v == "" {
						t.Errorf("empty value sent for %q", key)
					}
				}
			}
		})
	}
}

// TestFetchDataErrors verifies every failure kind wraps ErrRequest
func TestFetchDataErrors(t *testing.T) {
	srv, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /data/missing": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"Source 'missing' not found."}`, http.StatusNotFound)
		},
		"GET /data/broken": writeJSON(`{"data": [`),
	})

	client := NewClient(srv.URL, time.Second)

	tests := []struct {
		name   string
		client *Client
		source string
	}{
		{"http status", client, "missing"},
		{"malformed body", client, "broken"},
		{"empty source", client, ""},
		{"unreachable", NewClient("http://127.0.0.1:1", time.Second), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.FetchData(context.Background(), tt.source, models.Filters{})
			if err == nil {
				t.Fatal("FetchData() expected error")
			}
			if !errors.Is(err, ErrRequest) {
				t.Errorf("error %v does not wrap ErrRequest", err)
			}
		})
	}
}

// TestFetchCatalogToleratesMissingMetadata verifies metadata is best effort
func TestFetchCatalogToleratesMissingMetadata(t *testing.T) {
	srv, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /sources": writeJSON(`["rte"]`),
		"GET /sources_with_metadata": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	catalog, err := NewClient(srv.URL, time.Second).FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog() error = %v", err)
	}
	if len(catalog.Sources) != 1 || catalog.Sources[0] != "rte" {
		t.Errorf("Sources = %v", catalog.Sources)
	}
	if len(catalog.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", catalog.Metadata)
	}
}

// TestFetchCatalogWithMetadata verifies metadata wire keys decode
func TestFetchCatalogWithMetadata(t *testing.T) {
	srv, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /sources":               writeJSON(`["rte"]`),
		"GET /sources_with_metadata": writeJSON(`{"rte":{"Nom_Source":"RTE","Description":"eCO2mix","Unites":"MW"}}`),
	})

	catalog, err := NewClient(srv.URL, time.Second).FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog() error = %v", err)
	}
	meta := catalog.Metadata["rte"]
	if meta.Name != "RTE" || meta.Units != "MW" {
		t.Errorf("Metadata[rte] = %+v", meta)
	}
}

// TestFetchCatalogSourceFailure verifies the source list error is surfaced
func TestFetchCatalogSourceFailure(t *testing.T) {
	srv, _ := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /sources": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"GET /sources_with_metadata": writeJSON(`{}`),
	})

	_, err := NewClient(srv.URL, time.Second).FetchCatalog(context.Background())
	if !errors.Is(err, ErrRequest) {
		t.Errorf("FetchCatalog() error = %v, want ErrRequest", err)
	}
}

// TestBuildURL verifies source names are path-escaped
func TestBuildURL(t *testing.T) {
	client := NewClient("http://localhost:8000/", 0)
	if got := client.BaseURL(); got != "http://localhost:8000" {
		t.Errorf("BaseURL() = %q", got)
	}
	got := client.BuildURL("/data/"+url.PathEscape("a b"), url.Values{"q": {"x"}})
	if want := "http://localhost:8000/data/a%20b?q=x"; got != want {
		t.Errorf("BuildURL() = %q, want %q", got, want)
	}
}
