package main

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportArgs(t *testing.T) {
	pairs, err := parseImportArgs([]string{"world_bank", "wb.csv", "rte", "rte.csv"})
	require.NoError(t, err)
	assert.Equal(t, []importPair{{"world_bank", "wb.csv"}, {"rte", "rte.csv"}}, pairs)

	_, err = parseImportArgs([]string{"world_bank"})
	assert.Error(t, err, "odd argument count")

	_, err = parseImportArgs([]string{"rte", "a.csv", "rte", "b.csv"})
	assert.Error(t, err, "duplicate source")

	_, err = parseImportArgs([]string{" ", "a.csv"})
	assert.Error(t, err, "blank source")
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{";", ';', false},
		{"tab", '\t', false},
		{`\t`, '\t', false},
		{"", 0, true},
		{",,", 0, true},
		{`"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDelimiter(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTables(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("pays;annee\nFrance;2015\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("title;score\nSolar;1.5\nWind;2\n"), 0644))

	tables, err := readTables(context.Background(), http.DefaultClient, quietLogger(), []importPair{{"a", a}, {"b", b}}, ';')
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"pays", "annee"}, tables[0].Columns)
	assert.Len(t, tables[1].Rows, 2)

	_, err = readTables(context.Background(), http.DefaultClient, quietLogger(), []importPair{{"missing", filepath.Join(dir, "nope.csv")}}, ',')
	assert.Error(t, err)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestReadTablesFromURL(t *testing.T) {
	var gotID, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eco2mix.csv":
			gotID = r.Header.Get(requestIDHeader)
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte("Date;Consommation (MW)\n2023-01-01;61234\n2023-01-02;60100\n"))
		default:
			http.Error(w, "gone", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	hc := downloadClient(5 * time.Second)
	tables, err := readTables(context.Background(), hc, quietLogger(), []importPair{{"rte", srv.URL + "/eco2mix.csv?lang=fr"}}, ';')
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Date", "Consommation (MW)"}, tables[0].Columns)
	assert.Len(t, tables[0].Rows, 2)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, userAgent, gotUA)

	_, err = readTables(context.Background(), hc, quietLogger(), []importPair{{"rte", srv.URL + "/missing.csv"}}, ';')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestReadTablesFromZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "world_bank.ZIP")

	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"Metadata_Country.csv": "code\nFRA\n",
		"API_EG.ELC.RNWX.csv":  "pays,annee,part\nFrance,2015,15.5\nSpain,2016,35.1\n",
		"readme.txt":           "this file is larger than every csv in the archive, by a wide margin",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	tables, err := readTables(context.Background(), http.DefaultClient, quietLogger(), []importPair{{"world_bank", archive}}, ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"pays", "annee", "part"}, tables[0].Columns)

	empty := filepath.Join(dir, "empty.zip")
	f, err = os.Create(empty)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())

	_, err = readTables(context.Background(), http.DefaultClient, quietLogger(), []importPair{{"x", empty}}, ',')
	assert.ErrorContains(t, err, "no CSV file")
}

func TestIsURLAndZip(t *testing.T) {
	assert.True(t, isURL("https://example.com/a.csv"))
	assert.False(t, isURL("data/a.csv"))
	assert.False(t, isURL("ftp://example.com/a.csv"))
	assert.True(t, isZip("https://example.com/export.zip?download=1"))
	assert.False(t, isZip("https://example.com/export.csv?name=x.zip"))
	assert.True(t, isZip("raw/world_bank.Zip"))
}
