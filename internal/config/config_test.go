package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 0, cfg.Limit)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, []string{DefaultCORSOrigin}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		EnvAPIURL:      "https://data.example.org/api/",
		EnvTimeout:     "5s",
		EnvLimit:       "250",
		EnvLogFile:     "/tmp/x.log",
		EnvDBPath:      "/tmp/x.db",
		EnvListen:      ":9000",
		EnvCatalog:     "catalog.yaml",
		EnvCORSOrigins: "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://data.example.org/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 250, cfg.Limit)
	assert.Equal(t, "/tmp/x.log", cfg.LogFile)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"bad timeout":    {EnvTimeout: "soon"},
		"bad limit":      {EnvLimit: "many"},
		"negative limit": {EnvLimit: "-1"},
		"bad scheme":     {EnvAPIURL: "ftp://example.org"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://localhost:8000", "http://localhost:8000", false},
		{"http://localhost:8000/", "http://localhost:8000", false},
		{" https://example.com/base/?x=1 ", "https://example.com/base", false},
		{"http://bücher.example:8080", "http://xn--bcher-kva.example:8080", false},
		{"http://[::1]:8000/", "http://[::1]:8000", false},
		{"http://[2001:db8::1]", "http://[2001:db8::1]", false},
		{"http://127.0.0.1:8000", "http://127.0.0.1:8000", false},
		{"", "", true},
		{"localhost:8000", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
