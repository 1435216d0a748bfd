package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientParsesPlaintextCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8/country", r.URL.Path)
		_, _ = w.Write([]byte("US\n"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	code, err := client.Country(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "US", code)
}

func TestHTTPClientRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html error page", "<html>try later</html>"},
		{"empty body", ""},
		{"too short", "U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, time.Second)
			_, err := client.Country(context.Background(), "8.8.8.8")
			assert.Error(t, err)
		})
	}
}

func TestHTTPClientNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.Country(context.Background(), "8.8.8.8")
	assert.Error(t, err)
}

func TestHTTPClientHonorsTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewHTTPClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := client.Country(context.Background(), "8.8.8.8")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "a hung upstream must fail fast")
}
