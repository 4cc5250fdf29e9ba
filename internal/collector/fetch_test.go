package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rivaliq/internal/model"
)

func TestFetch_HTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><article><p>` + //nolint:errcheck
			`Long-form analysis of the vendor's roadmap and recent customer churn patterns.` +
			`</p></article></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	text, kind, err := f.Fetch(context.Background(), srv.URL+"/analysis")
	require.NoError(t, err)
	assert.Equal(t, model.SourceKindWeb, kind)
	assert.Contains(t, text, "customer churn patterns")
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotUA = req.Header.Get("User-Agent")
		gotAccept = req.Header.Get("Accept-Language")
		w.Write([]byte(`<html><body><p>` + //nolint:errcheck
			`Enough body text here to clear the minimum extracted content threshold easily.` +
			`</p></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	_, _, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "en-US")
}

func TestFetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	_, _, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusForbidden, fe.Status)
	assert.Contains(t, fe.Error(), "HTTP 403")
}

func TestFetch_TransportFailure(t *testing.T) {
	f := NewFetcher(time.Second)
	_, _, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.Status)
}

func TestFetch_TooLittleContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><p>tiny</p></body></html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	_, _, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
}
