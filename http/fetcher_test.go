package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/recipecrawl"
	rchttp "github.com/fwojciec/recipecrawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>recipe</body></html>"))
	}))
	defer srv.Close()

	f := rchttp.NewFetcher()
	defer f.Close()

	html, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, html, "recipe")
}

func TestFetcher_Fetch_SendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var userAgent, acceptLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		acceptLanguage = r.Header.Get("Accept-Language")
	}))
	defer srv.Close()

	f := rchttp.NewFetcher()
	defer f.Close()

	_, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, userAgent, "Chrome")
	assert.NotEmpty(t, acceptLanguage)
}

func TestFetcher_Fetch_Non200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := rchttp.NewFetcher()
	defer f.Close()

	_, err := f.Fetch(context.Background(), srv.URL)

	assert.Equal(t, recipecrawl.EUNAVAILABLE, recipecrawl.ErrorCode(err))
}

func TestFetcher_Fetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := rchttp.NewFetcher(rchttp.WithTimeout(20 * time.Millisecond))
	defer f.Close()

	_, err := f.Fetch(context.Background(), srv.URL)

	assert.Error(t, err)
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	f := rchttp.NewFetcher()

	assert.NoError(t, f.Close())
}
