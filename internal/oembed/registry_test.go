package oembed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tweetHTML = `<blockquote class="twitter-tweet"><p>hello</p></blockquote>`

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Timeout: 2 * time.Second})}, opts...)
	return NewRegistry(opts...)
}

func TestRegistry_MatchFirstRegisteredWins(t *testing.T) {
	r := newTestRegistry(t)
	first := MustProvider("custom", "https://custom.test/oembed", "https://twitter.com/*/status/*")
	r.Register(first, Twitter())

	p, ok := r.Match("https://twitter.com/user/status/123")
	require.True(t, ok)
	assert.Same(t, first, p)
}

func TestRegistry_FetchJSON(t *testing.T) {
	var gotURL, gotFormat, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		gotFormat = r.URL.Query().Get("format")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"type":"rich","version":"1.0","html":%q,"width":550,"height":null}`, tweetHTML)
	}))
	defer srv.Close()

	r := newTestRegistry(t, WithUserAgent("test-agent"))
	p := MustProvider("Twitter", srv.URL+"/oembed", "https://twitter.com/*/status/*")

	html, err := r.FetchHTML(context.Background(), p, "https://twitter.com/user/status/123")
	require.NoError(t, err)
	assert.Equal(t, tweetHTML, html)
	assert.Equal(t, "https://twitter.com/user/status/123", gotURL)
	assert.Equal(t, "json", gotFormat)
	assert.Equal(t, "test-agent", gotUA)
}

func TestRegistry_FetchXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oembed.xml", r.URL.Path)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<oembed><type>video</type><version>1.0</version><width>100%</width><html>&lt;iframe src="https://v.test/1"&gt;&lt;/iframe&gt;</html></oembed>`)
	}))
	defer srv.Close()

	r := newTestRegistry(t, WithRequestOptions(RequestOptions{Format: FormatXML}))
	p := MustProvider("Video", srv.URL+"/oembed.{format}", "https://v.test/*")

	resp, err := r.Fetch(context.Background(), p, "https://v.test/1")
	require.NoError(t, err)
	assert.Equal(t, Scalar("100%"), resp.Width)

	html, err := resp.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<iframe src="https://v.test/1"></iframe>`, html)
}

func TestRegistry_FetchPhotoRendersImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"type":"photo","version":"1.0","url":"https://img.test/a.jpg","title":"A \"cat\"","width":"640","height":480}`)
	}))
	defer srv.Close()

	r := newTestRegistry(t)
	p := MustProvider("Photos", srv.URL, "https://photos.test/*")

	html, err := r.FetchHTML(context.Background(), p, "https://photos.test/1")
	require.NoError(t, err)
	assert.Equal(t, `<img src="https://img.test/a.jpg" alt="A &#34;cat&#34;" width="640" height="480">`, html)
}

func TestRegistry_FetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    error
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			kind: ErrNetwork,
		},
		{
			name: "private",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			kind: ErrNetwork,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"type":`)
			},
			kind: ErrMalformedResponse,
		},
		{
			name: "link type has no html",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"type":"link","version":"1.0","title":"x"}`)
			},
			kind: ErrMalformedResponse,
		},
		{
			name: "empty object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{}`)
			},
			kind: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := newTestRegistry(t)
			p := MustProvider("p", srv.URL, "https://p.test/*")

			_, err := r.FetchHTML(context.Background(), p, "https://p.test/1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var fe *FetchError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestRegistry_FetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	r := newTestRegistry(t)
	p := MustProvider("gone", endpoint, "https://gone.test/*")

	_, err := r.FetchHTML(context.Background(), p, "https://gone.test/1")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestRegistry_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewRegistry(WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	p := MustProvider("slow", srv.URL, "https://slow.test/*")

	start := time.Now()
	_, err := r.FetchHTML(context.Background(), p, "https://slow.test/1")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRegistry_ConcurrentMatch(t *testing.T) {
	r := NewDefaultRegistry(nil)
	var hits atomic.Int64

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if _, ok := r.Match("https://twitter.com/u/status/1"); ok {
					hits.Add(1)
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, int64(800), hits.Load())
}
