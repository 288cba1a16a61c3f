package blogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(Config{BaseURL: baseURL, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return client
}

func TestRequestCarriesBearerTokenAndHeaders(t *testing.T) {
	var authorization, requestID, agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-Id")
		agent = r.Header.Get("User-Agent")
		_, _ = fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.SetAuthToken("token-1")

	_, err := client.Do(context.Background(), http.MethodGet, "/blog/posts", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", authorization)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "blogctl", agent)
}

func TestConcurrentDenialsTriggerSingleRefresh(t *testing.T) {
	var refreshCalls atomic.Int64
	var replayedWithNewToken atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		_, _ = fmt.Fprint(w, `{"accessToken":"token-2"}`)
	})
	mux.HandleFunc("/blog/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-2" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = fmt.Fprint(w, `{"message":"token expired"}`)
			return
		}
		replayedWithNewToken.Add(1)
		_, _ = fmt.Fprint(w, `[]`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.SetAuthToken("token-1")

	var refreshedTokens []string
	client.OnTokenRefreshed(func(token string) {
		refreshedTokens = append(refreshedTokens, token)
	})

	const concurrency = 8
	errs := make([]error, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(context.Background(), http.MethodGet, "/blog/posts", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, int64(concurrency), replayedWithNewToken.Load())
	assert.Equal(t, "token-2", client.AuthToken())
	assert.Equal(t, []string{"token-2"}, refreshedTokens)
}

func TestDeniedReplayFailsWithoutSecondRefresh(t *testing.T) {
	var refreshCalls atomic.Int64
	var protectedHits atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_, _ = fmt.Fprint(w, `{"accessToken":"token-2"}`)
	})
	mux.HandleFunc("/blog/myposts", func(w http.ResponseWriter, r *http.Request) {
		protectedHits.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"message":"still denied"}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.SetAuthToken("token-1")

	_, err := client.Do(context.Background(), http.MethodGet, "/blog/myposts", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, int64(2), protectedHits.Load())
	assert.Equal(t, int64(1), refreshCalls.Load())
}

func TestRefreshFailureRejectsEveryQueuedRequest(t *testing.T) {
	var refreshCalls atomic.Int64
	var expiredCallbacks atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"message":"refresh token expired"}`)
	})
	mux.HandleFunc("/blog/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"message":"token expired"}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.SetAuthToken("token-1")
	client.OnSessionExpired(func(error) { expiredCallbacks.Add(1) })

	const concurrency = 5
	errs := make([]error, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(context.Background(), http.MethodGet, "/blog/posts", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "request %d", i)
		assert.ErrorIs(t, err, ErrSessionExpired, "request %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, int64(1), expiredCallbacks.Load())
}

func TestNonAuthErrorPropagatesWithoutRefresh(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_, _ = fmt.Fprint(w, `{"accessToken":"token-2"}`)
	})
	mux.HandleFunc("/blog/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"message":"boom"}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Do(context.Background(), http.MethodGet, "/blog/posts", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Equal(t, int64(0), refreshCalls.Load())
}

func TestValidationErrorCarriesFieldMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"message":"validation failed","errors":{"email":"Must be a valid email"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Do(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "nope"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, "Must be a valid email", apiErr.Fields["email"])
}

func TestDoJSONDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		_, _ = fmt.Fprint(w, `{"accessToken":"tok","user":{"_id":"u1"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	err := client.DoJSON(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "tok", out.AccessToken)
}

func TestCookiesSurviveExportAndImport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "cookie-1", Path: "/"})
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Do(context.Background(), http.MethodPost, "/auth/login", nil)
	require.NoError(t, err)

	cookies := client.Cookies()
	require.NotEmpty(t, cookies)

	fresh := newTestClient(t, server.URL)
	fresh.SetCookies(cookies)
	restored := fresh.Cookies()
	require.Len(t, restored, 1)
	assert.Equal(t, "refreshToken", restored[0].Name)
	assert.Equal(t, "cookie-1", restored[0].Value)
}

func TestBaseURLValidation(t *testing.T) {
	_, err := New(Config{BaseURL: ""})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "ftp://example.com"})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "https://example.com/api"})
	require.NoError(t, err)
}
