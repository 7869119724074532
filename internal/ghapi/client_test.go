package ghapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	client := NewClient(baseURL, "test-token")
	client.RateLimitSlack = 0
	client.PageDelay = 0
	client.DetailDelay = 0
	return client
}

func TestGetSendsHeaders(t *testing.T) {
	var gotAccept, gotVersion, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotVersion = r.Header.Get("X-GitHub-Api-Version")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.get(context.Background(), server.URL+"/anything", nil, "")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/vnd.github+json", gotAccept)
	assert.Equal(t, "2022-11-28", gotVersion)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestGetRetriesAfterRateLimit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.get(context.Background(), server.URL+"/rate-limited", nil, "")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 2, requests)
}

func TestGetRateLimitExhaustsRetries(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.get(context.Background(), server.URL+"/rate-limited", nil, "")
	require.Error(t, err)

	// initial attempt plus two retries
	assert.Equal(t, 3, requests)
}

func TestGetTerminalStatusDoesNotRetry(t *testing.T) {
	for _, status := range []int{301, 404, 409, 410, 422, 500} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.WriteHeader(status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.get(context.Background(), server.URL+"/missing", nil, "")
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, status, statusErr.StatusCode)
			assert.Equal(t, 1, requests)
		})
	}
}

func TestGetForbiddenWithQuotaLeftIsTerminal(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.get(context.Background(), server.URL+"/forbidden", nil, "")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, 1, requests)
}

func TestRateLimitWaitFallsBackOnBadReset(t *testing.T) {
	client := newTestClient("http://example.invalid")

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Reset", "not-a-timestamp")

	assert.Equal(t, time.Minute, client.rateLimitWait(resp))
}
