package emailclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmail() Email {
	return Email{
		From:     "news@example.com",
		To:       "ursula_le_guin@gmail.com",
		Subject:  "Welcome!",
		HTMLBody: "<p>Welcome!</p>",
		TextBody: "Welcome!",
	}
}

func TestHTTPClient_Send_FiresExpectedRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/email", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "news@example.com", body["From"])
		assert.Equal(t, "ursula_le_guin@gmail.com", body["To"])
		assert.Equal(t, "Welcome!", body["Subject"])
		assert.Equal(t, "<p>Welcome!</p>", body["HtmlBody"])
		assert.Equal(t, "Welcome!", body["TextBody"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", "server-token", time.Second)
	err := client.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_Send_FailsOnNonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			err := NewHTTPClient(srv.URL, "server-token", time.Second).Send(context.Background(), testEmail())
			assert.ErrorIs(t, err, ErrUnexpectedStatus)
		})
	}
}

func TestHTTPClient_Send_TimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewHTTPClient(srv.URL, "server-token", 100*time.Millisecond).Send(context.Background(), testEmail())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestHTTPClient_Send_UnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewHTTPClient(url, "server-token", time.Second).Send(context.Background(), testEmail())
	assert.Error(t, err)
}
