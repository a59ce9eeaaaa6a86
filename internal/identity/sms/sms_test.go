package sms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

var msg = sms.Message{
	VerificationID: "v1",
	Phone:          "+919876543210",
	Code:           "123456",
	ExpiresAt:      time.Now().Add(time.Minute),
}

func TestLogSenderStoresCode(t *testing.T) {
	codes := sms.NewDevCodes()
	s := sms.NewLogSender(slogx.Discard(), codes)

	require.NoError(t, s.Send(context.Background(), msg))

	got, ok := codes.Get("v1")
	require.True(t, ok)
	require.Equal(t, "123456", got)

	_, ok = codes.Get("v2")
	require.False(t, ok)
}

func TestDevCodesExpire(t *testing.T) {
	codes := sms.NewDevCodes()
	codes.Put("old", "111111", time.Now().Add(-time.Second))
	codes.Put("new", "222222", time.Now().Add(time.Minute))

	require.Equal(t, 1, codes.Sweep())
	_, ok := codes.Get("old")
	require.False(t, ok)
	_, ok = codes.Get("new")
	require.True(t, ok)
}

func TestSMSLocalSend(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := sms.NewSMSLocal("key", srv.URL, "FOODCR", slogx.Discard(), nil)
	require.NoError(t, c.Send(context.Background(), msg))

	require.Equal(t, "otp", body["route"])
	require.Equal(t, "919876543210", body["numbers"])
	require.Equal(t, "123456", body["variables"])
	require.Equal(t, "FOODCR", body["sender_id"])
}

func TestSMSLocalRequiresKey(t *testing.T) {
	c := sms.NewSMSLocal("", "", "", slogx.Discard(), nil)
	require.Equal(t, sms.DefaultSMSLocalURL, c.BaseURL)
	require.ErrorIs(t, c.Send(context.Background(), msg), sms.ErrNotConfigured)
}

type recordingObserver struct{ last atomic.Value }

func (o *recordingObserver) BreakerState(_ string, state float64) { o.last.Store(state) }

func TestSMSLocalBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := sms.NewSMSLocal("key", srv.URL, "", slogx.Discard(), obs)

	for range 3 {
		err := c.Send(context.Background(), msg)
		require.ErrorContains(t, err, "status=502")
	}
	require.Equal(t, gobreaker.StateOpen, c.State())
	require.Equal(t, 2.0, obs.last.Load())

	require.ErrorIs(t, c.Send(context.Background(), msg), sms.ErrUnavailable)
	require.EqualValues(t, 3, hits.Load(), "open breaker short-circuits")
}
