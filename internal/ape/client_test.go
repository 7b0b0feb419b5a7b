package ape

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/typeledger/internal/model"
)

func TestClientIsOffline(t *testing.T) {
	c := NewClient("https://api.example.invalid", "test")
	resp, err := c.SaveResult(context.Background(), model.Result{Mode: model.ModeTime})
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, resp.Status)
	assert.False(t, resp.OK())
	assert.Equal(t, "Offline mode", resp.Message())
}

func TestClientTracesRequests(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewClient("https://api.example.invalid/", "1.2.3", WithLogger(zap.New(core)))

	_, err := c.SaveResult(context.Background(), model.Result{Mode: model.ModeWords})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, "https://api.example.invalid/results", fields["url"])
	assert.Equal(t, "1.2.3", fields["client_version"])
	assert.Greater(t, fields["body_bytes"], int64(0))
}

func TestClientRejectsUnencodableBody(t *testing.T) {
	_, err := NewClient("", "test").Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/results",
		Body:   make(chan int),
	})
	assert.Error(t, err)
}

func TestClientHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient("", "test").Do(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticGate(t *testing.T) {
	g := NewStaticGate(Offline())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.Wait(ctx))
	assert.True(t, g.Get().Results.SavingEnabled)
}
