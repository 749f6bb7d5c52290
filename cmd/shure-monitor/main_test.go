package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuretools/shurelink/pkg/store"
)

func TestAssembleSinksRedisUnreachableNotFatal(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 on localhost refuses connections. The daemon must come up
	// anyway and let the per-write retry recover later.
	cfg := &Config{RedisAddr: "127.0.0.1:1"}
	sinks, promSink, closer, err := assembleSinks(ctx, cfg)
	require.NoError(t, err)
	defer closer()

	assert.Nil(t, promSink)
	require.Len(t, sinks, 1)
	_, ok := sinks[0].(*store.RedisSink)
	assert.True(t, ok)
}

func TestAssembleSinksDefaultsToLog(t *testing.T) {
	sinks, promSink, closer, err := assembleSinks(context.Background(), &Config{})
	require.NoError(t, err)
	defer closer()

	assert.Nil(t, promSink)
	require.Len(t, sinks, 1)
	_, ok := sinks[0].(*store.LogSink)
	assert.True(t, ok)
}
