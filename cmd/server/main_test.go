package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickloan/internal/config"
)

func redisConfig(mr *miniredis.Miniredis) config.RedisConfig {
	return config.RedisConfig{Host: mr.Host(), Port: mr.Port(), TTL: time.Minute}
}

func TestOpenCache(t *testing.T) {
	mr := miniredis.RunT(t)

	svc, closeCache := openCache(redisConfig(mr))
	require.NotNil(t, svc)
	assert.NoError(t, svc.HealthCheck(context.Background()))
	assert.NotPanics(t, closeCache)
}

func TestOpenCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfig(mr)
	mr.Close()

	svc, closeCache := openCache(cfg)
	assert.Nil(t, svc)
	assert.NotPanics(t, closeCache)
}
