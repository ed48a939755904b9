package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_WithoutConnections(t *testing.T) {
	c := NewClient()

	assert.ErrorIs(t, c.PingMongo(context.Background()), ErrMongoNotConnected)
	assert.NoError(t, c.GracefulShutdown(context.Background()))
}

func TestClient_SetRedisRejectsBadURL(t *testing.T) {
	c := NewClient()

	err := c.SetRedis(context.Background(), "http://localhost:6379")
	assert.ErrorContains(t, err, "parse redis URL")
	assert.Nil(t, c.Redis)
}
