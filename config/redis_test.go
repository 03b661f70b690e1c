package config

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestConnectRedis_SkippedInTestEnv(t *testing.T) {
	ResetConfigForTest()
	ResetRedisClientForTest()
	t.Cleanup(func() {
		ResetConfigForTest()
		ResetRedisClientForTest()
	})
	t.Setenv("APPENV", "test")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	rdb, err := ConnectRedis()
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestConnectRedis_NoAddress(t *testing.T) {
	ResetConfigForTest()
	ResetRedisClientForTest()
	t.Cleanup(func() {
		ResetConfigForTest()
		ResetRedisClientForTest()
	})
	t.Setenv("APPENV", "development")
	t.Setenv("REDIS_ADDR", "")

	rdb, err := ConnectRedis()
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestSetRedisClientForTest(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	SetRedisClientForTest(rdb)
	t.Cleanup(ResetRedisClientForTest)

	assert.Same(t, rdb, GetRedisClient())

	ResetRedisClientForTest()
	assert.Nil(t, GetRedisClient())
}
