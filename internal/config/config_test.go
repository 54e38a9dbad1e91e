package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelperDefaults(t *testing.T) {
	assert.Equal(t, 6, atoiDefault("6", 1))
	assert.Equal(t, 1, atoiDefault("", 1))
	assert.Equal(t, 1, atoiDefault("garbage", 1))
	assert.Equal(t, 1, atoiDefault("0", 1), "policy quotas are at least one")
	assert.Equal(t, 1, atoiDefault("-3", 1))

	assert.Equal(t, 10*time.Minute, parseDur("10m"))
	assert.Equal(t, 5*time.Minute, parseDur(""), "lock duration falls back")
	assert.Equal(t, 5*time.Minute, parseDur("-1m"))

	assert.Equal(t, time.Minute, parseDurDefault("", time.Minute))
	assert.Equal(t, 30*time.Second, parseDurDefault("30s", time.Minute))
}

func TestPolicyKnobDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("CACHE_ENABLED", "")

	rl := LoadRateLimitConfig()
	assert.True(t, rl.Enabled)
	assert.Equal(t, 60, rl.Limit)
	assert.Equal(t, time.Minute, rl.Window)
	assert.Equal(t, "rl", rl.Prefix)

	cc := LoadCacheConfig()
	assert.True(t, cc.Enabled)
	assert.Equal(t, 10*time.Second, cc.TTL)
	assert.Equal(t, "cache", cc.Prefix)
}
