package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	krl := New(1, 2)

	assert.True(t, krl.Allow("text"))
	assert.True(t, krl.Allow("text"))
	assert.False(t, krl.Allow("text"), "burst exhausted")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("text"))
	assert.False(t, krl.Allow("text"))
	assert.True(t, krl.Allow("image"), "separate key has its own bucket")
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(0.001, 1)
	require.True(t, krl.Allow("slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "slow")
	assert.Error(t, err)
}

func TestPerMinute(t *testing.T) {
	krl := PerMinute(60)
	assert.True(t, krl.Allow("k"))

	// Tiny quotas still get a burst of one.
	tiny := PerMinute(1)
	assert.True(t, tiny.Allow("k"))
	assert.False(t, tiny.Allow("k"))
}
