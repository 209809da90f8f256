package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishAssignsIDs(t *testing.T) {
	h := NewHub(4)

	h.Publish(Dispatch{Outcome: "pong", Status: 200})
	h.Publish(Dispatch{Outcome: "invalid_signature", Status: 401})

	got := h.Since(0)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, "pong", got[0].Outcome)
	assert.False(t, got[0].At.IsZero())
	assert.Equal(t, int64(2), h.LastID())
}

func TestHub_RingEvictsOldest(t *testing.T) {
	h := NewHub(3)
	for i := 0; i < 5; i++ {
		h.Publish(Dispatch{Outcome: "pong"})
	}

	got := h.Since(0)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 4, 5}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestHub_Since(t *testing.T) {
	h := NewHub(10)
	for i := 0; i < 4; i++ {
		h.Publish(Dispatch{})
	}

	got := h.Since(2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Empty(t, h.Since(4))
}

func TestHub_DefaultCapacity(t *testing.T) {
	h := NewHub(0)
	for i := 0; i < 150; i++ {
		h.Publish(Dispatch{})
	}
	assert.Len(t, h.Since(0), 100)
}

func TestHub_ConcurrentPublish(t *testing.T) {
	h := NewHub(1000)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				h.Publish(Dispatch{Outcome: "command"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, h.Since(0), 500)
	assert.Equal(t, int64(500), h.LastID())
}
