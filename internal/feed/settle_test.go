package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reel/internal/config"
)

type settledIndexes struct {
	mu  sync.Mutex
	got []int
}

func (s *settledIndexes) record(i int) {
	s.mu.Lock()
	s.got = append(s.got, i)
	s.mu.Unlock()
}

func (s *settledIndexes) values() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.got...)
}

func TestSettler_ReportsOnlyLastPosition(t *testing.T) {
	var settled settledIndexes
	s := NewSettler(20*time.Millisecond, settled.record)
	defer s.Stop()

	s.Report(1)
	s.Report(2)
	s.Report(3)

	assert.Eventually(t, func() bool { return len(settled.values()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []int{3}, settled.values())
}

func TestSettler_Stop(t *testing.T) {
	var settled settledIndexes
	s := NewSettler(10*time.Millisecond, settled.record)

	s.Report(4)
	s.Stop()
	s.Report(5)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, settled.values())
}

func TestSettler_RapidScrollActivatesSettledItemOnly(t *testing.T) {
	c, factory, _ := loaded(t, twoPageSource(), config.PlaybackConfig{})
	s := NewSettler(15*time.Millisecond, c.OnScrollSettled)
	defer s.Stop()

	s.Report(1)
	s.Report(2)

	assert.Eventually(t, func() bool { return c.ActiveIndex() == 2 }, time.Second, 5*time.Millisecond)
	// Settling on the tail also pulls the next page.
	assert.Eventually(t, func() bool { return c.Len() == 6 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"play:v3"}, factory.log.all())
}

func TestSettler_SettleAfterPresent(t *testing.T) {
	c, factory, _ := newTestCoordinator(t, twoPageSource(), config.PlaybackConfig{})
	require.NoError(t, c.Load(context.Background()))
	require.True(t, c.Presented())

	s := NewSettler(5*time.Millisecond, c.OnScrollSettled)
	defer s.Stop()
	s.Report(1)

	assert.Eventually(t, func() bool { return c.ActiveIndex() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"play:v1", "pause:v1", "play:v2"}, factory.log.all())
}
