package device_manager

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceManager_Status(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dm := NewDeviceManager(10 * time.Minute)
	dm.now = func() time.Time { return now }

	_, err := dm.QueryDeviceStatus("0004A30B00112233")
	assert.ErrorIs(t, err, inter.ErrDeviceUnknown)

	dm.Touch("0004A30B00112233", now.Add(-time.Minute))
	st, err := dm.QueryDeviceStatus("0004A30B00112233")
	require.NoError(t, err)
	assert.Equal(t, inter.StatusOnline, st)

	dm.Touch("0004A30B00112233", now.Add(-7*time.Minute))
	st, _ = dm.QueryDeviceStatus("0004A30B00112233")
	assert.Equal(t, inter.StatusDelayed, st)

	dm.Touch("0004A30B00112233", now.Add(-time.Hour))
	st, _ = dm.QueryDeviceStatus("0004A30B00112233")
	assert.Equal(t, inter.StatusOffline, st)
	assert.Equal(t, "offline", st.String())

	assert.Equal(t, 1, dm.Count())
}

func TestDeviceManager_ConcurrentTouch(t *testing.T) {
	dm := NewDeviceManager(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dm.Touch(fmt.Sprintf("%016X", i%10), time.Now())
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, dm.Count())
}

func TestDeviceManager_Snapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dm := NewDeviceManager(10 * time.Minute)
	dm.now = func() time.Time { return now }

	dm.Touch("0000000000000001", now.Add(-time.Minute))
	dm.Touch("0000000000000002", now.Add(-2*time.Minute))
	dm.Touch("0000000000000003", now.Add(-7*time.Minute))
	dm.Touch("0000000000000004", now.Add(-time.Hour))

	assert.Equal(t, Summary{Online: 2, Delayed: 1, Offline: 1}, dm.Snapshot())
}

func TestDeviceManager_RunReporter(t *testing.T) {
	dm := NewDeviceManager(0)
	dm.Touch("0000000000000001", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dm.RunReporter(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunReporter 未在 ctx 结束后返回")
	}

	// interval 为 0 时立即返回
	dm.RunReporter(context.Background(), 0)
}
