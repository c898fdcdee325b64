package device_manager

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// DeviceManager 记录设备最近一次成功入库的时间。
// 只使用 sync.Map，不会与存储写入共用锁。
type DeviceManager struct {
	lastSeen sync.Map // map[string]time.Time
	count    atomic.Int64

	now       func() time.Time
	DeathLine time.Duration
}

// NewDeviceManager deathLine 为 0 时使用 10 分钟
func NewDeviceManager(deathLine time.Duration) *DeviceManager {
	if deathLine <= 0 {
		deathLine = 10 * time.Minute
	}
	return &DeviceManager{
		now:       time.Now,
		DeathLine: deathLine,
	}
}

func (d *DeviceManager) Touch(deviceID string, at time.Time) {
	if _, loaded := d.lastSeen.Swap(deviceID, at); !loaded {
		d.count.Add(1)
		log.Printf("Device: 首次收到设备 %s 的数据", deviceID)
	}
}

func (d *DeviceManager) QueryDeviceStatus(deviceID string) (inter.DeviceStatus, error) {
	val, ok := d.lastSeen.Load(deviceID)
	if !ok {
		return inter.StatusOffline, fmt.Errorf("%w: %s", inter.ErrDeviceUnknown, deviceID)
	}
	delta := d.now().Sub(val.(time.Time))

	switch {
	case delta < d.DeathLine/2:
		return inter.StatusOnline, nil
	case delta < d.DeathLine:
		return inter.StatusDelayed, nil
	default:
		return inter.StatusOffline, nil
	}
}

func (d *DeviceManager) Count() int {
	return int(d.count.Load())
}

// Summary 各在线状态的设备数量
type Summary struct {
	Online  int
	Delayed int
	Offline int
}

// Snapshot 统计当前所有见过的设备状态
func (d *DeviceManager) Snapshot() Summary {
	var s Summary
	d.lastSeen.Range(func(key, _ any) bool {
		st, err := d.QueryDeviceStatus(key.(string))
		if err != nil {
			return true
		}
		switch st {
		case inter.StatusOnline:
			s.Online++
		case inter.StatusDelayed:
			s.Delayed++
		default:
			s.Offline++
		}
		return true
	})
	return s
}

// RunReporter 每隔 interval 输出一次设备状态统计，阻塞到 ctx 结束。interval <= 0 时直接返回。
func (d *DeviceManager) RunReporter(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := d.Snapshot()
			log.Printf("Device: 在线 %d, 延迟 %d, 离线 %d", s.Online, s.Delayed, s.Offline)
		}
	}
}
