package protocol

import (
	"sync/atomic"
	"time"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// Builder 根据解析结果和入库时间构造数据点
type Builder struct {
	now  func() time.Time
	last atomic.Int64 // 上一次发出的纳秒时间戳
}

// NewBuilder 创建构造器，now 为 nil 时使用 time.Now
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build 只读取一次时钟。
// 墙上时钟回拨时沿用上一次的时间戳，保证同一进程内时间戳不递减（允许相等）。
func (b *Builder) Build(fields inter.DecodedFields) inter.DataPoint {
	ts := b.now().UnixNano()
	for {
		last := b.last.Load()
		if ts < last {
			ts = last
			break
		}
		if b.last.CompareAndSwap(last, ts) {
			break
		}
	}

	return inter.DataPoint{
		DeviceID:    fields.DeviceID,
		Temperature: fields.Temperature,
		Humidity:    fields.Humidity,
		Pressure:    fields.Pressure,
		CL1:         fields.CL1,
		CL2:         fields.CL2,
		RSSI:        fields.RSSI,
		VBat:        fields.VBat,
		Time:        time.Unix(0, ts),
	}
}
