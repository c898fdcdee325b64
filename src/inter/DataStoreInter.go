package inter

import (
	"context"
	"time"
)

// Measurement 写入时序库使用的 measurement 名称
const Measurement = "gassentinel"

// DataPoint 一次有效上报对应的时序数据点
// 构造后不再修改，交给 Sink 写入一次后即丢弃。
type DataPoint struct {
	DeviceID    string    `json:"device_eui64"` // tag
	Temperature float64   `json:"temp"`
	Humidity    float64   `json:"hum"`
	Pressure    float64   `json:"pres"`
	CL1         float64   `json:"cl1"`
	CL2         float64   `json:"cl2"`
	RSSI        float64   `json:"rssi"`
	VBat        float64   `json:"vbat"`
	Time        time.Time `json:"time"` // 网关入库时间，纳秒精度
}

// Fields 返回数据点的 field 映射，key 与存储列名一致
func (p DataPoint) Fields() map[string]interface{} {
	return map[string]interface{}{
		"temp": p.Temperature,
		"hum":  p.Humidity,
		"pres": p.Pressure,
		"cl1":  p.CL1,
		"cl2":  p.CL2,
		"rssi": p.RSSI,
		"vbat": p.VBat,
	}
}

// Tags 返回数据点的 tag 映射
func (p DataPoint) Tags() map[string]string {
	return map[string]string{"device_eui64": p.DeviceID}
}

// Sink 定义了时序存储的写入接口。
// 实现可以是 InfluxDB、SQLite 或 PostgreSQL，调用方不关心具体后端。
// 实现不要求并发安全，并发访问由调用方加锁保护。
type Sink interface {
	// Write 将 points 写入 destination (bucket)。
	// 返回前写入必须已完成或失败，超时由实现自行负责。
	Write(ctx context.Context, destination string, points []DataPoint) error

	// Close 释放底层客户端
	Close() error
}
