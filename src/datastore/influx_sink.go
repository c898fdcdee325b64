package datastore

import (
	"context"
	"fmt"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// InfluxSink 通过 InfluxDB v2 HTTP API 同步写入
type InfluxSink struct {
	client       influxdb2.Client
	org          string
	measurement  string
	writeTimeout time.Duration
}

// NewInfluxSink 创建 InfluxDB 写入端。writeTimeout 为 0 时不设超时。
func NewInfluxSink(host, org, token, measurement string, writeTimeout time.Duration) *InfluxSink {
	if measurement == "" {
		measurement = inter.Measurement
	}
	log.Printf("DataStore: InfluxDB 客户端指向 %s (org: %s)", host, org)
	return &InfluxSink{
		client:       influxdb2.NewClient(host, token),
		org:          org,
		measurement:  measurement,
		writeTimeout: writeTimeout,
	}
}

func (s *InfluxSink) toPoint(p inter.DataPoint) *write.Point {
	return influxdb2.NewPoint(s.measurement, p.Tags(), p.Fields(), p.Time)
}

// Write 使用阻塞写 API，返回时写入已完成
func (s *InfluxSink) Write(ctx context.Context, destination string, points []inter.DataPoint) error {
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	lines := make([]*write.Point, 0, len(points))
	for _, p := range points {
		lines = append(lines, s.toPoint(p))
	}

	writeAPI := s.client.WriteAPIBlocking(s.org, destination)
	if err := writeAPI.WritePoint(ctx, lines...); err != nil {
		return fmt.Errorf("influxdb 写入 bucket %s 失败: %w", destination, err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
