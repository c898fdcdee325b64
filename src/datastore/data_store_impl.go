package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// 支持的存储后端
const (
	BackendInfluxDB = "influxdb"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options 存储后端参数。
// Host 对 influxdb 是服务地址，对 sqlite 是文件路径，对 postgres 是 DSN。
type Options struct {
	Backend      string
	Host         string
	Org          string
	Token        string
	Measurement  string
	WriteTimeout time.Duration
}

// Open 按 Backend 创建对应的 Sink
func Open(ctx context.Context, opts Options) (inter.Sink, error) {
	switch opts.Backend {
	case "", BackendInfluxDB:
		return NewInfluxSink(opts.Host, opts.Org, opts.Token, opts.Measurement, opts.WriteTimeout), nil
	case BackendSqlite:
		s, err := NewSqliteSink(opts.Host)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := NewPostgresSink(ctx, opts.Host)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("不支持的存储后端: %q", opts.Backend)
	}
}
