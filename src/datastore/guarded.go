package datastore

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// GuardedSink 持有进程内共享的存储客户端和目标 bucket。
// 底层客户端不保证并发安全，所有写入通过互斥锁串行化。
type GuardedSink struct {
	mu     sync.Mutex
	sink   inter.Sink
	bucket string
}

// Guarded 包装 sink，bucket 在启动后不再改变
func Guarded(sink inter.Sink, bucket string) *GuardedSink {
	return &GuardedSink{sink: sink, bucket: bucket}
}

// Bucket 返回目标 bucket 名称。
// bucket 构造后只读，不持锁。
func (g *GuardedSink) Bucket() string {
	return g.bucket
}

// WritePoints 持锁写入。底层返回的错误和 panic 都转换为 ErrStorageWrite，
// 不会影响其他请求。
func (g *GuardedSink) WritePoints(ctx context.Context, points []inter.DataPoint) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", inter.ErrStorageWrite, r)
		}
	}()

	if err := g.sink.Write(ctx, g.bucket, points); err != nil {
		return fmt.Errorf("%w: %w", inter.ErrStorageWrite, err)
	}
	return nil
}

func (g *GuardedSink) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sink.Close()
}
