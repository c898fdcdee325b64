package api

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/udp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer 在随机端口启动 CoAP 服务，测试结束后停止
func startServer(t *testing.T, h inter.RequestHandler) string {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(h, "127.0.0.1:0")

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("Server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Server failed to start in time")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Server did not stop")
		}
	})
	return srv.Addr().String()
}

func TestServer_Put(t *testing.T) {
	sink := &fakeSink{}
	h, _ := newTestHandler(sink)
	addr := startServer(t, h)

	co, err := udp.Dial(addr)
	require.NoError(t, err)
	defer co.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// 有效上报
	resp, err := co.Put(ctx, "/", message.TextPlain, bytes.NewReader([]byte(validPayload)))
	require.NoError(t, err)
	assert.Equal(t, codes.Valid, resp.Code())
	body, _ := resp.ReadBody()
	assert.Empty(t, body)
	require.Len(t, sink.points(), 1)
	assert.Equal(t, "0004A30B00112233", sink.points()[0].DeviceID)

	// 任意路径都会被处理
	resp, err = co.Put(ctx, "/telemetry/v1", message.TextPlain, bytes.NewReader([]byte(validPayload)))
	require.NoError(t, err)
	assert.Equal(t, codes.Valid, resp.Code())
	assert.Len(t, sink.points(), 2)
}

func TestServer_Malformed(t *testing.T) {
	sink := &fakeSink{}
	h, _ := newTestHandler(sink)
	addr := startServer(t, h)

	co, err := udp.Dial(addr)
	require.NoError(t, err)
	defer co.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// 缺少字段
	resp, err := co.Put(ctx, "/", message.TextPlain, bytes.NewReader([]byte("0004A30B00112233,0,215")))
	require.NoError(t, err)
	assert.Equal(t, codes.BadOption, resp.Code())
	body, err := resp.ReadBody()
	require.NoError(t, err)
	assert.Equal(t, []byte("0"), body)

	// 方法错误
	resp, err = co.Post(ctx, "/", message.TextPlain, bytes.NewReader([]byte(validPayload)))
	require.NoError(t, err)
	assert.Equal(t, codes.BadOption, resp.Code())

	// GET 没有 body
	resp, err = co.Get(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, codes.BadOption, resp.Code())

	assert.Empty(t, sink.points())
}

func TestServer_WriteFailure(t *testing.T) {
	sink := &fakeSink{failOn: map[int]error{0: assert.AnError}}
	h, _ := newTestHandler(sink)
	addr := startServer(t, h)

	co, err := udp.Dial(addr)
	require.NoError(t, err)
	defer co.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := co.Put(ctx, "/", message.TextPlain, bytes.NewReader([]byte(validPayload)))
	require.NoError(t, err)
	assert.Equal(t, codes.InternalServerError, resp.Code())

	resp, err = co.Put(ctx, "/", message.TextPlain, bytes.NewReader([]byte(validPayload)))
	require.NoError(t, err)
	assert.Equal(t, codes.Valid, resp.Code())
}

func TestServer_ConcurrentClients(t *testing.T) {
	sink := &fakeSink{}
	h, _ := newTestHandler(sink)
	addr := startServer(t, h)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			co, err := udp.Dial(addr)
			if !assert.NoError(t, err) {
				return
			}
			defer co.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			resp, err := co.Put(ctx, "/", message.TextPlain, bytes.NewReader([]byte(validPayload)))
			if assert.NoError(t, err) {
				assert.Equal(t, codes.Valid, resp.Code())
			}
		}()
	}
	wg.Wait()
	assert.Len(t, sink.points(), 8)
}

func TestCodeMapping(t *testing.T) {
	assert.Equal(t, inter.MethodPut, methodOf(codes.PUT))
	assert.Equal(t, inter.MethodGet, methodOf(codes.GET))
	assert.Equal(t, inter.MethodUnknown, methodOf(codes.Content))

	assert.Equal(t, codes.Valid, codeOf(inter.CodeValid))
	assert.Equal(t, codes.BadOption, codeOf(inter.CodeBadOption))
	assert.Equal(t, codes.InternalServerError, codeOf(inter.CodeInternalServerError))

	assert.True(t, expectsResponse(message.Confirmable))
	assert.True(t, expectsResponse(message.NonConfirmable))
	assert.False(t, expectsResponse(message.Acknowledgement))
	assert.False(t, expectsResponse(message.Reset))
}
