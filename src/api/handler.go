package api

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nhirsama/GasSentinel-Gateway/src/datastore"
	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	"github.com/nhirsama/GasSentinel-Gateway/src/protocol"
)

// BusinessHandler 处理单条上报请求: 校验 -> 解析 -> 构造 -> 写入 -> 响应。
// 可被并发调用，只有写入阶段持有存储锁。
type BusinessHandler struct {
	sink    *datastore.GuardedSink
	bucket  string
	builder *protocol.Builder
	devices inter.DeviceTracker
}

// NewBusinessHandler 创建业务逻辑处理器，devices 可以为 nil
func NewBusinessHandler(sink *datastore.GuardedSink, builder *protocol.Builder, devices inter.DeviceTracker) *BusinessHandler {
	if builder == nil {
		builder = protocol.NewBuilder(nil)
	}
	return &BusinessHandler{
		sink:    sink,
		bucket:  sink.Bucket(),
		builder: builder,
		devices: devices,
	}
}

// Ingest 执行入库流水线，返回写入的数据点
func (h *BusinessHandler) Ingest(ctx context.Context, req inter.Request) (inter.DataPoint, error) {
	if req.Method != inter.MethodPut {
		return inter.DataPoint{}, fmt.Errorf("%w: %s", inter.ErrMethodNotAllowed, req.Method)
	}
	payload := string(req.Payload)
	if !protocol.IsValid(payload) {
		return inter.DataPoint{}, inter.ErrMalformedPayload
	}

	fields, err := protocol.Decode(payload)
	if err != nil {
		return inter.DataPoint{}, err
	}
	point := h.builder.Build(fields)

	if err := h.sink.WritePoints(ctx, []inter.DataPoint{point}); err != nil {
		return inter.DataPoint{}, err
	}
	if h.devices != nil {
		h.devices.Touch(point.DeviceID, point.Time)
	}
	return point, nil
}

// Handle 实现 inter.RequestHandler。传输层不期望响应时返回 nil。
func (h *BusinessHandler) Handle(ctx context.Context, req inter.Request) *inter.Response {
	point, err := h.Ingest(ctx, req)
	switch {
	case err == nil:
		log.Printf("API: 设备 %s 数据有效, 已写入 %s", point.DeviceID, h.bucket)
	case errors.Is(err, inter.ErrStorageWrite):
		log.Printf("API: [ERROR] 写入存储失败: %v", err)
	case errors.Is(err, inter.ErrDecodeInconsistency):
		log.Printf("API: [WARN] %v", err)
	default:
		log.Printf("API: payload 格式错误 (method: %s, %d 字节)", req.Method, len(req.Payload))
	}

	if !req.ExpectsResponse {
		return nil
	}
	return responseFor(err)
}

// responseFor 将流水线错误映射为响应。
// 设备只看到状态码，看不到存储层细节。
func responseFor(err error) *inter.Response {
	switch {
	case err == nil:
		return &inter.Response{Code: inter.CodeValid, Body: []byte{}}
	case errors.Is(err, inter.ErrStorageWrite):
		return &inter.Response{Code: inter.CodeInternalServerError, Body: []byte{}}
	default:
		return &inter.Response{Code: inter.CodeBadOption, Body: []byte(inter.ErrorMarker)}
	}
}
