package inter

import (
	"context"
	"errors"
)

var (
	// ErrMalformedPayload Payload 不符合上报格式
	ErrMalformedPayload = errors.New("api: payload 格式错误")
	// ErrMethodNotAllowed 请求方法不是 PUT
	ErrMethodNotAllowed = errors.New("api: 请求方法不允许")
	// ErrDecodeInconsistency 通过校验的 Payload 解析失败
	ErrDecodeInconsistency = errors.New("protocol: payload 校验通过但解析失败")
	// ErrStorageWrite 存储写入失败
	ErrStorageWrite = errors.New("datastore: 写入失败")
	// ErrDeviceUnknown 设备从未上报过
	ErrDeviceUnknown = errors.New("device: 未知设备")
	// ErrNoLocalAddress 找不到可用的本地网络地址
	ErrNoLocalAddress = errors.New("discovery: 没有可用的本地地址")
	// ErrUsage 启动参数不足
	ErrUsage = errors.New("cli: 启动参数不足")
)

// RequestHandler 处理一条请求并给出响应。
// 传输层不期望响应时返回 nil。实现必须可被并发调用。
type RequestHandler interface {
	Handle(ctx context.Context, req Request) *Response
}

// Registrar 在局域网内广播网关服务，生命周期独立于请求处理
type Registrar interface {
	// Run 注册服务并阻塞到 ctx 结束。注册失败只记录日志，不影响网关。
	Run(ctx context.Context) error
}
