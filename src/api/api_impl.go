package api

import (
	"bytes"
	"context"
	"io"
	"log"
	"net"
	"sync"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/mux"
	coapnet "github.com/plgd-dev/go-coap/v3/net"
	"github.com/plgd-dev/go-coap/v3/options"
	"github.com/plgd-dev/go-coap/v3/udp"
)

// Server CoAP (UDP) 接入服务。
// 每个请求由 go-coap 的 worker 并发处理，任意路径都交给同一个 handler。
type Server struct {
	handler inter.RequestHandler
	addr    string

	mu        sync.Mutex
	localAddr net.Addr
	ready     chan struct{}
}

// NewServer 创建 CoAP 服务，addr 形如 "[::]:5682"
func NewServer(handler inter.RequestHandler, addr string) *Server {
	return &Server{
		handler: handler,
		addr:    addr,
		ready:   make(chan struct{}),
	}
}

// Ready 在开始监听后关闭
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr 返回实际监听地址，Ready 之前为 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localAddr
}

// Serve 监听并阻塞，ctx 结束后停止服务并返回 nil
func (s *Server) Serve(ctx context.Context) error {
	l, err := coapnet.NewListenUDP("udp", s.addr)
	if err != nil {
		return err
	}
	defer l.Close()

	router := mux.NewRouter()
	router.DefaultHandle(mux.HandlerFunc(s.serveCOAP))
	srv := udp.NewServer(options.WithMux(router))

	s.mu.Lock()
	s.localAddr = l.LocalAddr()
	s.mu.Unlock()
	close(s.ready)
	log.Printf("API: CoAP 服务已启动于 %s", l.LocalAddr())

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-stopped:
		}
	}()

	err = srv.Serve(l)
	close(stopped)
	if ctx.Err() != nil {
		log.Printf("API: CoAP 服务已停止")
		return nil
	}
	return err
}

func (s *Server) serveCOAP(w mux.ResponseWriter, r *mux.Message) {
	var payload []byte
	if body := r.Body(); body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			log.Printf("API: 读取 payload 失败: %v", err)
		}
		payload = b
	}

	req := inter.Request{
		Method:          methodOf(r.Code()),
		Payload:         payload,
		ExpectsResponse: expectsResponse(r.Type()),
	}
	resp := s.handler.Handle(r.Context(), req)
	if resp == nil {
		return
	}

	var body io.ReadSeeker
	if len(resp.Body) > 0 {
		body = bytes.NewReader(resp.Body)
	}
	if err := w.SetResponse(codeOf(resp.Code), message.TextPlain, body); err != nil {
		log.Printf("API: 设置响应失败: %v", err)
	}
}

func methodOf(c codes.Code) inter.Method {
	switch c {
	case codes.GET:
		return inter.MethodGet
	case codes.POST:
		return inter.MethodPost
	case codes.PUT:
		return inter.MethodPut
	case codes.DELETE:
		return inter.MethodDelete
	default:
		return inter.MethodUnknown
	}
}

// 只有 CON/NON 请求需要响应，ACK/RST 不回复
func expectsResponse(t message.Type) bool {
	return t == message.Confirmable || t == message.NonConfirmable
}

func codeOf(c inter.ResponseCode) codes.Code {
	switch c {
	case inter.CodeValid:
		return codes.Valid
	case inter.CodeBadOption:
		return codes.BadOption
	default:
		return codes.InternalServerError
	}
}
