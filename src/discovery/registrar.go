package discovery

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/grandcat/zeroconf"
)

// ServiceConfig 广播的服务条目
type ServiceConfig struct {
	Instance string
	Service  string // 例如 _coap._udp
	Domain   string // 例如 local.
	Port     int
	Text     []string // TXT 记录，例如 status=open
}

type registration interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (registration, error)

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface) (registration, error) {
	s, err := zeroconf.Register(instance, service, domain, port, text, ifaces)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ZeroconfRegistrar 通过 mDNS/DNS-SD 在局域网内广播网关
type ZeroconfRegistrar struct {
	cfg      ServiceConfig
	register registerFunc
}

func NewZeroconfRegistrar(cfg ServiceConfig) *ZeroconfRegistrar {
	return &ZeroconfRegistrar{cfg: cfg, register: zeroconfRegister}
}

// Run 注册服务并阻塞到 ctx 结束。注册失败时记录日志并返回错误，调用方不应因此退出。
func (r *ZeroconfRegistrar) Run(ctx context.Context) error {
	c := r.cfg
	server, err := r.register(c.Instance, c.Service, c.Domain, c.Port, c.Text, nil)
	if err != nil {
		log.Printf("Discovery: 服务注册失败 (%s %s:%d): %v", c.Instance, c.Service, c.Port, err)
		return fmt.Errorf("注册 %s 失败: %w", c.Service, err)
	}
	log.Printf("Discovery: 服务已注册 %s.%s%s 端口 %d %v", c.Instance, c.Service, c.Domain, c.Port, c.Text)

	<-ctx.Done()
	server.Shutdown()
	log.Printf("Discovery: 服务已注销")
	return nil
}
