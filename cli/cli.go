package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nhirsama/GasSentinel-Gateway/src/api"
	"github.com/nhirsama/GasSentinel-Gateway/src/config"
	"github.com/nhirsama/GasSentinel-Gateway/src/datastore"
	"github.com/nhirsama/GasSentinel-Gateway/src/device_manager"
	"github.com/nhirsama/GasSentinel-Gateway/src/discovery"
	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	"github.com/nhirsama/GasSentinel-Gateway/src/protocol"
)

// Run 进程入口，返回后进程以对应状态码退出
func Run() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.Load(args[1:])
	if err != nil {
		if errors.Is(err, inter.ErrUsage) {
			fmt.Printf("Usage: %s %s\n", filepath.Base(args[0]), config.Usage)
		} else {
			log.Printf("配置错误: %v", err)
		}
		return 1
	}

	addrs, err := discovery.LocalAddresses(cfg.Network.RequireIPv4, cfg.Network.RequireIPv6)
	if err != nil {
		log.Printf("无法确定本地地址, 退出: %v", err)
		return 1
	}
	log.Printf("本地地址 %s", addrs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := start(ctx, cfg, nil); err != nil {
		log.Printf("网关异常退出: %v", err)
		return 1
	}
	fmt.Println("系统正常关闭")
	return 0
}

// start 组装各模块并阻塞到 ctx 结束。onReady 在 CoAP 开始监听后被调用，可以为 nil。
func start(ctx context.Context, cfg *config.Config, onReady func(net.Addr)) error {
	sink, err := datastore.Open(ctx, datastore.Options{
		Backend:      cfg.Storage.Backend,
		Host:         cfg.Host,
		Org:          cfg.Org,
		Token:        cfg.Token,
		Measurement:  cfg.Storage.Measurement,
		WriteTimeout: cfg.Storage.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("初始化存储失败: %w", err)
	}
	guarded := datastore.Guarded(sink, cfg.Bucket)
	defer guarded.Close()

	dm := device_manager.NewDeviceManager(cfg.Devices.OfflineAfter)
	go dm.RunReporter(ctx, cfg.Devices.ReportInterval)
	handler := api.NewBusinessHandler(guarded, protocol.NewBuilder(nil), dm)
	server := api.NewServer(handler, cfg.ListenAddr())

	if cfg.Discovery.Enabled {
		registrar := discovery.NewZeroconfRegistrar(discovery.ServiceConfig{
			Instance: cfg.Discovery.Instance,
			Service:  cfg.Discovery.Service,
			Domain:   cfg.Discovery.Domain,
			Port:     cfg.AdvertisedPort(),
			Text:     cfg.ServiceText(),
		})
		// 注册失败只记录日志，不影响接入服务
		go registrar.Run(ctx)
	}

	if onReady != nil {
		go func() {
			select {
			case <-server.Ready():
				onReady(server.Addr())
			case <-ctx.Done():
			}
		}()
	}

	log.Printf("网关写入 bucket %s (后端: %s)", cfg.Bucket, cfg.Storage.Backend)
	return server.Serve(ctx)
}
