package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 GASSENTINEL_LISTEN_PORT
const EnvPrefix = "GASSENTINEL"

// Usage 启动参数说明
const Usage = "<host> <org> <token> <bucket>"

type Listen struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type Storage struct {
	Backend      string        `mapstructure:"backend"`
	Measurement  string        `mapstructure:"measurement"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Discovery struct {
	Enabled  bool   `mapstructure:"enabled"`
	Instance string `mapstructure:"instance"`
	Service  string `mapstructure:"service"`
	Domain   string `mapstructure:"domain"`
	Port     int    `mapstructure:"port"`
	Status   string `mapstructure:"status"`
}

type Network struct {
	RequireIPv4 bool `mapstructure:"require_ipv4"`
	RequireIPv6 bool `mapstructure:"require_ipv6"`
}

type Devices struct {
	OfflineAfter   time.Duration `mapstructure:"offline_after"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
}

// Config 网关配置。四个位置参数必填，其余来自环境变量或配置文件。
type Config struct {
	Host   string `mapstructure:"-"`
	Org    string `mapstructure:"-"`
	Token  string `mapstructure:"-"`
	Bucket string `mapstructure:"-"`

	Listen    Listen    `mapstructure:"listen"`
	Storage   Storage   `mapstructure:"storage"`
	Discovery Discovery `mapstructure:"discovery"`
	Network   Network   `mapstructure:"network"`
	Devices   Devices   `mapstructure:"devices"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen.address", "")
	v.SetDefault("listen.port", 5682)

	v.SetDefault("storage.backend", "influxdb")
	v.SetDefault("storage.measurement", inter.Measurement)
	v.SetDefault("storage.write_timeout", 10*time.Second)

	v.SetDefault("discovery.enabled", true)
	v.SetDefault("discovery.instance", "gassentinel-gateway")
	v.SetDefault("discovery.service", "_coap._udp")
	v.SetDefault("discovery.domain", "local.")
	v.SetDefault("discovery.port", 0)
	v.SetDefault("discovery.status", "open")

	v.SetDefault("network.require_ipv4", false)
	v.SetDefault("network.require_ipv6", false)

	v.SetDefault("devices.offline_after", 10*time.Minute)
	v.SetDefault("devices.report_interval", 5*time.Minute)
}

// Load 解析位置参数 (不含程序名) 并合并环境变量与可选的配置文件。
// 配置文件路径由 GASSENTINEL_CONFIG 指定。
func Load(args []string) (*Config, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("%w: 需要 4 个参数, 实际 %d", inter.ErrUsage, len(args))
	}
	for i, a := range args {
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("%w: 第 %d 个参数为空", inter.ErrUsage, i+1)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("config"); err != nil {
		return nil, err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Host, cfg.Org, cfg.Token, cfg.Bucket = args[0], args[1], args[2], args[3]

	if cfg.Listen.Port < 0 || cfg.Listen.Port > 65535 {
		return nil, fmt.Errorf("listen.port 超出范围: %d", cfg.Listen.Port)
	}
	return cfg, nil
}

// ListenAddr CoAP 监听地址，未指定 address 时监听所有网卡
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Listen.Address, strconv.Itoa(c.Listen.Port))
}

// AdvertisedPort 广播的端口，默认与监听端口一致
func (c *Config) AdvertisedPort() int {
	if c.Discovery.Port > 0 {
		return c.Discovery.Port
	}
	return c.Listen.Port
}

// ServiceText 广播的 TXT 记录
func (c *Config) ServiceText() []string {
	return []string{"status=" + c.Discovery.Status}
}
