package discovery

import (
	"fmt"
	"net"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// Addresses 本机用于对外服务的地址，没有时为 nil
type Addresses struct {
	IPv4 net.IP
	IPv6 net.IP
}

func (a Addresses) String() string {
	return fmt.Sprintf("IPv4: %v, IPv6: %v", a.IPv4, a.IPv6)
}

// LocalAddresses 枚举已启用的非回环网卡，选出 IPv4 和 IPv6 地址。
// requireV4 / requireV6 为 true 时缺少对应地址即失败，否则有一个即可。
func LocalAddresses(requireV4, requireV6 bool) (Addresses, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return Addresses{}, fmt.Errorf("枚举网卡失败: %w", err)
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return SelectAddresses(ips, requireV4, requireV6)
}

// SelectAddresses 从候选地址中挑选。IPv6 优先全局单播，其次链路本地。
func SelectAddresses(ips []net.IP, requireV4, requireV6 bool) (Addresses, error) {
	var out Addresses
	var linkLocal6 net.IP
	for _, ip := range ips {
		if ip == nil || ip.IsLoopback() || ip.IsUnspecified() || ip.IsMulticast() {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			if out.IPv4 == nil && !v4.IsLinkLocalUnicast() {
				out.IPv4 = v4
			}
			continue
		}
		if ip.IsLinkLocalUnicast() {
			if linkLocal6 == nil {
				linkLocal6 = ip
			}
			continue
		}
		if out.IPv6 == nil {
			out.IPv6 = ip
		}
	}
	if out.IPv6 == nil {
		out.IPv6 = linkLocal6
	}

	switch {
	case requireV4 && out.IPv4 == nil:
		return out, fmt.Errorf("%w: 缺少 IPv4 地址", inter.ErrNoLocalAddress)
	case requireV6 && out.IPv6 == nil:
		return out, fmt.Errorf("%w: 缺少 IPv6 地址", inter.ErrNoLocalAddress)
	case out.IPv4 == nil && out.IPv6 == nil:
		return out, inter.ErrNoLocalAddress
	}
	return out, nil
}
