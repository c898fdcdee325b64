package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// 上报 Payload 格式:
//
//	<16 位十六进制 EUI-64>,<int>,<int>,<int>,<int>,<int>,<int>,<int>,<int>
//
// 例: 0004A30B00112233,0,215,512,9981,310,287,-72,3298
//
// 等价于锚定的正则 ^[0-9A-Fa-f]{16}(,-?[0-9]+){8}$，这里手写扫描以避免每次请求编译正则。

// IsValid 判断 payload 是否完整匹配上报格式，不做子串搜索
func IsValid(payload string) bool {
	if len(payload) < inter.DeviceIDLength {
		return false
	}
	for i := 0; i < inter.DeviceIDLength; i++ {
		if !isHex(payload[i]) {
			return false
		}
	}

	i := inter.DeviceIDLength
	for field := 0; field < inter.FieldCount; field++ {
		if i >= len(payload) || payload[i] != ',' {
			return false
		}
		i++
		if i < len(payload) && payload[i] == '-' {
			i++
		}
		start := i
		for i < len(payload) && isDigit(payload[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(payload)
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Decode 将已通过 IsValid 的 payload 拆解为设备 ID 和各测量值。
//
// 设备 ID 之后的第一个整数字段写入 Reserved，不入库；
// 其后七个字段依次为 temp, hum, pres, cl1, cl2, rssi, vbat。
// 这与已部署设备的固件保持一致。
func Decode(payload string) (inter.DecodedFields, error) {
	var out inter.DecodedFields
	if len(payload) <= inter.DeviceIDLength+1 {
		return out, fmt.Errorf("%w: payload 长度 %d", inter.ErrDecodeInconsistency, len(payload))
	}

	if payload[inter.DeviceIDLength] != ',' {
		return out, fmt.Errorf("%w: 设备 ID 之后缺少分隔符", inter.ErrDecodeInconsistency)
	}

	out.DeviceID = payload[:inter.DeviceIDLength]
	tokens := strings.Split(payload[inter.DeviceIDLength+1:], ",")
	if len(tokens) != inter.FieldCount {
		return out, fmt.Errorf("%w: 期望 %d 个字段, 实际 %d", inter.ErrDecodeInconsistency, inter.FieldCount, len(tokens))
	}

	targets := []*float64{
		&out.Reserved,
		&out.Temperature,
		&out.Humidity,
		&out.Pressure,
		&out.CL1,
		&out.CL2,
		&out.RSSI,
		&out.VBat,
	}
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return out, fmt.Errorf("%w: 字段 %d (%q): %v", inter.ErrDecodeInconsistency, i, tok, err)
		}
		*targets[i] = v
	}
	return out, nil
}
