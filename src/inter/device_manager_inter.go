package inter

import "time"

// DeviceStatus 定义设备的逻辑在线状态
type DeviceStatus int

const (
	StatusOffline DeviceStatus = iota // 离线
	StatusOnline                      // 在线
	StatusDelayed                     // 延迟（超过一半离线阈值未上报）
)

func (s DeviceStatus) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusDelayed:
		return "delayed"
	default:
		return "offline"
	}
}

// DeviceTracker 记录每个设备最近一次成功入库的时间
type DeviceTracker interface {
	// Touch 在数据点写入成功后调用
	Touch(deviceID string, at time.Time)

	// QueryDeviceStatus 查询设备在线状态，未见过的设备返回 ErrDeviceUnknown
	QueryDeviceStatus(deviceID string) (DeviceStatus, error)

	// Count 返回见过的设备数量
	Count() int
}
