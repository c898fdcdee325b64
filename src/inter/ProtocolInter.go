package inter

// =============================================================================
// GasSentinel 上报协议常量与类型定义
// =============================================================================

const (
	// DeviceIDLength 设备 EUI-64 的十六进制字符数
	DeviceIDLength = 16
	// FieldCount 设备 ID 之后的整数字段数量
	FieldCount = 8
	// ErrorMarker 错误响应的固定 Body
	ErrorMarker = "0"
)

// Method 请求方法，与传输层无关
type Method int

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
	// MethodPut 协议中的 "store" 动词，唯一允许入库的方法
	MethodPut
	MethodDelete
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ResponseCode 网关产生的响应状态
type ResponseCode int

const (
	// CodeValid 2.03 Valid，写入成功
	CodeValid ResponseCode = iota
	// CodeBadOption 4.02 Bad Option，方法或 Payload 不合法
	CodeBadOption
	// CodeInternalServerError 5.00，存储写入失败
	CodeInternalServerError
)

func (c ResponseCode) String() string {
	switch c {
	case CodeValid:
		return "2.03 Valid"
	case CodeBadOption:
		return "4.02 Bad Option"
	case CodeInternalServerError:
		return "5.00 Internal Server Error"
	default:
		return "unknown"
	}
}

// Request 表示传输层交付的一条请求
type Request struct {
	// Method 请求方法
	Method Method
	// Payload 原始 Body (UTF-8 文本)
	Payload []byte
	// ExpectsResponse 传输层是否期望返回响应对象
	ExpectsResponse bool
}

// Response 表示交还给传输层的响应
type Response struct {
	Code ResponseCode
	Body []byte
}

// DecodedFields 校验通过的 Payload 拆解后的字段
type DecodedFields struct {
	DeviceID string
	// Reserved 设备 ID 之后的第一个整数字段，不入库
	Reserved    float64
	Temperature float64
	Humidity    float64
	Pressure    float64
	CL1         float64
	CL2         float64
	RSSI        float64
	VBat        float64
}
