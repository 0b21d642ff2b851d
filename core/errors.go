package core

// DomainError 是领域层的统一错误类型。
//
// 错误分级约定：
//   - 种群级错误（数据集损坏、配置非法）在启动时致命，直接中止整个运行
//   - 用户级错误（用户不存在、过滤后候选为空）逐用户隔离上报，不中止批处理
//   - 退化输入（零方差维度、空标签集、零向量）不是错误，各组件降级为中性值
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "config", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"       // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"   // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"     // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"   // 数据集缺失/损坏/缺必需列
	ErrorCodeInvalidConfig = "INVALID_CONFIG"  // 配置缺失/非法
	ErrorCodeInternalError = "INTERNAL_ERROR"  // 内部错误
)

// 模块名称常量
const (
	ModuleDataset      = "dataset"      // 数据集加载
	ModuleConfig       = "config"       // 配置
	ModuleEngine       = "engine"       // 编排
	ModuleStore        = "store"        // 存储
	ModuleFeatureStore = "featurestore" // 在线特征库
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为数据集级 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsInvalidConfig 检查错误是否为 INVALID_CONFIG
func IsInvalidConfig(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidConfig
	}
	return false
}
