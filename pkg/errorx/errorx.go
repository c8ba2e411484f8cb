package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 error 接口
// 存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "群组不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "群组 %s 不存在", groupId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
// 错误链上有多个 CodeError 时取最外层
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// 业务状态码常量定义
const (
	CodeSuccess               = 1000 // 成功
	CodeInvalidParam          = 1001 // 请求参数错误
	CodeUserExist             = 1002 // 用户已存在
	CodeUserNotExist          = 1003 // 用户不存在
	CodeInvalidPassword       = 1004 // 密码错误
	CodeServerBusy            = 1005 // 服务繁忙
	CodeUnauthorized          = 1006 // 未授权/认证失败
	CodeForbidden             = 1007 // 权限不足
	CodeNotFound              = 1008 // 资源不存在
	CodeConflict              = 1009 // 唯一约束冲突
	CodeDBError               = 1010 // 数据库错误
	CodeCacheError            = 1011 // 缓存错误
	CodeCollectionUnavailable = 1012 // 数据表未创建/不可用
	CodePendingApproval       = 1013 // 入群申请待审核
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam    = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy      = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized    = New(CodeUnauthorized, "请先登录")
	ErrForbidden       = New(CodeForbidden, "权限不足")
	ErrPendingApproval = New(CodePendingApproval, "加入申请正在等待管理员审核")
)

// Kind 错误类别
// 由数据访问层根据驱动错误码给出，业务层据此决定降级路径，而不是匹配错误文本
type Kind int

const (
	KindUnknown Kind = iota
	KindCollectionUnavailable
	KindUnauthorized
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindCollectionUnavailable:
		return "collection_unavailable"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// KindOf 沿错误链查找第一个可归类的业务码
func KindOf(err error) Kind {
	for err != nil {
		var codeErr *CodeError
		if !errors.As(err, &codeErr) {
			return KindUnknown
		}
		switch codeErr.Code {
		case CodeCollectionUnavailable:
			return KindCollectionUnavailable
		case CodeUnauthorized, CodeForbidden:
			return KindUnauthorized
		case CodeConflict, CodeUserExist:
			return KindConflict
		case CodeNotFound, CodeUserNotExist:
			return KindNotFound
		}
		err = codeErr.cause
	}
	return KindUnknown
}

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsCollectionUnavailable 检查错误是否表示数据表尚未创建
func IsCollectionUnavailable(err error) bool {
	return KindOf(err) == KindCollectionUnavailable
}
