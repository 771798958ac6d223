// Package errorx 定义带业务错误码的错误类型
// 所有对外可见的错误都应是 *CodeError，handler 层据此生成响应
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

// Error 实现 Go 标准 error 接口，使 CodeError 可作为 error 类型使用
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
// 此方法在 fmt.Println(err)、log.Error(err)、fmt.Sprintf("%v", err) 等场景被隐式调用
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
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
// 用法: errorx.Wrap(err, CodeNotFound, "用户不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "用户 %s 不存在", userId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// Is 判断 err 链上是否存在与 target 错误码相同的 CodeError
// 预定义错误是共享实例，业务层经常 Wrap 后再返回，因此按错误码比较而非指针比较
func Is(err error, target *CodeError) bool {
	if err == nil || target == nil {
		return false
	}
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code == target.Code
	}
	return false
}

// 业务状态码常量定义
const (
	CodeSuccess            = 1000 // 成功
	CodeInvalidParam       = 1001 // 请求参数错误
	CodeServerBusy         = 1005 // 服务繁忙
	CodeUnauthorized       = 1006 // 未授权/认证失败
	CodeForbidden          = 1007 // 无权访问
	CodeNotFound           = 1008 // 资源不存在
	CodeConflict           = 1009 // 唯一约束冲突（仅内部使用，不返回给前端）
	CodeDBError            = 1010 // 数据库错误
	CodeCacheError         = 1011 // 缓存错误
	CodeClassInactive      = 1012 // 班级已停用
	CodeTeacherNotAssigned = 1013 // 班级未分配教师
	CodeEmptyMessage       = 1014 // 消息内容为空
	CodeTooManyConnections = 1015 // 连接数超过上限
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 Is 比较
var (
	ErrInvalidParam       = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy         = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized       = New(CodeUnauthorized, "认证失败，请重新登录")
	ErrForbidden          = New(CodeForbidden, "无权访问该班级聊天室")
	ErrClassNotFound      = New(CodeNotFound, "班级不存在")
	ErrClassInactive      = New(CodeClassInactive, "班级已停用")
	ErrTeacherNotAssigned = New(CodeTeacherNotAssigned, "班级尚未分配教师")
	ErrEmptyMessage       = New(CodeEmptyMessage, "消息内容不能为空")
	// ErrTooManyConnections 的文案会原样推送给客户端
	ErrTooManyConnections = New(CodeTooManyConnections, "too many active connections")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	// 检查是否是 CodeError 且 Code == CodeNotFound
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	// 检查底层错误消息是否包含 "record not found"
	return err != nil && err.Error() == "record not found"
}

// Public 返回可以暴露给客户端的错误
// 数据库、缓存、唯一约束冲突以及非 CodeError 一律转换为 ErrServerBusy，避免泄露存储细节
func Public(err error) *CodeError {
	var codeErr *CodeError
	if !errors.As(err, &codeErr) {
		return ErrServerBusy
	}
	switch codeErr.Code {
	case CodeDBError, CodeCacheError, CodeConflict, CodeServerBusy:
		return ErrServerBusy
	}
	return New(codeErr.Code, codeErr.Msg)
}
