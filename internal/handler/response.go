package handler

import (
	"errors"
	"net/http"

	"class_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构体
type ResponseData struct {
	Code int `json:"code"`           // 业务响应状态码
	Msg  any `json:"msg"`            // 提示信息
	Data any `json:"data,omitempty"` // 数据
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 通用错误处理方法
// 业务错误原样返回错误码和消息；数据库、缓存错误以及非 CodeError 记录日志后统一返回服务繁忙
// 使用示例：
//
//	if err := svc.DoSomething(ctx); err != nil {
//	    HandleError(c, err)
//	    return
//	}
func HandleError(c *gin.Context, err error) {
	pub := errorx.Public(err)
	if pub == errorx.ErrServerBusy {
		zap.L().Error("system error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
	}
	c.JSON(httpStatus(pub.Code), ResponseData{Code: pub.Code, Msg: pub.Msg})
}

// AbortWithError 中间件中使用，终止后续处理链
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}

// httpStatus 认证失败使用 401，其余业务错误沿用 200 + 业务码
// WebSocket 握手阶段客户端只能看到 HTTP 状态码
func httpStatus(code int) int {
	if code == errorx.CodeUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusOK
}

// HandleParamError 处理参数绑定错误（带 validator 翻译支持）
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		// 翻译后去除结构体名前缀
		translatedErrs := RemoveTopStruct(validationErrs.Translate(Trans))
		c.JSON(http.StatusOK, ResponseData{
			Code: errorx.ErrInvalidParam.Code,
			Msg:  translatedErrs,
		})
		return
	}

	// 非 validator 错误（如表单格式错误）
	zap.L().Warn("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.ErrInvalidParam.Code,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}
