package handler

import (
	"errors"
	"net/http"

	"church_app_server/pkg/errorx"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构
// 业务错误一律 HTTP 200，通过 code 区分；只有中间件的鉴权失败使用 401/403
type ResponseData struct {
	Code int `json:"code"`
	Msg  any `json:"msg"`
	Data any `json:"data"`
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 业务错误原样返回 code 与 msg
// 数据库、缓存类错误和未知错误记日志后统一返回服务繁忙，不向客户端暴露底层信息
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		switch codeErr.Code {
		case errorx.CodeDBError, errorx.CodeCacheError, errorx.CodeCollectionUnavailable:
		default:
			c.JSON(http.StatusOK, ResponseData{Code: codeErr.Code, Msg: codeErr.Msg})
			return
		}
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("user_id", c.GetString("user_id")),
		zap.Error(err),
	)
	sentry.CaptureException(err)
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.ErrServerBusy.Code,
		Msg:  errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError 参数绑定失败
// 校验错误翻译成 {字段: 提示}，JSON 格式错误只返回通用提示
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.JSON(http.StatusOK, ResponseData{
			Code: errorx.CodeInvalidParam,
			Msg:  RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	zap.L().Debug("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.ErrInvalidParam.Code,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}
