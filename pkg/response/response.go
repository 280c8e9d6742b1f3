// Package response 统一的HTTP响应信封
//
// 业务错误同样返回HTTP 200,由code区分: 0成功,4xxxx客户端错误,5xxxx服务端错误。
// 报表的CSV下载是唯一不走信封的响应。
package response

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// Response 响应信封
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Error 把err转成信封
// 非AppError按内部错误处理,内部原因只写日志不返回给客户端
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	logFailure(c, appErr)
	c.JSON(http.StatusOK, Response{Code: appErr.Code, Message: appErr.Message})
}

// Fail 直接指定错误码,用于参数和鉴权这类没有AppError的场景
func Fail(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{Code: code, Message: message})
}

func logFailure(c *gin.Context, appErr *apperrors.AppError) {
	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Int("code", appErr.Code),
	}
	switch {
	case appErr.Code >= apperrors.ErrCodeInternal:
		zap.L().Error("请求处理失败", append(fields, zap.Error(appErr.Err))...)
	case appErr.Err != nil:
		zap.L().Warn("请求被拒绝", append(fields, zap.Error(appErr.Err))...)
	default:
		// 库存不足、重复预约等是正常的业务结果
		zap.L().Debug("请求被拒绝", append(fields, zap.String("message", appErr.Message))...)
	}
}

// PageData 分页列表
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPageData pageSize<=0时TotalPages为0
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	p := &PageData{List: list, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}

// SuccessWithPage 分页成功
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}

// CSV 以附件形式下载,文件名为name_YYYYMMDD.csv
// write失败时响应头已经发出,只能记日志
func CSV(c *gin.Context, name string, write func(w io.Writer) error) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := write(c.Writer); err != nil {
		zap.L().Warn("写出CSV失败",
			zap.String("report", name),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
	}
}
