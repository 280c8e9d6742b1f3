package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/circulation/pkg/errors"
	"github.com/xiebiao/circulation/pkg/response"
)

// pathID 解析路径中的正整数ID,失败时已写好响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, apperrors.ErrCodeInvalidParams, "参数错误: 非法的"+name)
		return 0, false
	}
	return uint(id), true
}

// bindFailed 参数绑定或校验失败
func bindFailed(c *gin.Context, err error) {
	response.Fail(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
}
