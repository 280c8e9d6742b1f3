package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	appsweep "github.com/xiebiao/circulation/internal/application/sweep"
	"github.com/xiebiao/circulation/internal/interface/http/dto"
	"github.com/xiebiao/circulation/pkg/response"
)

// SweepHandler 批处理HTTP处理器
type SweepHandler struct {
	sweep     *appsweep.RunSweepUseCase
	reminders *appsweep.DueRemindersUseCase
}

// NewSweepHandler 创建批处理处理器
func NewSweepHandler(sweep *appsweep.RunSweepUseCase, reminders *appsweep.DueRemindersUseCase) *SweepHandler {
	return &SweepHandler{sweep: sweep, reminders: reminders}
}

// Run 手动触发过期与逾期批处理
// @Summary      运行批处理
// @Description  过期到期未取的预约并推进队列,再标记逾期借阅;其他实例正在运行时返回skipped
// @Tags         批处理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RunSweepRequest false "基准时间"
// @Success      200 {object} response.Response{data=appsweep.RunSweepResponse}
// @Router       /sweeps [post]
func (h *SweepHandler) Run(c *gin.Context) {
	var req dto.RunSweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}
	var asOf time.Time
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	result, err := h.sweep.Execute(c.Request.Context(), appsweep.RunSweepRequest{AsOf: asOf})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Reminders 手动发送到期提醒
// @Summary      到期提醒
// @Description  给当天到期的借阅发提醒,同一天重复调用不会重复发送
// @Tags         批处理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RunSweepRequest false "基准日期"
// @Success      200 {object} response.Response{data=appsweep.DueRemindersResponse}
// @Router       /sweeps/reminders [post]
func (h *SweepHandler) Reminders(c *gin.Context) {
	var req dto.RunSweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}
	var day time.Time
	if req.AsOf != nil {
		day = *req.AsOf
	}
	result, err := h.reminders.Execute(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
