package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apphold "github.com/xiebiao/circulation/internal/application/hold"
	"github.com/xiebiao/circulation/internal/interface/http/dto"
	"github.com/xiebiao/circulation/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
	"github.com/xiebiao/circulation/pkg/response"
)

// HoldHandler 预约HTTP处理器
type HoldHandler struct {
	create   *apphold.CreateHoldUseCase
	cancel   *apphold.CancelHoldUseCase
	remove   *apphold.RemoveHoldUseCase
	confirm  *apphold.ConfirmHoldUseCase
	transfer *apphold.TransferHoldUseCase
}

// NewHoldHandler 创建预约处理器
func NewHoldHandler(
	create *apphold.CreateHoldUseCase,
	cancel *apphold.CancelHoldUseCase,
	remove *apphold.RemoveHoldUseCase,
	confirm *apphold.ConfirmHoldUseCase,
	transfer *apphold.TransferHoldUseCase,
) *HoldHandler {
	return &HoldHandler{
		create:   create,
		cancel:   cancel,
		remove:   remove,
		confirm:  confirm,
		transfer: transfer,
	}
}

// Create 预约
// @Summary      预约图书
// @Description  有可借副本时直接保留(active),否则进入队列(pending);馆员可通过holder_id代约
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateHoldRequest true "预约信息"
// @Success      200 {object} response.Response{data=view.Hold}
// @Failure      200 {object} response.Response "40013 重复预约 / 40015 已下架 / 40104 权限不足"
// @Router       /holds [post]
func (h *HoldHandler) Create(c *gin.Context) {
	var req dto.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	holderID := middleware.MustGetHolderID(c)
	if req.HolderID != 0 && req.HolderID != holderID {
		if !middleware.IsLibrarian(c) {
			response.Error(c, apperrors.ErrForbidden)
			return
		}
		holderID = req.HolderID
	}

	result, err := h.create.Execute(c.Request.Context(), apphold.CreateHoldRequest{
		TitleID:  req.TitleID,
		HolderID: holderID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 读者取消自己的预约
// @Summary      取消预约
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=view.Hold}
// @Failure      200 {object} response.Response "40002 状态不允许 / 40104 不是本人预约"
// @Router       /holds/{id}/cancel [post]
func (h *HoldHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.cancel.Execute(c.Request.Context(), apphold.CancelHoldRequest{
		HoldID:   id,
		HolderID: middleware.MustGetHolderID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Remove 馆员移除预约
// @Summary      移除预约
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=view.Hold}
// @Router       /holds/{id} [delete]
func (h *HoldHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.remove.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Confirm 到馆取书
// @Summary      预约取书
// @Description  active预约转为借阅,请求体可省略
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Param        request body dto.ConfirmHoldRequest false "借期"
// @Success      200 {object} response.Response{data=view.Checkout}
// @Failure      200 {object} response.Response "40002 预约未生效或已过期"
// @Router       /holds/{id}/confirm [post]
func (h *HoldHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}
	result, err := h.confirm.Execute(c.Request.Context(), apphold.ConfirmHoldRequest{
		HoldID:         id,
		LoanPeriodDays: req.LoanPeriodDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Transfer 预约转到另一本书
// @Summary      转移预约
// @Description  先在目标图书排队再释放原预约,任一步失败都会回滚
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Param        request body dto.TransferHoldRequest true "目标图书"
// @Success      200 {object} response.Response{data=apphold.TransferHoldResponse}
// @Router       /holds/{id}/transfer [post]
func (h *HoldHandler) Transfer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.TransferHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.transfer.Execute(c.Request.Context(), apphold.TransferHoldRequest{
		HoldID:  id,
		TitleID: req.TitleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
