package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/xiebiao/circulation/internal/application/checkout"
	"github.com/xiebiao/circulation/internal/interface/http/dto"
	"github.com/xiebiao/circulation/pkg/response"
)

// CheckoutHandler 借阅HTTP处理器
type CheckoutHandler struct {
	open  *appcheckout.OpenCheckoutUseCase
	close *appcheckout.CloseCheckoutUseCase
}

// NewCheckoutHandler 创建借阅处理器
func NewCheckoutHandler(open *appcheckout.OpenCheckoutUseCase, close *appcheckout.CloseCheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{open: open, close: close}
}

// Open 柜台借出
// @Summary      借出
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OpenCheckoutRequest true "借阅信息"
// @Success      200 {object} response.Response{data=view.Checkout}
// @Failure      200 {object} response.Response "40001 无可借副本 / 40012 已有未归还借阅"
// @Router       /checkouts [post]
func (h *CheckoutHandler) Open(c *gin.Context) {
	var req dto.OpenCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.open.Execute(c.Request.Context(), appcheckout.OpenCheckoutRequest{
		TitleID:        req.TitleID,
		HolderID:       req.HolderID,
		LoanPeriodDays: req.LoanPeriodDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Close 还书
// @Summary      还书
// @Description  归还后副本优先分配给队首预约
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=view.Checkout}
// @Failure      200 {object} response.Response "40014 已归还"
// @Router       /checkouts/{id}/return [post]
func (h *CheckoutHandler) Close(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.close.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
