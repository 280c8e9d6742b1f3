package handler

import (
	"github.com/gin-gonic/gin"

	apptitle "github.com/xiebiao/circulation/internal/application/title"
	"github.com/xiebiao/circulation/internal/interface/http/dto"
	"github.com/xiebiao/circulation/pkg/response"
)

// TitleHandler 图书HTTP处理器
type TitleHandler struct {
	register  *apptitle.RegisterTitleUseCase
	get       *apptitle.GetTitleUseCase
	list      *apptitle.ListTitlesUseCase
	adjust    *apptitle.AdjustStockUseCase
	addCopies *apptitle.AddCopiesUseCase
	withdraw  *apptitle.WithdrawTitleUseCase
	queue     *apptitle.QueueStateUseCase
}

// NewTitleHandler 创建图书处理器
func NewTitleHandler(
	register *apptitle.RegisterTitleUseCase,
	get *apptitle.GetTitleUseCase,
	list *apptitle.ListTitlesUseCase,
	adjust *apptitle.AdjustStockUseCase,
	addCopies *apptitle.AddCopiesUseCase,
	withdraw *apptitle.WithdrawTitleUseCase,
	queue *apptitle.QueueStateUseCase,
) *TitleHandler {
	return &TitleHandler{
		register:  register,
		get:       get,
		list:      list,
		adjust:    adjust,
		addCopies: addCopies,
		withdraw:  withdraw,
		queue:     queue,
	}
}

// Register 登记新书
// @Summary      登记新书
// @Description  馆员登记新书,缺失的元数据从OpenLibrary补全
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterTitleRequest true "图书信息"
// @Success      200 {object} response.Response{data=apptitle.RegisterTitleResponse}
// @Failure      200 {object} response.Response "40009 ISBN已存在 / 40900 参数错误"
// @Router       /titles [post]
func (h *TitleHandler) Register(c *gin.Context) {
	var req dto.RegisterTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.register.Execute(c.Request.Context(), apptitle.RegisterTitleRequest{
		ISBN:        req.ISBN,
		Name:        req.Name,
		Author:      req.Author,
		Category:    req.Category,
		Publisher:   req.Publisher,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		Copies:      req.Copies,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=view.Title}
// @Router       /titles/{id} [get]
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        keyword query string false "书名或作者"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /titles [get]
func (h *TitleHandler) List(c *gin.Context) {
	var req dto.ListTitlesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.list.Execute(c.Request.Context(), apptitle.ListTitlesRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// AdjustStock 校正库存
// @Summary      校正库存
// @Description  可借数增加时按增量推进预约队列
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AdjustStockRequest true "库存"
// @Success      200 {object} response.Response{data=view.Title}
// @Failure      200 {object} response.Response "40011 库存数量非法 / 40015 已下架"
// @Router       /titles/{id}/stock [put]
func (h *TitleHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.adjust.Execute(c.Request.Context(), apptitle.AdjustStockRequest{
		TitleID:   id,
		Total:     *req.Total,
		Available: *req.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddCopies 补货
// @Summary      补货
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AddCopiesRequest true "补货数量"
// @Success      200 {object} response.Response{data=view.Title}
// @Router       /titles/{id}/copies [post]
func (h *TitleHandler) AddCopies(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.addCopies.Execute(c.Request.Context(), apptitle.AddCopiesRequest{TitleID: id, Copies: req.Copies})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Withdraw 下架
// @Summary      下架图书
// @Description  排队中的预约全部移除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=view.Title}
// @Router       /titles/{id} [delete]
func (h *TitleHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.withdraw.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Queue 预约队列
// @Summary      预约队列
// @Description  排队中的预约按位置排序,已保留的预约按过期时间排序;可能短暂落后于最新变更
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=view.Queue}
// @Router       /titles/{id}/queue [get]
func (h *TitleHandler) Queue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queue.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
