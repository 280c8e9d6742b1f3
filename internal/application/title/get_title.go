package title

import (
	"context"

	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// GetTitleUseCase 图书详情
type GetTitleUseCase struct {
	titles title.Repository
}

// NewGetTitleUseCase 创建详情用例
func NewGetTitleUseCase(titles title.Repository) *GetTitleUseCase {
	return &GetTitleUseCase{titles: titles}
}

// Execute 查询单本图书
func (uc *GetTitleUseCase) Execute(ctx context.Context, titleID uint) (*view.Title, error) {
	t, err := uc.titles.FindByID(ctx, titleID)
	if err != nil {
		return nil, err
	}
	v := view.FromTitle(t)
	return &v, nil
}

// ListTitlesUseCase 图书列表
type ListTitlesUseCase struct {
	titles title.Repository
}

// NewListTitlesUseCase 创建列表用例
func NewListTitlesUseCase(titles title.Repository) *ListTitlesUseCase {
	return &ListTitlesUseCase{titles: titles}
}

// ListTitlesRequest 列表请求DTO
type ListTitlesRequest struct {
	Page     int
	PageSize int
	Keyword  string // 搜索书名、作者
}

// ListTitlesResponse 列表响应DTO
type ListTitlesResponse struct {
	List     []view.Title `json:"list"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Execute 分页查询
// page默认1,pageSize默认20,最大100
func (uc *ListTitlesUseCase) Execute(ctx context.Context, req ListTitlesRequest) (*ListTitlesResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	titles, total, err := uc.titles.List(ctx, title.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
	})
	if err != nil {
		return nil, err
	}

	list := make([]view.Title, len(titles))
	for i, t := range titles {
		list[i] = view.FromTitle(t)
		list[i].Description = ""
	}
	return &ListTitlesResponse{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}
