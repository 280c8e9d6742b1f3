// Package title 图书相关用例: 登记、查询、库存调整、下架、队列快照
package title

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/title"
	"github.com/xiebiao/circulation/internal/infrastructure/catalog"
	"github.com/xiebiao/circulation/pkg/tracing"
)

const tracerName = "application/title"

// MetadataFetcher 外部书目查询
type MetadataFetcher interface {
	FetchByISBN(ctx context.Context, isbn string) (*catalog.Metadata, error)
}

// RegisterTitleUseCase 新书登记用例
// 设计说明:
// 1. 请求里没填的元数据用外部目录补全,请求里填了的以请求为准
// 2. 外部目录不可用时照常登记,只记日志
type RegisterTitleUseCase struct {
	titles  title.Repository
	fetcher MetadataFetcher
	logger  *zap.Logger
}

// NewRegisterTitleUseCase fetcher可为nil(不查外部目录)
func NewRegisterTitleUseCase(titles title.Repository, fetcher MetadataFetcher, logger *zap.Logger) *RegisterTitleUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterTitleUseCase{titles: titles, fetcher: fetcher, logger: logger}
}

// RegisterTitleRequest 登记请求DTO
type RegisterTitleRequest struct {
	ISBN        string
	Name        string // 为空时取外部目录的书名
	Author      string
	Category    string
	Publisher   string
	CoverURL    string
	Description string
	Copies      int // 初始副本数,全部可借
}

// RegisterTitleResponse 登记响应DTO
type RegisterTitleResponse struct {
	view.Title
	Enriched bool `json:"enriched"` // 是否用外部目录补全过
}

// Execute 执行登记
func (uc *RegisterTitleUseCase) Execute(ctx context.Context, req RegisterTitleRequest) (resp *RegisterTitleResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "title.Register")
	defer func() { tracing.End(span, err) }()

	// 1. ISBN格式与唯一性
	isbn := title.NormalizeISBN(req.ISBN)
	if !title.IsValidISBN(isbn) {
		return nil, title.ErrInvalidISBN
	}
	if _, err := uc.titles.FindByISBN(ctx, isbn); err == nil {
		return nil, title.ErrISBNDuplicate
	} else if !errors.Is(err, title.ErrTitleNotFound) {
		return nil, err
	}

	// 2. 查外部目录
	md := uc.lookup(ctx, isbn)
	name := req.Name
	if name == "" && md != nil {
		name = md.Name
	}

	// 3. 创建实体
	t, err := title.NewTitle(isbn, name, req.Author, req.Copies)
	if err != nil {
		return nil, err
	}
	t.Category = req.Category
	t.Publisher = req.Publisher
	t.CoverURL = req.CoverURL
	t.Description = req.Description
	if md != nil {
		t.UpdateMetadata(md.Author, md.Category, md.Publisher, md.CoverURL, md.Description)
	}
	if t.Category == "" {
		t.Category = catalog.DefaultCategory
	}

	// 4. 持久化(并发登记同一ISBN时由唯一索引兜底)
	if err := uc.titles.Create(ctx, t); err != nil {
		return nil, err
	}

	uc.logger.Info("登记新书",
		zap.Uint("title_id", t.ID),
		zap.String("isbn", t.ISBN),
		zap.Int("copies", t.TotalCopies),
		zap.Bool("enriched", md != nil),
	)
	return &RegisterTitleResponse{Title: view.FromTitle(t), Enriched: md != nil}, nil
}

func (uc *RegisterTitleUseCase) lookup(ctx context.Context, isbn string) *catalog.Metadata {
	if uc.fetcher == nil {
		return nil
	}
	md, err := uc.fetcher.FetchByISBN(ctx, isbn)
	switch {
	case err == nil:
		return md
	case errors.Is(err, catalog.ErrMetadataNotFound):
		uc.logger.Info("外部目录中没有该ISBN", zap.String("isbn", isbn))
	default:
		uc.logger.Warn("查询外部目录失败", zap.String("isbn", isbn), zap.Error(err))
	}
	return nil
}
