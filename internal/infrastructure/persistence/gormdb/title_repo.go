package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/circulation/internal/domain/title"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// titleRepository 图书仓储(GORM)
type titleRepository struct {
	db *gorm.DB
}

// NewTitleRepository 创建图书仓储
func NewTitleRepository(db *gorm.DB) title.Repository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, t *title.Title) error {
	model := toTitleModel(t)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return title.ErrISBNDuplicate
		}
		if isCheckViolation(err) {
			return title.ErrInvalidRange
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	t.ID = model.ID
	t.CreatedAt = local(model.CreatedAt)
	t.UpdatedAt = local(model.UpdatedAt)
	return nil
}

func (r *titleRepository) FindByID(ctx context.Context, id uint) (*title.Title, error) {
	return r.first(getDB(ctx, r.db), "id = ?", id)
}

func (r *titleRepository) FindByISBN(ctx context.Context, isbn string) (*title.Title, error) {
	return r.first(getDB(ctx, r.db), "isbn = ?", isbn)
}

// LockByID SELECT ... FOR UPDATE
// 必须在TxManager.Transaction内调用,否则锁随语句结束立即释放
func (r *titleRepository) LockByID(ctx context.Context, id uint) (*title.Title, error) {
	db := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(db, "id = ?", id)
}

func (r *titleRepository) first(db *gorm.DB, query string, arg any) (*title.Title, error) {
	var model TitleModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, title.ErrTitleNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toTitleEntity(&model), nil
}

func (r *titleRepository) Update(ctx context.Context, t *title.Title) error {
	model := toTitleModel(t)
	model.UpdatedAt = utc(time.Now())
	result := getDB(ctx, r.db).Model(&TitleModel{ID: t.ID}).Select("*").Omit("id", "created_at").Updates(model)
	if result.Error != nil {
		if isCheckViolation(result.Error) {
			return title.ErrInvariantViolation
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return title.ErrTitleNotFound
	}
	t.UpdatedAt = local(model.UpdatedAt)
	return nil
}

func (r *titleRepository) List(ctx context.Context, params title.ListParams) ([]*title.Title, int64, error) {
	query := getDB(ctx, r.db).Model(&TitleModel{})
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR author LIKE ?", keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	page, size := normalizePage(params.Page, params.PageSize)
	var models []TitleModel
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	titles := make([]*title.Title, len(models))
	for i := range models {
		titles[i] = toTitleEntity(&models[i])
	}
	return titles, total, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func toTitleModel(t *title.Title) *TitleModel {
	return &TitleModel{
		ID:              t.ID,
		ISBN:            t.ISBN,
		Name:            t.Name,
		Author:          t.Author,
		Category:        t.Category,
		Publisher:       t.Publisher,
		CoverURL:        t.CoverURL,
		Description:     t.Description,
		TotalCopies:     t.TotalCopies,
		AvailableCopies: t.AvailableCopies,
		Withdrawn:       t.Withdrawn,
		CreatedAt:       utc(t.CreatedAt),
		UpdatedAt:       utc(t.UpdatedAt),
	}
}

func toTitleEntity(m *TitleModel) *title.Title {
	return &title.Title{
		ID:              m.ID,
		ISBN:            m.ISBN,
		Name:            m.Name,
		Author:          m.Author,
		Category:        m.Category,
		Publisher:       m.Publisher,
		CoverURL:        m.CoverURL,
		Description:     m.Description,
		TotalCopies:     m.TotalCopies,
		AvailableCopies: m.AvailableCopies,
		Withdrawn:       m.Withdrawn,
		CreatedAt:       local(m.CreatedAt),
		UpdatedAt:       local(m.UpdatedAt),
	}
}
