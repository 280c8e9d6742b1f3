package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

var openCheckoutStatuses = []string{string(checkout.StatusActive), string(checkout.StatusOverdue)}

// checkoutRepository 借阅仓储(GORM)
type checkoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository 创建借阅仓储
func NewCheckoutRepository(db *gorm.DB) checkout.Repository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(ctx context.Context, c *checkout.Checkout) error {
	model := toCheckoutModel(c)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅失败")
	}
	c.ID = model.ID
	c.UpdatedAt = local(model.UpdatedAt)
	return nil
}

func (r *checkoutRepository) FindByID(ctx context.Context, id uint) (*checkout.Checkout, error) {
	var model CheckoutModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, notFoundOr(err, checkout.ErrCheckoutNotFound, "查询借阅失败")
	}
	return toCheckoutEntity(&model), nil
}

func (r *checkoutRepository) FindOpen(ctx context.Context, titleID, holderID uint) (*checkout.Checkout, error) {
	var model CheckoutModel
	err := getDB(ctx, r.db).
		Where("title_id = ? AND holder_id = ? AND status IN ?", titleID, holderID, openCheckoutStatuses).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, checkout.ErrCheckoutNotFound, "查询借阅失败")
	}
	return toCheckoutEntity(&model), nil
}

func (r *checkoutRepository) Update(ctx context.Context, c *checkout.Checkout) error {
	model := toCheckoutModel(c)
	model.UpdatedAt = utc(time.Now())
	result := getDB(ctx, r.db).Model(&CheckoutModel{ID: c.ID}).Select("*").Omit("id").Updates(model)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅失败")
	}
	if result.RowsAffected == 0 {
		return checkout.ErrCheckoutNotFound
	}
	c.UpdatedAt = local(model.UpdatedAt)
	return nil
}

func (r *checkoutRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*checkout.Checkout, error) {
	return r.find(getDB(ctx, r.db).
		Where("status = ? AND due_date < ?", checkout.StatusActive, utc(asOf)).
		Order("due_date, id"))
}

func (r *checkoutRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*checkout.Checkout, error) {
	return r.find(getDB(ctx, r.db).
		Where("status = ? AND due_date >= ? AND due_date < ?", checkout.StatusActive, utc(from), utc(to)).
		Order("due_date, id"))
}

func (r *checkoutRepository) ListByHolder(ctx context.Context, holderID uint) ([]*checkout.Checkout, error) {
	return r.find(getDB(ctx, r.db).
		Where("holder_id = ?", holderID).
		Order("checkout_date DESC, id DESC"))
}

func (r *checkoutRepository) find(query *gorm.DB) ([]*checkout.Checkout, error) {
	var models []CheckoutModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅列表失败")
	}
	out := make([]*checkout.Checkout, len(models))
	for i := range models {
		out[i] = toCheckoutEntity(&models[i])
	}
	return out, nil
}

// notFoundOr 把ErrRecordNotFound换成领域错误,其余包装为系统错误
func notFoundOr(err, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Wrap(err, msg)
}

func toCheckoutModel(c *checkout.Checkout) *CheckoutModel {
	return &CheckoutModel{
		ID:           c.ID,
		TitleID:      c.TitleID,
		HolderID:     c.HolderID,
		CheckoutDate: utc(c.CheckoutDate),
		DueDate:      utc(c.DueDate),
		ReturnDate:   utcPtr(c.ReturnDate),
		Status:       string(c.Status),
		UpdatedAt:    utc(c.UpdatedAt),
	}
}

func toCheckoutEntity(m *CheckoutModel) *checkout.Checkout {
	return &checkout.Checkout{
		ID:           m.ID,
		TitleID:      m.TitleID,
		HolderID:     m.HolderID,
		CheckoutDate: local(m.CheckoutDate),
		DueDate:      local(m.DueDate),
		ReturnDate:   localPtr(m.ReturnDate),
		Status:       checkout.Status(m.Status),
		UpdatedAt:    local(m.UpdatedAt),
	}
}
