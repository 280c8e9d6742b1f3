package gormdb

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/circulation/internal/domain/hold"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

var liveHoldStatuses = []string{string(hold.StatusPending), string(hold.StatusActive)}

// holdRepository 预约仓储(GORM)
type holdRepository struct {
	db *gorm.DB
}

// NewHoldRepository 创建预约仓储
func NewHoldRepository(db *gorm.DB) hold.Repository {
	return &holdRepository{db: db}
}

func (r *holdRepository) Create(ctx context.Context, h *hold.Hold) error {
	model := toHoldModel(h)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建预约失败")
	}
	h.ID = model.ID
	h.UpdatedAt = local(model.UpdatedAt)
	return nil
}

func (r *holdRepository) FindByID(ctx context.Context, id uint) (*hold.Hold, error) {
	var model HoldModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, notFoundOr(err, hold.ErrHoldNotFound, "查询预约失败")
	}
	return toHoldEntity(&model), nil
}

func (r *holdRepository) FindLive(ctx context.Context, titleID, holderID uint) (*hold.Hold, error) {
	var model HoldModel
	err := getDB(ctx, r.db).
		Where("title_id = ? AND holder_id = ? AND status IN ?", titleID, holderID, liveHoldStatuses).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, hold.ErrHoldNotFound, "查询预约失败")
	}
	return toHoldEntity(&model), nil
}

func (r *holdRepository) Update(ctx context.Context, h *hold.Hold) error {
	model := toHoldModel(h)
	model.UpdatedAt = utc(time.Now())
	result := getDB(ctx, r.db).Model(&HoldModel{ID: h.ID}).Select("*").Omit("id").Updates(model)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新预约失败")
	}
	if result.RowsAffected == 0 {
		return hold.ErrHoldNotFound
	}
	h.UpdatedAt = local(model.UpdatedAt)
	return nil
}

func (r *holdRepository) ListPending(ctx context.Context, titleID uint) ([]*hold.Hold, error) {
	return r.find(getDB(ctx, r.db).
		Where("title_id = ? AND status = ?", titleID, hold.StatusPending).
		Order("requested_at, id"))
}

func (r *holdRepository) ListActive(ctx context.Context, titleID uint) ([]*hold.Hold, error) {
	return r.find(getDB(ctx, r.db).
		Where("title_id = ? AND status = ?", titleID, hold.StatusActive).
		Order("expires_at, id"))
}

func (r *holdRepository) ListExpired(ctx context.Context, asOf time.Time) ([]*hold.Hold, error) {
	return r.find(getDB(ctx, r.db).
		Where("status = ? AND expires_at < ?", hold.StatusActive, utc(asOf)).
		Order("title_id, requested_at, id"))
}

func (r *holdRepository) ListByHolder(ctx context.Context, holderID uint) ([]*hold.Hold, error) {
	return r.find(getDB(ctx, r.db).
		Where("holder_id = ?", holderID).
		Order("requested_at DESC, id DESC"))
}

func (r *holdRepository) find(query *gorm.DB) ([]*hold.Hold, error) {
	var models []HoldModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询预约列表失败")
	}
	out := make([]*hold.Hold, len(models))
	for i := range models {
		out[i] = toHoldEntity(&models[i])
	}
	return out, nil
}

func toHoldModel(h *hold.Hold) *HoldModel {
	return &HoldModel{
		ID:            h.ID,
		TitleID:       h.TitleID,
		HolderID:      h.HolderID,
		RequestedAt:   utc(h.RequestedAt),
		QueuePosition: h.QueuePosition,
		ActivatedAt:   utcPtr(h.ActivatedAt),
		ExpiresAt:     utcPtr(h.ExpiresAt),
		ClosedAt:      utcPtr(h.ClosedAt),
		Status:        string(h.Status),
		UpdatedAt:     utc(h.UpdatedAt),
	}
}

func toHoldEntity(m *HoldModel) *hold.Hold {
	return &hold.Hold{
		ID:            m.ID,
		TitleID:       m.TitleID,
		HolderID:      m.HolderID,
		RequestedAt:   local(m.RequestedAt),
		QueuePosition: m.QueuePosition,
		ActivatedAt:   localPtr(m.ActivatedAt),
		ExpiresAt:     localPtr(m.ExpiresAt),
		ClosedAt:      localPtr(m.ClosedAt),
		Status:        hold.Status(m.Status),
		UpdatedAt:     local(m.UpdatedAt),
	}
}
