// Package view 用例对外返回的DTO
// 时间统一格式化为字符串,HTTP层直接序列化
package view

import (
	"time"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// TimeLayout 响应中的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// Title 图书
type Title struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Name            string `json:"name"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	Publisher       string `json:"publisher"`
	CoverURL        string `json:"cover_url"`
	Description     string `json:"description,omitempty"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Hold 预约
type Hold struct {
	ID            uint   `json:"id"`
	TitleID       uint   `json:"title_id"`
	HolderID      uint   `json:"holder_id"`
	Status        string `json:"status"`
	QueuePosition *int   `json:"queue_position,omitempty"`
	RequestedAt   string `json:"requested_at"`
	ActivatedAt   string `json:"activated_at,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	ClosedAt      string `json:"closed_at,omitempty"`
}

// Checkout 借阅
type Checkout struct {
	ID           uint   `json:"id"`
	TitleID      uint   `json:"title_id"`
	HolderID     uint   `json:"holder_id"`
	Status       string `json:"status"`
	CheckoutDate string `json:"checkout_date"`
	DueDate      string `json:"due_date"`
	ReturnDate   string `json:"return_date,omitempty"`
}

// Queue 某书的队列
type Queue struct {
	Title   Title  `json:"title"`
	Pending []Hold `json:"pending"`
	Active  []Hold `json:"active"`
}

// History 读者历史
type History struct {
	HolderID  uint       `json:"holder_id"`
	Holds     []Hold     `json:"holds"`
	Checkouts []Checkout `json:"checkouts"`
}

// FromTitle 转换图书
func FromTitle(t *title.Title) Title {
	return Title{
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
		Status:          string(t.Status()),
		CreatedAt:       formatTime(t.CreatedAt),
		UpdatedAt:       formatTime(t.UpdatedAt),
	}
}

// FromHold 转换预约
func FromHold(h *hold.Hold) Hold {
	return Hold{
		ID:            h.ID,
		TitleID:       h.TitleID,
		HolderID:      h.HolderID,
		Status:        string(h.Status),
		QueuePosition: h.QueuePosition,
		RequestedAt:   formatTime(h.RequestedAt),
		ActivatedAt:   formatTimePtr(h.ActivatedAt),
		ExpiresAt:     formatTimePtr(h.ExpiresAt),
		ClosedAt:      formatTimePtr(h.ClosedAt),
	}
}

// FromCheckout 转换借阅
func FromCheckout(c *checkout.Checkout) Checkout {
	return Checkout{
		ID:           c.ID,
		TitleID:      c.TitleID,
		HolderID:     c.HolderID,
		Status:       string(c.Status),
		CheckoutDate: formatTime(c.CheckoutDate),
		DueDate:      formatTime(c.DueDate),
		ReturnDate:   formatTimePtr(c.ReturnDate),
	}
}

// FromQueueState 转换队列快照
func FromQueueState(s *circulation.QueueState) Queue {
	return Queue{
		Title:   FromTitle(s.Title),
		Pending: fromHolds(s.Pending),
		Active:  fromHolds(s.Active),
	}
}

// FromHistory 转换读者历史
func FromHistory(h *circulation.History) History {
	checkouts := make([]Checkout, len(h.Checkouts))
	for i, c := range h.Checkouts {
		checkouts[i] = FromCheckout(c)
	}
	return History{
		HolderID:  h.HolderID,
		Holds:     fromHolds(h.Holds),
		Checkouts: checkouts,
	}
}

func fromHolds(holds []*hold.Hold) []Hold {
	out := make([]Hold, len(holds))
	for i, h := range holds {
		out[i] = FromHold(h)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
