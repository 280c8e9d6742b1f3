package circulation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// NoticeKind 通知类型
type NoticeKind string

const (
	NoticeHoldQueued      NoticeKind = "hold_queued"
	NoticeHoldActivated   NoticeKind = "hold_activated"
	NoticeHoldCancelled   NoticeKind = "hold_cancelled"
	NoticeHoldExpired     NoticeKind = "hold_expired"
	NoticeCheckoutOpened  NoticeKind = "checkout_opened"
	NoticeCheckoutClosed  NoticeKind = "checkout_closed"
	NoticeDueReminder     NoticeKind = "due_reminder"
	NoticeCheckoutOverdue NoticeKind = "checkout_overdue"
)

// Notice 发给读者的通知
// 收件人只用HolderID标识,联系方式由消费方解析
type Notice struct {
	Kind       NoticeKind     `json:"kind"`
	HolderID   uint           `json:"holder_id"`
	TitleID    uint           `json:"title_id"`
	Context    map[string]any `json:"context,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notifier 通知发送方
// 发送失败只记日志,不影响已提交的流通操作
type Notifier interface {
	Send(ctx context.Context, n Notice) error
}

// NotifierFunc 函数适配器
type NotifierFunc func(ctx context.Context, n Notice) error

// Send 实现Notifier
func (f NotifierFunc) Send(ctx context.Context, n Notice) error {
	return f(ctx, n)
}

// outbox 事务内暂存的通知,提交后才发送
type outbox struct {
	mu      sync.Mutex
	notices []Notice
}

type outboxKey struct{}

func withOutbox(ctx context.Context) (context.Context, *outbox) {
	box := &outbox{}
	return context.WithValue(ctx, outboxKey{}, box), box
}

func (b *outbox) add(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

func (b *outbox) drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// enqueueNotice 把通知放进当前调用的outbox
// 不在withTitle内时直接发送
func (s *service) enqueueNotice(ctx context.Context, n Notice) {
	if n.OccurredAt.IsZero() {
		n.OccurredAt = s.now()
	}
	if box, ok := ctx.Value(outboxKey{}).(*outbox); ok {
		box.add(n)
		return
	}
	s.dispatch(ctx, []Notice{n})
}

func (s *service) dispatch(ctx context.Context, notices []Notice) {
	if s.notifier == nil {
		return
	}
	for _, n := range notices {
		if err := s.notifier.Send(ctx, n); err != nil {
			s.logger.Warn("发送通知失败",
				zap.String("kind", string(n.Kind)),
				zap.Uint("holder_id", n.HolderID),
				zap.Uint("title_id", n.TitleID),
				zap.Error(err),
			)
		}
	}
}
