// Package notify 流通通知的投递实现
//
//   - MQNotifier: 发布到RabbitMQ,经熔断器保护
//   - LogNotifier: 未启用MQ时只写日志
//   - Metered: 按通知类型计数后转发
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/circuitbreaker"
	"github.com/xiebiao/circulation/pkg/metrics"
)

// RoutingKeyPrefix 路由键前缀,完整路由键为notice.<kind>
const RoutingKeyPrefix = "notice."

// Publisher 消息发布
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Message 发到MQ的消息体
type Message struct {
	ID         string                 `json:"id"`
	Kind       circulation.NoticeKind `json:"kind"`
	HolderID   uint                   `json:"holder_id"`
	TitleID    uint                   `json:"title_id"`
	Context    map[string]any         `json:"context,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// MQNotifier 通过MQ投递通知
type MQNotifier struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
}

// NewMQNotifier 创建MQ通知
// 单次发布超时默认3s,熔断器连续5次失败后打开30s
func NewMQNotifier(publisher Publisher, logger *zap.Logger) *MQNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := circuitbreaker.New("notice-publisher", circuitbreaker.Config{
		Timeout: 30 * time.Second,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("熔断器状态变化",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
	return &MQNotifier{publisher: publisher, breaker: breaker, timeout: 3 * time.Second}
}

// Send 实现circulation.Notifier
func (n *MQNotifier) Send(ctx context.Context, notice circulation.Notice) error {
	msg := Message{
		ID:         uuid.NewString(),
		Kind:       notice.Kind,
		HolderID:   notice.HolderID,
		TitleID:    notice.TitleID,
		Context:    notice.Context,
		OccurredAt: notice.OccurredAt,
	}
	return n.breaker.Do(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		return n.publisher.Publish(ctx, RoutingKeyPrefix+string(notice.Kind), msg)
	})
}

// LogNotifier 只写日志
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send 实现circulation.Notifier
func (n *LogNotifier) Send(_ context.Context, notice circulation.Notice) error {
	n.logger.Info("通知",
		zap.String("kind", string(notice.Kind)),
		zap.Uint("holder_id", notice.HolderID),
		zap.Uint("title_id", notice.TitleID),
		zap.Any("context", notice.Context),
	)
	return nil
}

// Metered 先计数再转发
// 通知只在事务提交后发出,因此计数即已提交的流通事件数
func Metered(next circulation.Notifier) circulation.Notifier {
	return circulation.NotifierFunc(func(ctx context.Context, notice circulation.Notice) error {
		metrics.RecordEvent(string(notice.Kind))
		return next.Send(ctx, notice)
	})
}
