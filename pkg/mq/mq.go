// Package mq 基于RabbitMQ的消息发布与消费
//
// 流通通知发布到topic类型的Exchange,routing key形如notice.hold_activated,
// 下游(邮件、短信、推送)按需绑定notice.*或具体类型。
package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/circulation/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrClosed 发布者已关闭
var ErrClosed = errors.New("mq: publisher closed")

// Channel 发布所需的amqp.Channel子集
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher 消息发布者
// amqp.Channel不支持并发发布,内部加锁串行化
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *zap.Logger
	closed   bool
}

// Dial 连接RabbitMQ并声明持久化的Exchange
func Dial(url, exchange, exchangeType string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	p := NewPublisher(ch, exchange, logger)
	p.conn = conn
	p.logger.Info("消息发布者已连接", zap.String("type", exchangeType))
	return p, nil
}

// NewPublisher 基于已有Channel创建发布者
func NewPublisher(ch Channel, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger.With(zap.String("exchange", exchange)),
	}
}

// Publish 以JSON发布一条持久化消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, p.exchange, routingKey, "failure")
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal, p.exchange, routingKey, "success")
	p.logger.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Close 关闭Channel和连接,可重复调用
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Handler 消息处理函数,返回error时消息会被Nack
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewConsumer 声明队列并按routingKeys绑定到Exchange
// queue为空时声明一个独占的临时队列,断开后自动删除
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
	}

	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	temporary := queue == ""
	q, err := ch.QueueDeclare(queue, !temporary, temporary, temporary, false, nil)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			cleanup()
			return nil, fmt.Errorf("绑定Queue失败(%s): %w", key, err)
		}
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   q.Name,
		logger:  logger.With(zap.String("queue", q.Name)),
	}, nil
}

// Consume 阻塞消费,直到ctx取消或Channel关闭
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	c.logger.Info("开始消费消息")
	return consumeLoop(ctx, msgs, handler, c.logger)
}

// consumeLoop 处理失败的消息重新入队一次,再次失败则丢弃
func consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, handler Handler, logger *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("mq: delivery channel closed")
			}
			if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
				requeue := !msg.Redelivered
				logger.Warn("消息处理失败",
					zap.String("routing_key", msg.RoutingKey),
					zap.String("message_id", msg.MessageId),
					zap.Bool("requeue", requeue),
					zap.Error(err),
				)
				_ = msg.Nack(false, requeue)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	return errors.Join(c.channel.Close(), c.conn.Close())
}
