package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLock 多实例部署时保证同一时刻只有一个实例在跑批处理
type SweepLock struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewSweepLock 创建批处理锁
func NewSweepLock(client *redis.Client, key string, logger *zap.Logger) *SweepLock {
	if key == "" {
		key = "circulation:sweep:lock"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepLock{client: client, key: key, logger: logger}
}

// TryAcquire SET NX PX,拿不到锁时返回(nil, false, nil)
// 调用方必须在完成后调用release
func (l *SweepLock) TryAcquire(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, false, apperrors.Wrap(err, "获取批处理锁失败")
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// 原ctx可能已超时,释放锁用独立的短超时
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		switch {
		case err != nil:
			// 锁会在TTL后自动过期,期间其他实例跳过批处理
			l.logger.Warn("释放批处理锁失败", zap.String("key", l.key), zap.Error(err))
		case deleted == 0:
			l.logger.Warn("批处理锁已过期,批处理耗时超过TTL", zap.String("key", l.key))
		}
	}
	return release, true, nil
}
