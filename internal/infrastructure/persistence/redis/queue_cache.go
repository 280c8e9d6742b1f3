package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/circulation/internal/domain/circulation"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// setIfCurrentScript 读缓存之后发生过失效(代数变化)就放弃写入
var setIfCurrentScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[2])
if (cur or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// genTTL 代数key的过期时间,远大于快照TTL
const genTTL = 24 * time.Hour

// QueueCache 队列快照缓存(cache-aside)
// 每本书一个失效代数: Invalidate递增代数并删快照,Set只在代数未变时写入,
// 避免未命中后读到的旧快照在失效之后被写回
type QueueCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewQueueCache ttl<=0时不缓存
func NewQueueCache(client redis.Cmdable, ttl time.Duration) *QueueCache {
	return &QueueCache{client: client, ttl: ttl}
}

func queueKey(titleID uint) string {
	return fmt.Sprintf("circulation:queue:%d", titleID)
}

func genKey(titleID uint) string {
	return fmt.Sprintf("circulation:queue:%d:gen", titleID)
}

// Get 命中时返回(state, version, true, nil),未命中时version交给随后的Set
func (c *QueueCache) Get(ctx context.Context, titleID uint) (*circulation.QueueState, int64, bool, error) {
	if c.ttl <= 0 {
		return nil, 0, false, nil
	}
	vals, err := c.client.MGet(ctx, queueKey(titleID), genKey(titleID)).Result()
	if err != nil {
		return nil, 0, false, apperrors.Wrap(err, "读取队列缓存失败")
	}

	var version int64
	if gen, ok := vals[1].(string); ok {
		if version, err = strconv.ParseInt(gen, 10, 64); err != nil {
			return nil, 0, false, apperrors.Wrap(err, "队列缓存代数非法")
		}
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, version, false, nil
	}

	var state circulation.QueueState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		// 结构变化后的旧数据当作未命中
		if err := c.client.Del(ctx, queueKey(titleID)).Err(); err != nil {
			return nil, version, false, apperrors.Wrap(err, "删除队列缓存失败")
		}
		return nil, version, false, nil
	}
	return &state, version, true, nil
}

// Set 写入快照,version之后发生过失效时静默放弃
func (c *QueueCache) Set(ctx context.Context, titleID uint, version int64, state *circulation.QueueState) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return apperrors.Wrap(err, "序列化队列快照失败")
	}
	err = setIfCurrentScript.Run(ctx, c.client,
		[]string{queueKey(titleID), genKey(titleID)},
		strconv.FormatInt(version, 10), data, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return apperrors.Wrap(err, "写入队列缓存失败")
	}
	return nil
}

// Invalidate 递增代数并删除快照
func (c *QueueCache) Invalidate(ctx context.Context, titleIDs ...uint) error {
	if len(titleIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range titleIDs {
			pipe.Incr(ctx, genKey(id))
			pipe.Expire(ctx, genKey(id), genTTL)
			pipe.Del(ctx, queueKey(id))
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "删除队列缓存失败")
	}
	return nil
}
