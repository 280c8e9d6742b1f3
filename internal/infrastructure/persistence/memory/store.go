// Package memory 内存存储
//
// 用于本地开发(database.driver=memory)和引擎测试。
// 事务语义与gorm实现保持一致:
//   - LockByID按图书ID加互斥锁,直到事务提交或回滚才释放
//   - 事务内的每次写入都记一条undo,回滚时倒序执行
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// Store 内存数据库
type Store struct {
	mu        sync.RWMutex
	titles    map[uint]*title.Title
	checkouts map[uint]*checkout.Checkout
	holds     map[uint]*hold.Hold
	seq       struct{ title, checkout, hold uint }

	locks *keyedMutex
}

// NewStore 创建内存数据库
func NewStore() *Store {
	return &Store{
		titles:    make(map[uint]*title.Title),
		checkouts: make(map[uint]*checkout.Checkout),
		holds:     make(map[uint]*hold.Hold),
		locks:     newKeyedMutex(),
	}
}

type txKey struct{}

// txState 一个事务持有的锁和undo日志
type txState struct {
	locked map[uint]struct{}
	undo   []func()
}

// Transaction 执行事务
// 已在事务中时直接加入外层事务
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	tx := &txState{locked: make(map[uint]struct{})}
	defer func() {
		if r := recover(); r != nil {
			s.rollback(tx)
			s.unlockAll(tx)
			panic(r)
		}
		if err != nil {
			s.rollback(tx)
		}
		s.unlockAll(tx)
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (s *Store) rollback(tx *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (s *Store) unlockAll(tx *txState) {
	for id := range tx.locked {
		s.locks.unlock(id)
	}
}

// lockTitle 当前事务第一次锁某本书时阻塞等待
func (s *Store) lockTitle(ctx context.Context, id uint) error {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return nil
	}
	if _, held := tx.locked[id]; held {
		return nil
	}
	if err := s.locks.lock(ctx, id); err != nil {
		return fmt.Errorf("等待图书锁: %w", err)
	}
	tx.locked[id] = struct{}{}
	return nil
}

// recordUndo 调用方必须持有s.mu写锁
func recordUndo(ctx context.Context, fn func()) {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok {
		tx.undo = append(tx.undo, fn)
	}
}

// keyedMutex 按key分配的互斥锁,用容量为1的channel实现以支持ctx取消
type keyedMutex struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[uint]chan struct{})}
}

func (k *keyedMutex) slot(id uint) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.slots[id]
	if !ok {
		ch = make(chan struct{}, 1)
		k.slots[id] = ch
	}
	return ch
}

func (k *keyedMutex) lock(ctx context.Context, id uint) error {
	select {
	case k.slot(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *keyedMutex) unlock(id uint) {
	<-k.slot(id)
}

// =========================================
// 深拷贝: 仓储对外只暴露副本,未Update的修改不会泄露
// =========================================

func cloneTitle(t *title.Title) *title.Title {
	c := *t
	return &c
}

func cloneCheckout(c *checkout.Checkout) *checkout.Checkout {
	out := *c
	out.ReturnDate = cloneTime(c.ReturnDate)
	return &out
}

func cloneHold(h *hold.Hold) *hold.Hold {
	out := *h
	if h.QueuePosition != nil {
		pos := *h.QueuePosition
		out.QueuePosition = &pos
	}
	out.ActivatedAt = cloneTime(h.ActivatedAt)
	out.ExpiresAt = cloneTime(h.ExpiresAt)
	out.ClosedAt = cloneTime(h.ClosedAt)
	return &out
}

func cloneTime[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
