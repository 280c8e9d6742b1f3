package hold

import (
	"sort"
)

// SortQueue 按RequestedAt升序排列,时间相同时ID小的在前
func SortQueue(holds []*Hold) {
	sort.SliceStable(holds, func(i, j int) bool {
		a, b := holds[i], holds[j]
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.Before(b.RequestedAt)
		}
		return a.ID < b.ID
	})
}

// Renumber 把pending预约重新编号为连续的1..N
// 返回位置发生变化的预约,调用方只需持久化这些记录
func Renumber(pending []*Hold) []*Hold {
	SortQueue(pending)
	var changed []*Hold
	for i, h := range pending {
		pos := i + 1
		if h.QueuePosition != nil && *h.QueuePosition == pos {
			continue
		}
		h.QueuePosition = &pos
		changed = append(changed, h)
	}
	return changed
}
