package projector

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"context"
	log "log/slog"
	"sort"
)

// AssembleThreads 按 parent_id 分组回复并挂到父消息上
// parentIDs 中查询过但无回复的父消息得到空列表，未查询的父消息保持未加载
func AssembleThreads(ctx context.Context, parents []*dto.DisplayMessage, parentIDs []uint64, replies []MessageRow, currentUserID uint64) {
	queried := make(map[uint64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		queried[id] = struct{}{}
	}

	groups := GroupReplies(ctx, replies, currentUserID)

	for _, p := range parents {
		if p == nil || !dtoParentEligible(p) {
			continue
		}
		if _, ok := queried[p.ID]; !ok {
			continue
		}
		p.AttachThread(groups[p.ID])
	}
}

// GroupReplies 投影并按 parent_id 分组，组内按 (created_at, id) 升序
func GroupReplies(ctx context.Context, replies []MessageRow, currentUserID uint64) map[uint64][]*dto.DisplayMessage {
	groups := make(map[uint64][]*dto.DisplayMessage)
	projected, _ := ProjectMessages(ctx, replies, currentUserID)
	for _, r := range projected {
		if r.ParentID == nil {
			continue
		}
		groups[*r.ParentID] = append(groups[*r.ParentID], r)
	}
	for parentID, g := range groups {
		SortMessages(g)
		if len(g) > 0 {
			log.DebugContext(ctx, "thread assembled", "parent_id", parentID, "replies", len(g))
		}
	}
	return groups
}

// ThreadParentIDs 挑出可挂载子话题的父消息 id
func ThreadParentIDs(parents []*dto.DisplayMessage) []uint64 {
	ids := make([]uint64, 0, len(parents))
	for _, p := range parents {
		if p != nil && dtoParentEligible(p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SortMessages 按 (created_at, id) 升序
func SortMessages(msgs []*dto.DisplayMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return Less(msgs[i], msgs[j])
	})
}

// Less 消息排序规则
func Less(a, b *dto.DisplayMessage) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func dtoParentEligible(p *dto.DisplayMessage) bool {
	return model.IsParentEligible(p.Type)
}
