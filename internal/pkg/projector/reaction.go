package projector

import (
	"Huddle/internal/api/dto"
)

type reactionKey struct {
	emoji  string
	userID uint64
}

// AggregateReactions 按 emoji 汇总，(emoji, user) 去重，顺序为 emoji 首次出现的顺序
// currentUserID 为 0 表示匿名，ReactedByMe 恒为 false
func AggregateReactions(rows []ReactionRow, currentUserID uint64) []dto.AggregatedReaction {
	out := make([]dto.AggregatedReaction, 0, len(rows))
	if len(rows) == 0 {
		return out
	}

	seen := make(map[reactionKey]struct{}, len(rows))
	index := make(map[string]int)

	for _, r := range rows {
		k := reactionKey{emoji: r.Emoji, userID: r.UserID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		i, ok := index[r.Emoji]
		if !ok {
			i = len(out)
			index[r.Emoji] = i
			out = append(out, dto.AggregatedReaction{Emoji: r.Emoji})
		}
		out[i].Count++
		if currentUserID != 0 && r.UserID == currentUserID {
			out[i].ReactedByMe = true
		}
	}
	return out
}
