package projector

import (
	"Huddle/internal/model"
)

// ReactionRow 单条表情回应，只关心 (emoji, user)
type ReactionRow struct {
	Emoji  string
	UserID uint64
}

// MessageRow 原始消息行及其可选关联
type MessageRow struct {
	Message   model.Message
	Author    Join[model.Profile]
	Files     Join[[]model.MessageFile]
	Reactions Join[[]ReactionRow]
}

// RowFromModel gorm 查询结果转为 MessageRow，未 Preload 的关联视为缺失
func RowFromModel(m *model.Message) MessageRow {
	row := MessageRow{Message: *m}
	row.Message.Author, row.Message.Files, row.Message.Reactions = nil, nil, nil

	if m.Author != nil {
		row.Author = Present(*m.Author)
	}
	if m.Files != nil {
		files := make([]model.MessageFile, 0, len(m.Files))
		for _, f := range m.Files {
			if f != nil {
				files = append(files, *f)
			}
		}
		row.Files = Present(files)
	}
	if m.Reactions != nil {
		row.Reactions = Present(ReactionRows(m.Reactions))
	}
	return row
}

// RowsFromModels 批量转换
func RowsFromModels(ms []*model.Message) []MessageRow {
	rows := make([]MessageRow, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			rows = append(rows, RowFromModel(m))
		}
	}
	return rows
}

// ReactionRows 取出 (emoji, user) 部分
func ReactionRows(rs []*model.Reaction) []ReactionRow {
	out := make([]ReactionRow, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, ReactionRow{Emoji: r.Emoji, UserID: r.UserID})
		}
	}
	return out
}
