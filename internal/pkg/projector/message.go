package projector

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/consts"
	"Huddle/internal/pkg/util"
	"context"
	"fmt"
	log "log/slog"

	"github.com/jinzhu/copier"
)

// ProjectMessage 单行消息转为展示消息，不填充子话题字段
func ProjectMessage(row MessageRow, currentUserID uint64) (*dto.DisplayMessage, error) {
	m := &row.Message
	if err := checkShape(m, row.Files); err != nil {
		return nil, err
	}

	out := &dto.DisplayMessage{
		ID:         m.ID,
		Type:       m.Type,
		ChannelID:  m.ChannelID,
		ReceiverID: m.ReceiverID,
		ParentID:   m.ParentID,
		Body:       util.Deref(m.Body),
		AuthorID:   m.AuthorID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Author:     projectAuthor(m.AuthorID, row.Author),
		Files:      projectFiles(row.Files.OrElse(nil)),
		Reactions:  AggregateReactions(row.Reactions.OrElse(nil), currentUserID),
	}
	return out.Clone(), nil
}

// ProjectMessages 批量投影，形状非法的行记录日志后剔除，返回被剔除的 id
func ProjectMessages(ctx context.Context, rows []MessageRow, currentUserID uint64) ([]*dto.DisplayMessage, []uint64) {
	out := make([]*dto.DisplayMessage, 0, len(rows))
	var invalid []uint64
	for _, row := range rows {
		msg, err := ProjectMessage(row, currentUserID)
		if err != nil {
			log.WarnContext(ctx, "drop invalid message row", "message_id", row.Message.ID, "err", err)
			invalid = append(invalid, row.Message.ID)
			continue
		}
		out = append(out, msg)
	}
	return out, invalid
}

// PlaceholderAuthor 作者资料缺失时的占位
func PlaceholderAuthor(authorID uint64) *dto.AuthorDTO {
	return &dto.AuthorDTO{
		ID:          authorID,
		Username:    consts.UnknownUsername,
		AvatarURL:   nil,
		Status:      model.StatusOffline,
		Placeholder: true,
	}
}

func projectAuthor(authorID uint64, join Join[model.Profile]) *dto.AuthorDTO {
	profile, ok := join.Get()
	if !ok {
		return PlaceholderAuthor(authorID)
	}
	author := &dto.AuthorDTO{}
	if err := copier.Copy(author, &profile); err != nil {
		return PlaceholderAuthor(authorID)
	}
	if author.Status == "" {
		author.Status = model.StatusOffline
	}
	return author
}

func projectFiles(files []model.MessageFile) []dto.FileDTO {
	out := make([]dto.FileDTO, 0, len(files))
	for _, f := range files {
		name := util.TrimToEmpty(f.Name)
		if name == "" {
			name = util.FileNameFromURL(f.URL)
		}
		out = append(out, dto.FileDTO{
			URL:              f.URL,
			Type:             f.FileType,
			Name:             name,
			ProcessingStatus: f.ProcessingStatus,
		})
	}
	return out
}

// checkShape 每种类型只允许填充其对应的引用字段
func checkShape(m *model.Message, files Join[[]model.MessageFile]) error {
	has := func(p *uint64) bool { return p != nil }

	var ok bool
	switch m.Type {
	case model.MessageTypeChannel:
		ok = has(m.ChannelID) && !has(m.ReceiverID) && !has(m.ParentID)
	case model.MessageTypeDirect, model.MessageTypeBot:
		ok = has(m.ReceiverID) && !has(m.ChannelID) && !has(m.ParentID)
	case model.MessageTypeThread:
		ok = has(m.ParentID) && !has(m.ChannelID) && !has(m.ReceiverID)
	default:
		return fmt.Errorf("%w: message %d has unknown type %q", ErrInvalidMessageShape, m.ID, m.Type)
	}
	if !ok {
		return fmt.Errorf("%w: message %d of type %q has mismatched reference fields", ErrInvalidMessageShape, m.ID, m.Type)
	}

	// 附件关联缺失时无法判断，不据此拒绝
	if attached, loaded := files.Get(); loaded && len(attached) == 0 && util.TrimToEmpty(m.Body) == "" {
		return fmt.Errorf("%w: message %d has neither body nor files", ErrInvalidMessageShape, m.ID)
	}
	return nil
}
