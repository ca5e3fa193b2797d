package handler

import (
	"Huddle/internal/api/config"
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/util"
	"Huddle/internal/service"
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	defaultWriteBuffer  = 256
	defaultPingInterval = 30 * time.Second
	defaultReadTimeout  = 60 * time.Second
	writeWait           = 10 * time.Second
	maxFrameSize        = 64 << 10
)

// wsSession 一个 websocket 连接，持有独立的 SyncService 与消息 store
type wsSession struct {
	id      string
	userID  uint64
	conn    *websocket.Conn
	sync    service.SyncService
	chatSvc service.ChatService
	limiter *rate.Limiter

	out       chan dto.OutboundFrame
	done      chan struct{}
	closeOnce sync.Once

	pingInterval time.Duration
	readTimeout  time.Duration
}

func newWsSession(id string, userID uint64, conn *websocket.Conn, chatSvc service.ChatService, limiter *rate.Limiter, cfg config.WebSocketConfig) *wsSession {
	buffer := cfg.WriteBuffer
	if buffer <= 0 {
		buffer = defaultWriteBuffer
	}
	sess := &wsSession{
		id:           id,
		userID:       userID,
		conn:         conn,
		chatSvc:      chatSvc,
		limiter:      limiter,
		out:          make(chan dto.OutboundFrame, buffer),
		done:         make(chan struct{}),
		pingInterval: defaultPingInterval,
		readTimeout:  defaultReadTimeout,
	}
	if cfg.PingInterval > 0 {
		sess.pingInterval = time.Duration(cfg.PingInterval) * time.Second
	}
	if cfg.ReadTimeout > 0 {
		sess.readTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	}
	return sess
}

func (s *wsSession) ID() string { return s.id }

func (s *wsSession) UserID() uint64 { return s.userID }

func (s *wsSession) Sync() service.SyncService { return s.sync }

func (s *wsSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// run 阻塞直到连接断开
func (s *wsSession) run(ctx context.Context) {
	defer s.Close()
	defer s.sync.Stop()

	go s.writePump()
	s.readPump(ctx)
}

func (s *wsSession) readPump(ctx context.Context) {
	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "ws read failed", "err", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))

		var frame dto.InboundFrame
		if err = json.Unmarshal(data, &frame); err != nil {
			s.sendError("", service.ErrParamInvalid)
			continue
		}
		if !s.limiter.Allow() {
			s.sendError(frame.ReqID, service.ErrRateLimited)
			continue
		}
		s.handle(ctx, frame)
	}
}

func (s *wsSession) writePump() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.out:
			payload, err := json.Marshal(frame)
			if err != nil {
				log.Error("ws frame encode failed", "session_id", s.id, "type", frame.Type, "err", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (s *wsSession) handle(ctx context.Context, frame dto.InboundFrame) {
	switch frame.Type {
	case dto.FramePing:
		s.push(dto.OutboundFrame{Type: dto.FramePong, ReqID: frame.ReqID})

	case dto.FrameWatch:
		var req dto.WatchFrame
		key, err := decodeKeyed(frame.Data, &req, func() string { return req.Context })
		if err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		if err = s.sync.Watch(ctx, req.View, key); err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		s.push(dto.OutboundFrame{Type: dto.FrameAck, ReqID: frame.ReqID, Context: key.String()})

	case dto.FrameUnwatch:
		var req dto.UnwatchFrame
		if err := decodeFrame(frame.Data, &req); err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		s.sync.Unwatch(req.View)
		s.push(dto.OutboundFrame{Type: dto.FrameAck, ReqID: frame.ReqID})

	case dto.FrameSend:
		var req dto.SendMessageReq
		key, err := decodeKeyed(frame.Data, &req, func() string { return req.Context })
		if err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		msg, err := s.chatSvc.SendMessage(ctx, s.userID, key, req.Body, req.Files)
		if err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		// 先行写入本地，随后的实时回显按 id 合并
		s.sync.ApplyLocal(key, msg)
		s.push(dto.OutboundFrame{Type: dto.FrameAck, ReqID: frame.ReqID, Context: key.String(),
			Data: dto.SendMessageResp{ID: msg.ID, Message: msg}})

	case dto.FrameReact:
		var req dto.ReactFrame
		if err := decodeFrame(frame.Data, &req); err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		res, err := s.chatSvc.ToggleReaction(ctx, s.userID, req.MessageID, req.Emoji)
		if err != nil {
			s.sendError(frame.ReqID, err)
			return
		}
		s.push(dto.OutboundFrame{Type: dto.FrameAck, ReqID: frame.ReqID, Data: res})

	default:
		s.sendError(frame.ReqID, service.ErrParamInvalid)
	}
}

func decodeFrame(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return service.ErrParamInvalid
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return service.ErrParamInvalid
	}
	return util.ValidateDTO(dst)
}

func decodeKeyed(data json.RawMessage, dst any, raw func() string) (model.ConversationKey, error) {
	if err := decodeFrame(data, dst); err != nil {
		return model.ConversationKey{}, err
	}
	key, err := model.ParseConversationKey(raw())
	if err != nil {
		return model.ConversationKey{}, service.ErrInvalidContext
	}
	return key, nil
}

// push 缓冲满时断开慢连接，客户端重连后重新拉取快照
func (s *wsSession) push(frame dto.OutboundFrame) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- frame:
	default:
		log.Warn("ws send buffer full, closing session", "session_id", s.id, "user_id", s.userID)
		go s.Close()
	}
}

func (s *wsSession) sendError(reqID string, err error) {
	code, public, ok := service.CodeOf(err)
	switch {
	case ok:
		err = public
	case errors.Is(err, util.ErrValidation):
		code = service.BadRequest
	default:
		log.Error("ws request failed", "session_id", s.id, "err", err)
		code, err = service.InternalServerError, service.UnExpectedError
	}
	s.push(dto.OutboundFrame{Type: dto.FrameError, ReqID: reqID, Data: dto.ErrorData{Code: code, Message: err.Error()}})
}

func (s *wsSession) OnSnapshot(key model.ConversationKey, messages []*dto.DisplayMessage) {
	s.push(dto.OutboundFrame{Type: dto.FrameSnapshot, Context: key.String(), Data: dto.SnapshotData{Messages: messages}})
}

func (s *wsSession) OnUpsert(key model.ConversationKey, message *dto.DisplayMessage) {
	s.push(dto.OutboundFrame{Type: dto.FrameUpsert, Context: key.String(), Data: message})
}

func (s *wsSession) OnDelete(key model.ConversationKey, messageID uint64) {
	s.push(dto.OutboundFrame{Type: dto.FrameDelete, Context: key.String(), Data: dto.DeleteData{MessageID: messageID}})
}

func (s *wsSession) OnReactions(key model.ConversationKey, messageID uint64, reactions []dto.AggregatedReaction) {
	s.push(dto.OutboundFrame{Type: dto.FrameReactions, Context: key.String(),
		Data: dto.ReactionsData{MessageID: messageID, Reactions: reactions}})
}

func (s *wsSession) OnState(key model.ConversationKey, state service.SubscriptionState) {
	s.push(dto.OutboundFrame{Type: dto.FrameState, Context: key.String(), Data: dto.StateData{State: state.String()}})
}
