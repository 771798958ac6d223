// Package message 处理班级消息的写入、幂等去重、历史查询与附件保存
package message

import (
	"context"
	"strconv"
	"strings"

	"class_chat_server/internal/config"
	"class_chat_server/internal/dao/mysql/repository"
	"class_chat_server/internal/dto/respond"
	"class_chat_server/internal/model"
	"class_chat_server/internal/service/access"
	"class_chat_server/internal/service/room"
	"class_chat_server/pkg/enum/message_type_enum"
	"class_chat_server/pkg/errorx"
	"class_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Publisher 将已提交的消息广播给聊天室内的连接
type Publisher interface {
	Publish(ctx context.Context, classId string, msg *respond.ChatMessageRespond) error
}

// Notifier 消息提交后的异步通知，不得阻塞或影响发送结果
type Notifier interface {
	MessageCommitted(classId string, msg *respond.ChatMessageRespond)
}

// SendCommand 发送消息参数
type SendCommand struct {
	ClassId         string
	ChatRoomId      string // 可选，与 ClassId 匹配时直接复用
	Text            string
	MediaUrl        string
	MediaAssetId    string
	MessageType     string // 可选，缺省时推断
	ClientMessageId string // 可选，幂等键
}

// Service 消息服务
type Service struct {
	repos     *repository.Repositories
	access    *access.Service
	rooms     *room.Directory
	publisher Publisher
	notifier  Notifier
	conf      config.ChatConfig
	staticDir string
}

// NewService 创建消息服务
// publisher、notifier 可以为 nil（例如只做历史查询的场景）
func NewService(
	repos *repository.Repositories,
	accessSvc *access.Service,
	rooms *room.Directory,
	publisher Publisher,
	notifier Notifier,
	conf config.ChatConfig,
	staticDir string,
) *Service {
	return &Service{
		repos:     repos,
		access:    accessSvc,
		rooms:     rooms,
		publisher: publisher,
		notifier:  notifier,
		conf:      conf,
		staticDir: staticDir,
	}
}

// Send 保存消息并广播
// 携带 ClientMessageId 的重复发送返回此前保存的消息，不再广播
func (s *Service) Send(ctx context.Context, id *access.Identity, cmd SendCommand) (*respond.SendMessageRespond, error) {
	text := strings.TrimSpace(cmd.Text)
	mediaUrl := strings.TrimSpace(cmd.MediaUrl)
	if text == "" && mediaUrl == "" {
		return nil, errorx.ErrEmptyMessage
	}
	messageType, err := resolveMessageType(cmd.MessageType, mediaUrl)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(ctx, id, cmd.ClassId, access.ActionSend); err != nil {
		return nil, err
	}

	chatRoom, err := s.resolveRoom(ctx, cmd.ClassId, cmd.ChatRoomId)
	if err != nil {
		return nil, err
	}

	clientMessageId := strings.TrimSpace(cmd.ClientMessageId)
	if clientMessageId != "" {
		existing, err := s.repos.Message.FindByClientMessageId(ctx, chatRoom.Uuid, id.UserId, clientMessageId)
		if err == nil {
			zap.L().Info("重复发送，返回已保存的消息",
				zap.String("room_id", chatRoom.Uuid),
				zap.String("sender_id", id.UserId),
				zap.String("client_message_id", clientMessageId))
			return &respond.SendMessageRespond{Message: toRespond(existing, cmd.ClassId), Duplicate: true}, nil
		}
		if !errorx.IsNotFound(err) {
			return nil, err
		}
	}

	message := &model.ChatMessage{
		Uuid:         snowflake.GenerateID(),
		ChatRoomUuid: chatRoom.Uuid,
		SenderId:     id.UserId,
		SenderRole:   string(id.Role),
		MessageType:  messageType,
		Text:         optional(text),
		MediaUrl:     optional(mediaUrl),
		MediaAssetId: optional(strings.TrimSpace(cmd.MediaAssetId)),
	}
	if clientMessageId != "" {
		message.ClientMessageId = &clientMessageId
	}

	if err := s.repos.Message.Create(ctx, message); err != nil {
		if errorx.GetCode(err) != errorx.CodeConflict || clientMessageId == "" {
			return nil, err
		}
		// 并发重试已经写入，返回胜出的那条
		winner, findErr := s.repos.Message.FindByClientMessageId(ctx, chatRoom.Uuid, id.UserId, clientMessageId)
		if findErr != nil {
			return nil, err
		}
		return &respond.SendMessageRespond{Message: toRespond(winner, cmd.ClassId), Duplicate: true}, nil
	}

	msg := toRespond(message, cmd.ClassId)
	if s.publisher != nil {
		// 消息已提交，广播失败只记录日志，客户端通过历史记录补齐
		if err := s.publisher.Publish(ctx, cmd.ClassId, &msg); err != nil {
			zap.L().Error("广播消息失败", zap.String("class_id", cmd.ClassId), zap.String("message_id", msg.Id), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.MessageCommitted(cmd.ClassId, &msg)
	}
	return &respond.SendMessageRespond{Message: msg}, nil
}

// resolveRoom 聊天室 ID 与班级匹配时直接复用，否则走目录的获取或创建
func (s *Service) resolveRoom(ctx context.Context, classId, roomId string) (*model.ChatRoom, error) {
	if roomId != "" {
		chatRoom, err := s.rooms.FindByUuid(ctx, roomId)
		if err != nil {
			return nil, err
		}
		if chatRoom != nil && chatRoom.ClassUuid == classId {
			return chatRoom, nil
		}
	}
	return s.rooms.ResolveOrCreate(ctx, classId)
}

// History 分页查询聊天记录，页内按时间正序
func (s *Service) History(ctx context.Context, id *access.Identity, classId string, page, limit int) (*respond.HistoryRespond, error) {
	if _, err := s.access.Authorize(ctx, id, classId, access.ActionJoin); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.conf.HistoryDefaultLimit
	}
	if limit > s.conf.HistoryMaxLimit {
		limit = s.conf.HistoryMaxLimit
	}

	result := &respond.HistoryRespond{
		Messages:   []respond.ChatMessageRespond{},
		Pagination: respond.Pagination{Page: page, Limit: limit},
	}

	chatRoom, err := s.rooms.Find(ctx, classId)
	if err != nil {
		return nil, err
	}
	if chatRoom == nil {
		// 班级还没有人发过言
		return result, nil
	}

	total, err := s.repos.Message.CountByRoom(ctx, chatRoom.Uuid)
	if err != nil {
		return nil, err
	}
	result.Pagination.Total = total
	// 超出最后一页直接返回空页，避免 (page-1)*limit 溢出
	pages := (total + int64(limit) - 1) / int64(limit)
	if int64(page-1) >= pages {
		return result, nil
	}
	skip := (page - 1) * limit
	messages, err := s.repos.Message.FindPageByRoom(ctx, chatRoom.Uuid, skip, limit)
	if err != nil {
		return nil, err
	}

	// 查询结果最新在前，翻转为时间正序
	for i := len(messages) - 1; i >= 0; i-- {
		result.Messages = append(result.Messages, toRespond(&messages[i], classId))
	}
	result.Pagination.HasMore = int64(skip+len(messages)) < total
	return result, nil
}

// resolveMessageType 显式类型必须合法；缺省时无附件为 text，有附件按扩展名推断
func resolveMessageType(explicit, mediaUrl string) (string, error) {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if explicit != "" {
		if !message_type_enum.Valid(explicit) {
			return "", errorx.Newf(errorx.CodeInvalidParam, "不支持的消息类型: %s", explicit)
		}
		if explicit != message_type_enum.Text && mediaUrl == "" {
			return "", errorx.Newf(errorx.CodeInvalidParam, "%s 消息缺少附件地址", explicit)
		}
		return explicit, nil
	}
	if mediaUrl == "" {
		return message_type_enum.Text, nil
	}
	if t := message_type_enum.FromExt(mediaUrl); t != "" {
		return t, nil
	}
	return "", errorx.New(errorx.CodeInvalidParam, "无法识别附件类型，请指定 messageType")
}

func toRespond(m *model.ChatMessage, classId string) respond.ChatMessageRespond {
	return respond.ChatMessageRespond{
		Id:              strconv.FormatInt(m.Uuid, 10),
		ChatRoomId:      m.ChatRoomUuid,
		ClassId:         classId,
		SenderId:        m.SenderId,
		SenderRole:      m.SenderRole,
		MessageType:     m.MessageType,
		Text:            m.Text,
		MediaUrl:        m.MediaUrl,
		MediaAssetId:    m.MediaAssetId,
		ClientMessageId: m.ClientMessageId,
		CreatedAt:       m.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
