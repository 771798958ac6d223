package chat

import (
	"encoding/json"

	"class_chat_server/internal/dto/respond"
	"class_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// WebSocket 事件名
const (
	EventJoinRoom        = "joinRoom"
	EventLeaveRoom       = "leaveRoom"
	EventSendMessage     = "sendMessage"
	EventAck             = "ack"
	EventMessageReceived = "messageReceived"
	EventError           = "error"
)

// encodeEvent 序列化服务端事件帧
func encodeEvent(event, ackId string, data interface{}) []byte {
	frame, err := json.Marshal(respond.WsEventRespond{Event: event, AckId: ackId, Data: data})
	if err != nil {
		// 数据均为内部结构体，不应出现
		zap.L().Error("序列化 ws 事件失败", zap.String("event", event), zap.Error(err))
		return []byte(`{"event":"error","data":{"code":1005,"message":"服务繁忙"}}`)
	}
	return frame
}

// errorFrame 将错误转换为 error 事件帧
func errorFrame(err error) []byte {
	return encodeEvent(EventError, "", toWsError(err))
}

// failedAckFrame 将错误转换为失败 ack 帧
func failedAckFrame(ackId string, err error) []byte {
	return encodeEvent(EventAck, ackId, respond.FailedAckRespond{Success: false, Error: toWsError(err)})
}

func toWsError(err error) respond.WsErrorRespond {
	pub := errorx.Public(err)
	return respond.WsErrorRespond{Code: pub.Code, Message: pub.Msg}
}

// messageReceivedFrame 广播帧
func messageReceivedFrame(msg *respond.ChatMessageRespond) []byte {
	return encodeEvent(EventMessageReceived, "", respond.MessageReceivedRespond{Message: *msg})
}
