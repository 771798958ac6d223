package request

import "encoding/json"

// WsEventRequest 客户端通过 WebSocket 发来的事件帧
// {"event":"joinRoom","ackId":"1","data":{...}}
// 使用位置:
//   - internal/service/chat/conn_manager.go: dispatch
type WsEventRequest struct {
	Event string          `json:"event"`
	AckId string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// JoinRoomRequest joinRoom / leaveRoom 事件数据
type JoinRoomRequest struct {
	ClassId string `json:"classId" binding:"required,max=20"`
}

// WsSendMessageRequest sendMessage 事件数据，校验规则与 SendMessageRequest 一致
type WsSendMessageRequest struct {
	ClassId         string `json:"classId" binding:"required,max=20"`
	ChatRoomId      string `json:"chatRoomId,omitempty" binding:"omitempty,max=20"`
	Text            string `json:"text,omitempty" binding:"omitempty,max=5000"`
	MediaUrl        string `json:"mediaUrl,omitempty" binding:"omitempty,max=255"`
	MediaAssetId    string `json:"mediaAssetId,omitempty" binding:"omitempty,max=64"`
	MessageType     string `json:"messageType,omitempty" binding:"omitempty,oneof=text image pdf audio"`
	ClientMessageId string `json:"clientMessageId,omitempty" binding:"omitempty,max=64"`
}
