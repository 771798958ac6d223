package respond

import "time"

// ChatMessageRespond 聊天消息
// 使用位置:
//   - internal/service/message/service.go: Send, History
//   - internal/service/chat/dispatcher.go: Publish (messageReceived 广播)
type ChatMessageRespond struct {
	Id              string    `json:"id"` // 雪花ID，字符串避免 JavaScript 精度丢失
	ChatRoomId      string    `json:"chatRoomId"`
	ClassId         string    `json:"classId"`
	SenderId        string    `json:"senderId"`
	SenderRole      string    `json:"senderRole"`
	MessageType     string    `json:"messageType"`
	Text            *string   `json:"text"`
	MediaUrl        *string   `json:"mediaUrl"`
	MediaAssetId    *string   `json:"mediaAssetId"`
	ClientMessageId *string   `json:"clientMessageId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SendMessageRespond 发送消息结果
// Duplicate 为 true 表示命中幂等键，返回的是此前已保存的消息
type SendMessageRespond struct {
	Message   ChatMessageRespond `json:"message"`
	Duplicate bool               `json:"duplicate"`
}
