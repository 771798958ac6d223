package request

// SendMessageRequest 无状态发送消息请求（multipart/form-data，可附带一个 file）
// 使用位置:
//   - internal/handler/chat_handler.go: SendMessage
type SendMessageRequest struct {
	ClassId         string `json:"class_id" form:"class_id" binding:"required,max=20"`
	ChatRoomId      string `json:"chat_room_id" form:"chat_room_id" binding:"omitempty,max=20"`
	Text            string `json:"text" form:"text" binding:"omitempty,max=5000"`
	MediaUrl        string `json:"media_url" form:"media_url" binding:"omitempty,max=255"`
	MediaAssetId    string `json:"media_asset_id" form:"media_asset_id" binding:"omitempty,max=64"`
	MessageType     string `json:"message_type" form:"message_type" binding:"omitempty,oneof=text image pdf audio"`
	ClientMessageId string `json:"client_message_id" form:"client_message_id" binding:"omitempty,max=64"`
}
