package request

// ResolveRoomRequest 获取（必要时创建）班级聊天室请求
// 使用位置:
//   - internal/handler/chat_handler.go: ResolveRoom
type ResolveRoomRequest struct {
	ClassId string `json:"class_id" form:"class_id" binding:"required,max=20"`
}
