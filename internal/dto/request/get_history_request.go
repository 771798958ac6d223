package request

// GetHistoryRequest 分页获取班级聊天记录请求
// page、limit 不合法时由 Service 层修正，不在此处拒绝
// 使用位置:
//   - internal/handler/chat_handler.go: GetHistory
type GetHistoryRequest struct {
	ClassId string `json:"class_id" form:"class_id" binding:"required,max=20"`
	Page    int    `json:"page" form:"page"`
	Limit   int    `json:"limit" form:"limit"`
}
