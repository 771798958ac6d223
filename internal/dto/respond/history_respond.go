package respond

// HistoryRespond 分页聊天记录，页内按时间正序
// 使用位置:
//   - internal/service/message/service.go: History
type HistoryRespond struct {
	Messages   []ChatMessageRespond `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}
