package respond

// ChatStatsRespond 本实例连接统计
// 使用位置:
//   - internal/handler/chat_handler.go: GetStats
type ChatStatsRespond struct {
	Connections int `json:"connections"`
	Users       int `json:"users"`
	Rooms       int `json:"rooms"`
}
