package respond

import "time"

// ChatRoomRespond 班级聊天室摘要
// 使用位置:
//   - internal/handler/chat_handler.go: ResolveRoom
type ChatRoomRespond struct {
	RoomId    string    `json:"roomId"`
	ClassId   string    `json:"classId"`
	TeacherId string    `json:"teacherId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
