package respond

// WsEventRespond 服务端推送给客户端的事件帧
// event 取值: ack / messageReceived / error
type WsEventRespond struct {
	Event string      `json:"event"`
	AckId string      `json:"ackId,omitempty"`
	Data  interface{} `json:"data"`
}

// WsErrorRespond error 事件数据，同时作为失败 ack 中的 error 字段
type WsErrorRespond struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JoinRoomAckRespond joinRoom 成功 ack
type JoinRoomAckRespond struct {
	Success bool   `json:"success"`
	ClassId string `json:"classId"`
	RoomId  string `json:"roomId"`
}

// SendMessageAckRespond sendMessage 成功 ack
type SendMessageAckRespond struct {
	Success   bool               `json:"success"`
	Message   ChatMessageRespond `json:"message"`
	Duplicate bool               `json:"duplicate"`
}

// FailedAckRespond 失败 ack
type FailedAckRespond struct {
	Success bool           `json:"success"`
	Error   WsErrorRespond `json:"error"`
}

// MessageReceivedRespond messageReceived 广播数据
type MessageReceivedRespond struct {
	Message ChatMessageRespond `json:"message"`
}
