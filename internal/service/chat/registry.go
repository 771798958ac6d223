package chat

import (
	"sync"

	"class_chat_server/internal/dto/respond"
	"class_chat_server/pkg/errorx"
)

// Registry 本实例的连接注册表
// 由服务器实例持有（NewRegistry 于启动时创建，Clear 于关闭时调用），不使用包级全局变量
// 用户连接集合与聊天室广播组是仅有的可变共享状态，只通过下列方法修改
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*UserConn            // socketId -> 连接
	users  map[string]map[string]*UserConn // userId -> socketId -> 连接
	rooms  map[string]map[string]*UserConn // classId -> socketId -> 连接
	joined map[string]map[string]struct{}  // socketId -> 已加入的 classId
}

// NewRegistry 创建空的注册表
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*UserConn),
		users:  make(map[string]map[string]*UserConn),
		rooms:  make(map[string]map[string]*UserConn),
		joined: make(map[string]map[string]struct{}),
	}
}

// Admit 登记新连接，超过单用户上限时撤销本次登记并返回 ErrTooManyConnections
// 只会拒绝最新的连接，已有连接不受影响
// first 表示这是该用户在本实例上的第一个连接
func (r *Registry) Admit(conn *UserConn, max int) (first bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sockets, ok := r.users[conn.UserId]
	if !ok {
		sockets = make(map[string]*UserConn)
		r.users[conn.UserId] = sockets
	}
	sockets[conn.SocketId] = conn
	r.conns[conn.SocketId] = conn

	if max > 0 && len(sockets) > max {
		r.removeLocked(conn)
		return false, errorx.ErrTooManyConnections
	}
	return len(sockets) == 1, nil
}

// Join 将连接加入聊天室广播组，连接未登记（已断开）时返回 false
func (r *Registry) Join(conn *UserConn, classId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn.SocketId]; !ok {
		return false
	}
	group, ok := r.rooms[classId]
	if !ok {
		group = make(map[string]*UserConn)
		r.rooms[classId] = group
	}
	group[conn.SocketId] = conn

	classes, ok := r.joined[conn.SocketId]
	if !ok {
		classes = make(map[string]struct{})
		r.joined[conn.SocketId] = classes
	}
	classes[classId] = struct{}{}
	return true
}

// Leave 退出聊天室广播组，未加入时无操作
func (r *Registry) Leave(conn *UserConn, classId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if group, ok := r.rooms[classId]; ok {
		delete(group, conn.SocketId)
		if len(group) == 0 {
			delete(r.rooms, classId)
		}
	}
	if classes, ok := r.joined[conn.SocketId]; ok {
		delete(classes, classId)
		if len(classes) == 0 {
			delete(r.joined, conn.SocketId)
		}
	}
}

// Unregister 一次性移除连接的全部登记，可重复调用
// last 表示该用户在本实例上已没有连接
func (r *Registry) Unregister(conn *UserConn) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn.SocketId]; !ok {
		return false
	}
	return r.removeLocked(conn)
}

// removeLocked 调用方需持有写锁
func (r *Registry) removeLocked(conn *UserConn) (last bool) {
	delete(r.conns, conn.SocketId)

	for classId := range r.joined[conn.SocketId] {
		if group, ok := r.rooms[classId]; ok {
			delete(group, conn.SocketId)
			if len(group) == 0 {
				delete(r.rooms, classId)
			}
		}
	}
	delete(r.joined, conn.SocketId)

	if sockets, ok := r.users[conn.UserId]; ok {
		delete(sockets, conn.SocketId)
		if len(sockets) == 0 {
			delete(r.users, conn.UserId)
			return true
		}
	}
	return false
}

// Deliver 将帧投递给聊天室内的所有本地连接，返回投递成功的连接数
func (r *Registry) Deliver(classId string, frame []byte) int {
	r.mu.RLock()
	group := r.rooms[classId]
	targets := make([]*UserConn, 0, len(group))
	for _, conn := range group {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if conn.Send(frame) {
			delivered++
		}
	}
	return delivered
}

// UserConnCount 用户在本实例上的连接数
func (r *Registry) UserConnCount(userId string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userId])
}

// HasUser 用户在本实例上是否还有登记
func (r *Registry) HasUser(userId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userId]
	return ok
}

// JoinedRooms 连接已加入的班级
func (r *Registry) JoinedRooms(conn *UserConn) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]string, 0, len(r.joined[conn.SocketId]))
	for classId := range r.joined[conn.SocketId] {
		classes = append(classes, classId)
	}
	return classes
}

// Stats 连接统计
func (r *Registry) Stats() respond.ChatStatsRespond {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return respond.ChatStatsRespond{
		Connections: len(r.conns),
		Users:       len(r.users),
		Rooms:       len(r.rooms),
	}
}

// Clear 关闭并移除全部连接，服务关闭时调用
func (r *Registry) Clear() {
	r.mu.Lock()
	conns := make([]*UserConn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[string]*UserConn)
	r.users = make(map[string]map[string]*UserConn)
	r.rooms = make(map[string]map[string]*UserConn)
	r.joined = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
