// Package room 维护班级到聊天室的映射
// 每个班级至多一个聊天室，由 chat_room.class_uuid 的唯一索引保证
package room

import (
	"context"
	"encoding/json"
	"time"

	"class_chat_server/internal/dao/mysql/repository"
	myredis "class_chat_server/internal/dao/redis"
	"class_chat_server/internal/model"
	"class_chat_server/pkg/constants"
	"class_chat_server/pkg/errorx"
	"class_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Directory 聊天室目录，HTTP 与 WebSocket 两条入口共用
type Directory struct {
	repos    *repository.Repositories
	cache    myredis.CacheService
	cacheTTL time.Duration
}

// NewDirectory 创建聊天室目录
// cache 可以为 nil，此时每次都查询数据库
func NewDirectory(repos *repository.Repositories, cache myredis.CacheService, cacheTTL time.Duration) *Directory {
	return &Directory{repos: repos, cache: cache, cacheTTL: cacheTTL}
}

// ResolveOrCreate 获取班级聊天室，不存在时创建
// 并发创建时只有一个插入成功，其余调用方捕获唯一索引冲突后回读同一行
func (d *Directory) ResolveOrCreate(ctx context.Context, classId string) (*model.ChatRoom, error) {
	class, err := d.repos.Class.FindByUuid(ctx, classId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrClassNotFound
		}
		return nil, err
	}
	if !class.IsActive() {
		return nil, errorx.ErrClassInactive
	}
	if class.TeacherId == "" {
		return nil, errorx.ErrTeacherNotAssigned
	}

	room, err := d.Find(ctx, classId)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	room = &model.ChatRoom{
		Uuid:      snowflake.GenerateUuid("R"),
		ClassUuid: class.Uuid,
		TeacherId: class.TeacherId,
		Name:      class.Name,
	}
	if err := d.repos.ChatRoom.Create(ctx, room); err != nil {
		if errorx.GetCode(err) != errorx.CodeConflict {
			return nil, err
		}
		// 并发创建者已经写入，回读其结果
		existing, findErr := d.repos.ChatRoom.FindByClassUuid(ctx, classId)
		if findErr != nil {
			return nil, err
		}
		zap.L().Debug("聊天室已被并发创建，使用已有记录", zap.String("class_id", classId), zap.String("room_id", existing.Uuid))
		room = existing
	} else {
		zap.L().Info("创建班级聊天室", zap.String("class_id", classId), zap.String("room_id", room.Uuid))
	}
	d.setCache(ctx, room)
	return room, nil
}

// Find 只读查询班级聊天室，不存在时返回 nil, nil
func (d *Directory) Find(ctx context.Context, classId string) (*model.ChatRoom, error) {
	if room := d.getCache(ctx, classId); room != nil {
		return room, nil
	}
	room, err := d.repos.ChatRoom.FindByClassUuid(ctx, classId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	d.setCache(ctx, room)
	return room, nil
}

// FindByUuid 按聊天室 ID 查询，不存在时返回 nil, nil
func (d *Directory) FindByUuid(ctx context.Context, roomId string) (*model.ChatRoom, error) {
	room, err := d.repos.ChatRoom.FindByUuid(ctx, roomId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// getCache 缓存错误只记录日志，回退到数据库
func (d *Directory) getCache(ctx context.Context, classId string) *model.ChatRoom {
	if d.cache == nil {
		return nil
	}
	data, err := d.cache.Get(ctx, constants.ROOM_CACHE_PREFIX+classId)
	if err != nil {
		zap.L().Warn("读取聊天室缓存失败", zap.String("class_id", classId), zap.Error(err))
		return nil
	}
	if data == "" {
		return nil
	}
	var room model.ChatRoom
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		zap.L().Warn("聊天室缓存格式错误", zap.String("class_id", classId), zap.Error(err))
		return nil
	}
	return &room
}

func (d *Directory) setCache(ctx context.Context, room *model.ChatRoom) {
	if d.cache == nil {
		return
	}
	data, err := json.Marshal(room)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, constants.ROOM_CACHE_PREFIX+room.ClassUuid, string(data), d.cacheTTL); err != nil {
		zap.L().Warn("写入聊天室缓存失败", zap.String("class_id", room.ClassUuid), zap.Error(err))
	}
}
