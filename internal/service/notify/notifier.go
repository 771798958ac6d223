// Package notify 在消息提交后异步标记离线成员的未读班级
// 推送本身由外部服务完成，这里只记录 chat_unread_<userId> 集合
package notify

import (
	"context"
	"time"

	"class_chat_server/internal/dao/mysql/repository"
	myredis "class_chat_server/internal/dao/redis"
	"class_chat_server/internal/dto/respond"
	"class_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// taskTimeout 单个通知任务的最长执行时间
const taskTimeout = 5 * time.Second

// Notifier 离线通知
type Notifier struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewNotifier 创建离线通知
func NewNotifier(repos *repository.Repositories, cache myredis.AsyncCacheService) *Notifier {
	return &Notifier{repos: repos, cache: cache}
}

// MessageCommitted 提交离线通知任务，立即返回
func (n *Notifier) MessageCommitted(classId string, msg *respond.ChatMessageRespond) {
	if msg == nil {
		return
	}
	senderId := msg.SenderId
	messageId := msg.Id
	n.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		if err := n.markOfflineMembers(ctx, classId, senderId); err != nil {
			zap.L().Warn("离线通知失败", zap.String("class_id", classId), zap.String("message_id", messageId), zap.Error(err))
		}
	})
}

// markOfflineMembers 为除发送者外的离线且账号正常的成员记录未读班级
func (n *Notifier) markOfflineMembers(ctx context.Context, classId, senderId string) error {
	members, err := n.repos.Class.FindMemberIds(ctx, classId)
	if err != nil {
		return err
	}
	online, err := n.cache.GetSetMembers(ctx, constants.ONLINE_USERS_KEY)
	if err != nil {
		return err
	}
	onlineSet := make(map[string]struct{}, len(online))
	for _, id := range online {
		onlineSet[id] = struct{}{}
	}

	offline := make([]string, 0, len(members))
	for _, userId := range members {
		if userId == senderId {
			continue
		}
		if _, ok := onlineSet[userId]; ok {
			continue
		}
		offline = append(offline, userId)
	}
	if len(offline) == 0 {
		return nil
	}

	// 已禁用的账号不再记录
	users, err := n.repos.User.FindByUuids(ctx, offline)
	if err != nil {
		return err
	}
	marked := 0
	for i := range users {
		if !users[i].IsActive() {
			continue
		}
		if err := n.cache.AddToSet(ctx, constants.UNREAD_PREFIX+users[i].Uuid, classId); err != nil {
			return err
		}
		marked++
	}
	zap.L().Debug("离线通知完成", zap.String("class_id", classId), zap.Int("marked", marked))
	return nil
}
