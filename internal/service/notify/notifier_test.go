package notify

import (
	"context"
	"sync"
	"testing"

	"class_chat_server/internal/dao/mysql/mysqltest"
	myredis "class_chat_server/internal/dao/redis"
	"class_chat_server/internal/dao/redis/redistest"
	"class_chat_server/internal/dto/respond"
	"class_chat_server/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncCache 提交的任务同步执行，便于断言
type syncCache struct {
	*myredis.RedisCache
	wg sync.WaitGroup
}

func newSyncCache(t *testing.T) *syncCache {
	cache, _ := redistest.NewCache(t)
	return &syncCache{RedisCache: cache}
}

func (c *syncCache) SubmitTask(action func()) {
	c.wg.Add(1)
	c.RedisCache.SubmitTask(func() {
		defer c.wg.Done()
		action()
	})
}

func TestNotifier_MarksOnlyOfflineMembers(t *testing.T) {
	repos := mysqltest.NewSeededRepositories(t)
	cache := newSyncCache(t)
	ctx := context.Background()

	require.NoError(t, cache.AddToSet(ctx, constants.ONLINE_USERS_KEY, mysqltest.StudentA))

	n := NewNotifier(repos, cache)
	n.MessageCommitted(mysqltest.ClassId, &respond.ChatMessageRespond{Id: "1", SenderId: mysqltest.HomeroomTeacher})
	cache.wg.Wait()

	unread := func(userId string) []string {
		members, err := cache.GetSetMembers(ctx, constants.UNREAD_PREFIX+userId)
		require.NoError(t, err)
		return members
	}

	assert.Empty(t, unread(mysqltest.HomeroomTeacher), "sender")
	assert.Empty(t, unread(mysqltest.StudentA), "online")
	assert.Equal(t, []string{mysqltest.ClassId}, unread(mysqltest.StudentB))
	assert.Equal(t, []string{mysqltest.ClassId}, unread(mysqltest.SubjectTeacher))
	assert.Empty(t, unread(mysqltest.OutsiderStudent), "not in class")
	assert.Empty(t, unread(mysqltest.DisabledStudent), "disabled")
}

func TestNotifier_UnknownClassDoesNotPanic(t *testing.T) {
	repos := mysqltest.NewSeededRepositories(t)
	cache := newSyncCache(t)

	n := NewNotifier(repos, cache)
	n.MessageCommitted("C404", &respond.ChatMessageRespond{Id: "1", SenderId: "T1"})
	n.MessageCommitted("C404", nil)
	cache.wg.Wait()
}
