package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"class_chat_server/internal/dao/mysql/mysqltest"
	"class_chat_server/internal/dao/redis/redistest"
	"class_chat_server/internal/model"
	"class_chat_server/pkg/constants"
	"class_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ResolveOrCreate_ConcurrentSingleRoom(t *testing.T) {
	repos := mysqltest.NewSeededRepositories(t)
	dir := NewDirectory(repos, nil, 0)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	rooms := make([]*model.ChatRoom, n)
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			rooms[i], errs[i] = dir.ResolveOrCreate(ctx, mysqltest.ClassId)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, rooms[0].Uuid, rooms[i].Uuid)
	}

	count, err := repos.ChatRoom.CountByClassUuid(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, mysqltest.HomeroomTeacher, rooms[0].TeacherId)
	assert.Equal(t, "三年级二班", rooms[0].Name)
}

func TestDirectory_ResolveOrCreate_Errors(t *testing.T) {
	dir := NewDirectory(mysqltest.NewSeededRepositories(t), nil, 0)
	ctx := context.Background()

	_, err := dir.ResolveOrCreate(ctx, "C404")
	assert.True(t, errorx.Is(err, errorx.ErrClassNotFound))

	_, err = dir.ResolveOrCreate(ctx, mysqltest.InactiveClassId)
	assert.True(t, errorx.Is(err, errorx.ErrClassInactive))

	_, err = dir.ResolveOrCreate(ctx, mysqltest.NoTeacherClassId)
	assert.True(t, errorx.Is(err, errorx.ErrTeacherNotAssigned))

	room, err := dir.Find(ctx, mysqltest.NoTeacherClassId)
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestDirectory_ConflictRereadsExistingRoom(t *testing.T) {
	repos := mysqltest.NewSeededRepositories(t)
	ctx := context.Background()

	// 模拟并发创建者先写入
	require.NoError(t, repos.ChatRoom.Create(ctx, &model.ChatRoom{Uuid: "R_WINNER", ClassUuid: mysqltest.ClassId, TeacherId: mysqltest.HomeroomTeacher}))

	dir := NewDirectory(repos, nil, 0)
	room, err := dir.ResolveOrCreate(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Equal(t, "R_WINNER", room.Uuid)
}

func TestDirectory_UsesCache(t *testing.T) {
	repos := mysqltest.NewSeededRepositories(t)
	cache, mr := redistest.NewCache(t)
	dir := NewDirectory(repos, cache, time.Minute)
	ctx := context.Background()

	room, err := dir.ResolveOrCreate(ctx, mysqltest.ClassId)
	require.NoError(t, err)

	cached, err := cache.Get(ctx, constants.ROOM_CACHE_PREFIX+mysqltest.ClassId)
	require.NoError(t, err)
	assert.Contains(t, cached, room.Uuid)
	assert.Equal(t, time.Minute, mr.TTL(constants.ROOM_CACHE_PREFIX+mysqltest.ClassId))

	again, err := dir.Find(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Equal(t, room.Uuid, again.Uuid)

	// 缓存内容损坏时回退数据库
	require.NoError(t, cache.Set(ctx, constants.ROOM_CACHE_PREFIX+mysqltest.ClassId, "{broken", time.Minute))
	again, err = dir.Find(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Equal(t, room.Uuid, again.Uuid)
	cached, err = cache.Get(ctx, constants.ROOM_CACHE_PREFIX+mysqltest.ClassId)
	require.NoError(t, err)
	assert.Contains(t, cached, room.Uuid)

	// Redis 不可用时仍然可以查询
	mr.Close()
	again, err = dir.Find(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Equal(t, room.Uuid, again.Uuid)
}
