package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"class_chat_server/internal/model"
	"class_chat_server/pkg/errorx"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepos 创建基于内存 sqlite 的 Repositories，每个测试独立一个库
func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.UserInfo{}, &model.ClassInfo{}, &model.ClassTeacher{},
		&model.ClassStudent{}, &model.ChatRoom{}, &model.ChatMessage{},
	))
	return NewRepositories(db)
}

func strPtr(s string) *string { return &s }

func seedClass(t *testing.T, repos *Repositories) {
	t.Helper()
	db := repos.DB()
	require.NoError(t, db.Create(&model.ClassInfo{Uuid: "C1", Name: "一年级一班", SchoolId: "S1", TeacherId: "T1"}).Error)
	require.NoError(t, db.Create(&model.ClassTeacher{ClassUuid: "C1", TeacherUuid: "T2", Subject: "数学"}).Error)
	require.NoError(t, db.Create(&model.ClassStudent{ClassUuid: "C1", StudentUuid: "S100"}).Error)
	require.NoError(t, db.Create(&model.ClassStudent{ClassUuid: "C1", StudentUuid: "S101"}).Error)
}

func TestClassRepository_Roster(t *testing.T) {
	repos := newTestRepos(t)
	seedClass(t, repos)
	ctx := context.Background()

	class, err := repos.Class.FindByUuid(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "一年级一班", class.Name)

	_, err = repos.Class.FindByUuid(ctx, "C404")
	assert.True(t, errorx.IsNotFound(err))

	ok, err := repos.Class.IsTeacherAssigned(ctx, "C1", "T1")
	require.NoError(t, err)
	assert.True(t, ok, "homeroom teacher")

	ok, err = repos.Class.IsTeacherAssigned(ctx, "C1", "T2")
	require.NoError(t, err)
	assert.True(t, ok, "subject teacher")

	ok, err = repos.Class.IsTeacherAssigned(ctx, "C1", "T3")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repos.Class.IsStudentMember(ctx, "C1", "S100")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Class.IsStudentMember(ctx, "C1", "S999")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := repos.Class.FindMemberIds(ctx, "C1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"T1", "T2", "S100", "S101"}, ids)
}

func TestUserRepository_LookupAndPasswordHook(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.DB().Create(&model.UserInfo{
		Uuid: "T1", Nickname: "王老师", Role: "TEACHER", SchoolId: "S1", RawPassword: "secret",
	}).Error)
	require.NoError(t, repos.DB().Create(&model.UserInfo{
		Uuid: "U1", Nickname: "小明", Role: "STUDENT", SchoolId: "S1", Status: 1, RawPassword: "secret",
	}).Error)

	user, err := repos.User.FindByUuid(ctx, "T1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")))
	assert.True(t, user.IsActive())

	_, err = repos.User.FindByUuid(ctx, "U404")
	assert.True(t, errorx.IsNotFound(err))

	users, err := repos.User.FindByUuids(ctx, []string{"T1", "U1", "U404"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repos.User.FindByUuids(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestChatRoomRepository_UniqueClass(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.ChatRoom.Create(ctx, &model.ChatRoom{Uuid: "R1", ClassUuid: "C1", TeacherId: "T1"}))

	err := repos.ChatRoom.Create(ctx, &model.ChatRoom{Uuid: "R2", ClassUuid: "C1", TeacherId: "T1"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	room, err := repos.ChatRoom.FindByClassUuid(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "R1", room.Uuid)

	count, err := repos.ChatRoom.CountByClassUuid(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repos.ChatRoom.FindByUuid(ctx, "R404")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestMessageRepository_ClientMessageIdUnique(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	first := &model.ChatMessage{Uuid: 1, ChatRoomUuid: "R1", SenderId: "S100", SenderRole: "STUDENT", MessageType: "text", Text: strPtr("hi"), ClientMessageId: strPtr("c-1")}
	require.NoError(t, repos.Message.Create(ctx, first))

	dup := &model.ChatMessage{Uuid: 2, ChatRoomUuid: "R1", SenderId: "S100", SenderRole: "STUDENT", MessageType: "text", Text: strPtr("hi"), ClientMessageId: strPtr("c-1")}
	err := repos.Message.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 不同发送者可以使用相同的幂等键
	other := &model.ChatMessage{Uuid: 3, ChatRoomUuid: "R1", SenderId: "S101", SenderRole: "STUDENT", MessageType: "text", Text: strPtr("hi"), ClientMessageId: strPtr("c-1")}
	require.NoError(t, repos.Message.Create(ctx, other))

	// 未携带幂等键的消息不参与去重
	for i := int64(10); i < 12; i++ {
		require.NoError(t, repos.Message.Create(ctx, &model.ChatMessage{Uuid: i, ChatRoomUuid: "R1", SenderId: "S100", SenderRole: "STUDENT", MessageType: "text", Text: strPtr("same")}))
	}

	found, err := repos.Message.FindByClientMessageId(ctx, "R1", "S100", "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Uuid)

	_, err = repos.Message.FindByClientMessageId(ctx, "R1", "S100", "c-2")
	assert.True(t, errorx.IsNotFound(err))

	total, err := repos.Message.CountByRoom(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestMessageRepository_FindPageByRoom(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repos.Message.Create(ctx, &model.ChatMessage{
			Uuid: int64(i), ChatRoomUuid: "R1", SenderId: "T1", SenderRole: "TEACHER",
			MessageType: "text", Text: strPtr(fmt.Sprintf("m%d", i)),
		}))
	}

	page, err := repos.Message.FindPageByRoom(ctx, "R1", 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "m5", *page[0].Text)
	assert.Equal(t, "m4", *page[1].Text)

	page, err = repos.Message.FindPageByRoom(ctx, "R1", 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "m1", *page[0].Text)
}

func TestChatRoomRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repos.ChatRoom.Create(ctx, &model.ChatRoom{Uuid: fmt.Sprintf("R%d", i), ClassUuid: "C1", TeacherId: "T1"})
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	}
	assert.Equal(t, 1, success)
}
