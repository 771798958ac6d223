package message

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"class_chat_server/internal/config"
	"class_chat_server/internal/dao/mysql/mysqltest"
	"class_chat_server/internal/dao/mysql/repository"
	"class_chat_server/internal/dto/respond"
	"class_chat_server/internal/service/access"
	"class_chat_server/internal/service/room"
	"class_chat_server/pkg/enum/role_enum"
	"class_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []respond.ChatMessageRespond
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, classId string, msg *respond.ChatMessageRespond) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, *msg)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *recordingNotifier) MessageCommitted(string, *respond.ChatMessageRespond) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

type fixture struct {
	repos     *repository.Repositories
	svc       *Service
	publisher *recordingPublisher
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := mysqltest.NewSeededRepositories(t)
	publisher := &recordingPublisher{}
	notifier := &recordingNotifier{}
	conf := config.ChatConfig{HistoryDefaultLimit: 50, HistoryMaxLimit: 100, MaxUploadSize: 1 << 20}
	svc := NewService(repos, access.NewService(repos), room.NewDirectory(repos, nil, 0), publisher, notifier, conf, t.TempDir())
	return &fixture{repos: repos, svc: svc, publisher: publisher, notifier: notifier}
}

var (
	teacher  = &access.Identity{UserId: mysqltest.HomeroomTeacher, Role: role_enum.Teacher, SchoolId: mysqltest.SchoolId}
	student  = &access.Identity{UserId: mysqltest.StudentA, Role: role_enum.Student, SchoolId: mysqltest.SchoolId}
	outsider = &access.Identity{UserId: mysqltest.OutsiderStudent, Role: role_enum.Student, SchoolId: mysqltest.SchoolId}
)

func TestSend_IdempotentRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmd := SendCommand{ClassId: mysqltest.ClassId, Text: "明天交作业", ClientMessageId: "abc"}

	first, err := f.svc.Send(ctx, teacher, cmd)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	for i := 0; i < 3; i++ {
		again, err := f.svc.Send(ctx, teacher, cmd)
		require.NoError(t, err)
		assert.True(t, again.Duplicate)
		assert.Equal(t, first.Message.Id, again.Message.Id)
	}

	total, err := f.repos.Message.CountByRoom(ctx, first.Message.ChatRoomId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 1, f.publisher.count())
	assert.Equal(t, 1, f.notifier.calls)
}

func TestSend_ConcurrentRetrySingleMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmd := SendCommand{ClassId: mysqltest.ClassId, Text: "hello", ClientMessageId: "same-key"}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*respond.SendMessageRespond, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Send(ctx, teacher, cmd)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Message.Id, results[i].Message.Id)
		if !results[i].Duplicate {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.Equal(t, 1, f.publisher.count())

	count, err := f.repos.ChatRoom.CountByClassUuid(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSend_WithoutClientMessageIdNotDeduplicated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmd := SendCommand{ClassId: mysqltest.ClassId, Text: "same text"}

	a, err := f.svc.Send(ctx, student, cmd)
	require.NoError(t, err)
	b, err := f.svc.Send(ctx, student, cmd)
	require.NoError(t, err)

	assert.NotEqual(t, a.Message.Id, b.Message.Id)
	assert.Equal(t, 2, f.publisher.count())
}

func TestSend_SameKeyDifferentSenders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, Text: "x", ClientMessageId: "k"})
	require.NoError(t, err)
	b, err := f.svc.Send(ctx, student, SendCommand{ClassId: mysqltest.ClassId, Text: "x", ClientMessageId: "k"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Message.Id, b.Message.Id)
	assert.False(t, b.Duplicate)
}

func TestSend_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, Text: "   "})
	assert.True(t, errorx.Is(err, errorx.ErrEmptyMessage))

	_, err = f.svc.Send(ctx, outsider, SendCommand{ClassId: mysqltest.ClassId, Text: "hi"})
	assert.True(t, errorx.Is(err, errorx.ErrForbidden))

	_, err = f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.InactiveClassId, Text: "hi"})
	assert.True(t, errorx.Is(err, errorx.ErrClassInactive))

	_, err = f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, Text: "hi", MessageType: "video"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	// 校验失败不产生任何副作用
	chatRoom, err := f.svc.rooms.Find(ctx, mysqltest.ClassId)
	require.NoError(t, err)
	assert.Nil(t, chatRoom)
	assert.Equal(t, 0, f.publisher.count())
}

func TestSend_MessageTypeInference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		cmd  SendCommand
		want string
	}{
		{SendCommand{Text: "plain"}, "text"},
		{SendCommand{MediaUrl: "/static/files/a.PNG"}, "image"},
		{SendCommand{MediaUrl: "https://cdn.example.com/b.pdf?sig=1"}, "pdf"},
		{SendCommand{MediaUrl: "/static/files/c.mp3", Text: "听力"}, "audio"},
		{SendCommand{MediaUrl: "/static/files/blob", MessageType: "image"}, "image"},
	}
	for i, tt := range tests {
		tt.cmd.ClassId = mysqltest.ClassId
		res, err := f.svc.Send(ctx, teacher, tt.cmd)
		require.NoError(t, err, i)
		assert.Equal(t, tt.want, res.Message.MessageType, i)
	}

	_, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, MediaUrl: "/static/files/blob"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestSend_RoomHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, Text: "1"})
	require.NoError(t, err)

	hinted, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, ChatRoomId: first.Message.ChatRoomId, Text: "2"})
	require.NoError(t, err)
	assert.Equal(t, first.Message.ChatRoomId, hinted.Message.ChatRoomId)

	// 另一个班级的聊天室 ID 不会被复用
	other, err := f.svc.rooms.ResolveOrCreate(ctx, mysqltest.OtherClassId)
	require.NoError(t, err)
	wrongHint, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, ChatRoomId: other.Uuid, Text: "3"})
	require.NoError(t, err)
	assert.Equal(t, first.Message.ChatRoomId, wrongHint.Message.ChatRoomId)
}

func TestSend_PublishFailureStillCommits(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()

	res, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, Text: "hi"})
	require.NoError(t, err)

	total, err := f.repos.Message.CountByRoom(ctx, res.Message.ChatRoomId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestHistory_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := f.svc.Send(ctx, teacher, SendCommand{ClassId: mysqltest.ClassId, Text: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	texts := func(h *respond.HistoryRespond) []string {
		var out []string
		for _, m := range h.Messages {
			out = append(out, *m.Text)
		}
		return out
	}

	page1, err := f.svc.History(ctx, student, mysqltest.ClassId, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m5"}, texts(page1))
	assert.True(t, page1.Pagination.HasMore)
	assert.Equal(t, int64(5), page1.Pagination.Total)

	page2, err := f.svc.History(ctx, student, mysqltest.ClassId, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m3"}, texts(page2))
	assert.True(t, page2.Pagination.HasMore)

	page3, err := f.svc.History(ctx, student, mysqltest.ClassId, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, texts(page3))
	assert.False(t, page3.Pagination.HasMore)

	for _, page := range []int{4, math.MaxInt/2 + 1, math.MaxInt} {
		beyond, err := f.svc.History(ctx, student, mysqltest.ClassId, page, 2)
		require.NoError(t, err)
		assert.Empty(t, beyond.Messages, page)
		assert.False(t, beyond.Pagination.HasMore, page)
		assert.Equal(t, int64(5), beyond.Pagination.Total, page)
	}
}

func TestHistory_NoRoomAndLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.History(ctx, teacher, mysqltest.ClassId, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Messages)
	assert.NotNil(t, empty.Messages)
	assert.Equal(t, respond.Pagination{Page: 1, Limit: 50, Total: 0, HasMore: false}, empty.Pagination)

	capped, err := f.svc.History(ctx, teacher, mysqltest.ClassId, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Pagination.Limit)

	_, err = f.svc.History(ctx, outsider, mysqltest.ClassId, 1, 10)
	assert.True(t, errorx.Is(err, errorx.ErrForbidden))
}
