// Package mysqltest 为测试提供基于内存 sqlite 的数据库与固定的学校数据
package mysqltest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"class_chat_server/internal/config"
	"class_chat_server/internal/dao/mysql"
	"class_chat_server/internal/dao/mysql/repository"
	"class_chat_server/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 固定数据中的 ID
const (
	SchoolId      = "S1"
	OtherSchoolId = "S2"

	ClassId          = "C1" // 正常班级，班主任 T1，任课教师 T2
	InactiveClassId  = "C2" // 已停用
	NoTeacherClassId = "C3" // 未分配教师
	OtherClassId     = "C4" // 正常班级，班主任 T3

	HomeroomTeacher   = "T1"
	SubjectTeacher    = "T2"
	OtherTeacher      = "T3" // 未分配到 C1
	StudentA          = "U100"
	StudentB          = "U101"
	OutsiderStudent   = "U102" // 不在 C1 名册中
	DisabledStudent   = "U103"
	Principal         = "P1"
	OtherPrincipal    = "P2" // 属于 S2
	SuperAdmin        = "A1"
	DefaultPassword   = "123456"
	sqliteMemoryQuery = "?mode=memory&cache=shared"
)

var dbSeq int64

// NewRepositories 创建独立的内存数据库并完成迁移
func NewRepositories(t testing.TB) *repository.Repositories {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d%s", name, atomic.AddInt64(&dbSeq, 1), sqliteMemoryQuery)

	db, err := mysql.Open(config.MysqlConfig{Driver: "sqlite", SqlitePath: dsn})
	require.NoError(t, err)
	require.NoError(t, mysql.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return repository.NewRepositories(db)
}

// NewSeededRepositories 创建数据库并写入固定的学校数据
func NewSeededRepositories(t testing.TB) *repository.Repositories {
	t.Helper()
	repos := NewRepositories(t)
	Seed(t, repos.DB())
	return repos
}

// Seed 写入学校、班级、名册与用户
func Seed(t testing.TB, db *gorm.DB) {
	t.Helper()
	classes := []model.ClassInfo{
		{Uuid: ClassId, Name: "三年级二班", SchoolId: SchoolId, TeacherId: HomeroomTeacher},
		{Uuid: InactiveClassId, Name: "已停用班级", SchoolId: SchoolId, TeacherId: HomeroomTeacher, Status: 1},
		{Uuid: NoTeacherClassId, Name: "新建班级", SchoolId: SchoolId},
		{Uuid: OtherClassId, Name: "四年级一班", SchoolId: SchoolId, TeacherId: OtherTeacher},
	}
	require.NoError(t, db.Create(&classes).Error)

	require.NoError(t, db.Create(&model.ClassTeacher{ClassUuid: ClassId, TeacherUuid: SubjectTeacher, Subject: "数学"}).Error)
	students := []model.ClassStudent{
		{ClassUuid: ClassId, StudentUuid: StudentA},
		{ClassUuid: ClassId, StudentUuid: StudentB},
		{ClassUuid: ClassId, StudentUuid: DisabledStudent},
		{ClassUuid: OtherClassId, StudentUuid: OutsiderStudent},
	}
	require.NoError(t, db.Create(&students).Error)

	users := []model.UserInfo{
		newUser(HomeroomTeacher, "TEACHER", SchoolId, 0),
		newUser(SubjectTeacher, "TEACHER", SchoolId, 0),
		newUser(OtherTeacher, "TEACHER", SchoolId, 0),
		newUser(StudentA, "STUDENT", SchoolId, 0),
		newUser(StudentB, "STUDENT", SchoolId, 0),
		newUser(OutsiderStudent, "STUDENT", SchoolId, 0),
		newUser(DisabledStudent, "STUDENT", SchoolId, 1),
		newUser(Principal, "PRINCIPAL", SchoolId, 0),
		newUser(OtherPrincipal, "PRINCIPAL", OtherSchoolId, 0),
		newUser(SuperAdmin, "SUPER_ADMIN", SchoolId, 0),
	}
	require.NoError(t, db.Create(&users).Error)
}

func newUser(uuid, role, schoolId string, status int8) model.UserInfo {
	return model.UserInfo{
		Uuid:        uuid,
		Nickname:    "user_" + uuid,
		Role:        role,
		SchoolId:    schoolId,
		Status:      status,
		RawPassword: DefaultPassword,
	}
}
