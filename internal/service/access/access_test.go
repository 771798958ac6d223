package access

import (
	"testing"

	"class_chat_server/internal/model"
	"class_chat_server/pkg/enum/role_enum"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	class := &model.ClassInfo{Uuid: "C1", SchoolId: "S1", TeacherId: "T1"}

	tests := []struct {
		name   string
		id     *Identity
		roster Roster
		want   bool
	}{
		{"assigned teacher", &Identity{UserId: "T1", Role: role_enum.Teacher}, Roster{TeacherAssigned: true}, true},
		{"unassigned teacher", &Identity{UserId: "T9", Role: role_enum.Teacher}, Roster{}, false},
		{"teacher with student flag only", &Identity{UserId: "T9", Role: role_enum.Teacher}, Roster{StudentMember: true}, false},
		{"member student", &Identity{UserId: "U1", Role: role_enum.Student}, Roster{StudentMember: true}, true},
		{"outsider student", &Identity{UserId: "U9", Role: role_enum.Student}, Roster{}, false},
		{"principal same school", &Identity{UserId: "P1", Role: role_enum.Principal, SchoolId: "S1"}, Roster{}, true},
		{"principal other school", &Identity{UserId: "P2", Role: role_enum.Principal, SchoolId: "S2"}, Roster{}, false},
		{"principal without school", &Identity{UserId: "P3", Role: role_enum.Principal}, Roster{}, false},
		{"super admin same school", &Identity{UserId: "A1", Role: role_enum.SuperAdmin, SchoolId: "S1"}, Roster{}, true},
		{"unknown role", &Identity{UserId: "X", Role: role_enum.Role("GUEST"), SchoolId: "S1"}, Roster{TeacherAssigned: true, StudentMember: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CanAccess(tt.id, class, tt.roster)
			assert.Equal(t, tt.want, p.CanJoin)
			assert.Equal(t, tt.want, p.CanSend)
			assert.Equal(t, tt.want, p.Allows(ActionJoin))
			assert.Equal(t, tt.want, p.Allows(ActionSend))
		})
	}

	assert.Equal(t, Permission{}, CanAccess(nil, class, Roster{}))
	assert.Equal(t, Permission{}, CanAccess(&Identity{Role: role_enum.Teacher}, nil, Roster{TeacherAssigned: true}))
}
