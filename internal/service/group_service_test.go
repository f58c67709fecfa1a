package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
)

func setupTestGroupService() (GroupService, *memDB) {
	db := newMemDB()
	return NewGroupService(newTestRepository(db), zap.NewNop()), db
}

func TestCreateGroup_Success(t *testing.T) {
	svc, db := setupTestGroupService()
	course := db.addCourse("Ingliz tili")
	teacher := db.addUser(model.RoleTeacher, "998901111111")
	s1 := db.addUser(model.RoleStudent, "998902222222")
	s2 := db.addUser(model.RoleStudent, "998903333333")

	resp, err := svc.Create(context.Background(), &dto.CreateGroupRequest{
		Name:       "English-1",
		CourseID:   course.CourseID,
		TeacherID:  teacher.UserID,
		StudentIDs: []string{s1.UserID, s2.UserID},
		Days:       []string{"Tue", "Thu", "Sat"},
	})
	if err != nil {
		t.Fatalf("期望创建成功，实际: %v", err)
	}
	if resp.StudentCount != 2 || resp.CourseName != "Ingliz tili" {
		t.Errorf("响应不正确: %+v", resp)
	}
	if len(db.enrolments[resp.ID]) != 2 {
		t.Errorf("应写入 2 条成员关系，实际=%d", len(db.enrolments[resp.ID]))
	}
	if len(resp.Days) != 3 || resp.Days[0] != "Tue" {
		t.Errorf("上课日不正确: %v", resp.Days)
	}
}

func TestCreateGroup_Rejections(t *testing.T) {
	svc, db := setupTestGroupService()
	course := db.addCourse("Fizika")
	teacher := db.addUser(model.RoleTeacher, "998901111111")
	student := db.addUser(model.RoleStudent, "998902222222")

	base := func() dto.CreateGroupRequest {
		return dto.CreateGroupRequest{
			Name:      "F-1",
			CourseID:  course.CourseID,
			TeacherID: teacher.UserID,
			Days:      []string{"Mon"},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *dto.CreateGroupRequest)
		want   error
	}{
		{"周日不可选", func(r *dto.CreateGroupRequest) { r.Days = []string{"Sun"} }, ErrInvalidWeekDays},
		{"课程不存在", func(r *dto.CreateGroupRequest) { r.CourseID = "missing" }, ErrCourseNotFound},
		{"教师角色不对", func(r *dto.CreateGroupRequest) { r.TeacherID = student.UserID }, ErrTeacherRequired},
		{"学生不存在", func(r *dto.CreateGroupRequest) { r.StudentIDs = []string{"missing"} }, ErrStudentRequired},
		{"学生角色不对", func(r *dto.CreateGroupRequest) { r.StudentIDs = []string{teacher.UserID} }, ErrStudentRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			if _, err := svc.Create(context.Background(), &req); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestSetStudents_Replaces(t *testing.T) {
	svc, db := setupTestGroupService()
	course := db.addCourse("Kimyo")
	teacher := db.addUser(model.RoleTeacher, "998901111111")
	s1 := db.addUser(model.RoleStudent, "998902222222")
	s2 := db.addUser(model.RoleStudent, "998903333333")
	group := db.addGroup("K-1", course.CourseID, teacher.UserID, s1.UserID)

	resp, err := svc.SetStudents(context.Background(), group.GroupID, &dto.SetGroupStudentsRequest{StudentIDs: []string{s2.UserID}})
	if err != nil {
		t.Fatalf("SetStudents 失败: %v", err)
	}
	if resp.StudentCount != 1 {
		t.Errorf("期望 1 名学生，实际=%d", resp.StudentCount)
	}
	if db.enrolments[group.GroupID][s1.UserID] || !db.enrolments[group.GroupID][s2.UserID] {
		t.Error("成员应被整体替换")
	}

	if _, err := svc.SetStudents(context.Background(), "missing", &dto.SetGroupStudentsRequest{}); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际: %v", err)
	}
}

func TestListMine_ByRole(t *testing.T) {
	svc, db := setupTestGroupService()
	course := db.addCourse("Tarix")
	t1 := db.addUser(model.RoleTeacher, "998901111111")
	t2 := db.addUser(model.RoleTeacher, "998901111112")
	s1 := db.addUser(model.RoleStudent, "998902222222")
	s2 := db.addUser(model.RoleStudent, "998902222223")
	admin := db.addUser(model.RoleAdmin, "998909999999")
	db.addGroup("A", course.CourseID, t1.UserID, s1.UserID, s2.UserID)
	db.addGroup("B", course.CourseID, t2.UserID, s2.UserID)
	ctx := context.Background()

	mine, _ := svc.ListMine(ctx, principal(t1))
	if len(mine) != 1 || mine[0].Name != "A" || mine[0].StudentCount != 2 {
		t.Errorf("教师应只看到所授小组及人数，实际=%+v", mine)
	}

	mine, _ = svc.ListMine(ctx, principal(s2))
	if len(mine) != 2 {
		t.Errorf("学生应看到所在的 2 个小组，实际=%d", len(mine))
	}

	mine, _ = svc.ListMine(ctx, principal(admin))
	if len(mine) != 2 {
		t.Errorf("管理员应看到全部小组，实际=%d", len(mine))
	}
}
