package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	apperrors "maktab/backend/pkg/errors"
)

var t0 = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type homeworkFixture struct {
	db    *memDB
	store *memStorage
	clock *fakeClock
	svc   HomeworkService

	teacher      *model.User
	otherTeacher *model.User
	student      *model.User
	outsider     *model.User
	admin        *model.User
	group        *model.Group
}

func setupHomeworkFixture() *homeworkFixture {
	db := newMemDB()
	f := &homeworkFixture{
		db:    db,
		store: newMemStorage(),
		clock: &fakeClock{now: t0},
	}
	f.teacher = db.addUser(model.RoleTeacher, "998901111111")
	f.otherTeacher = db.addUser(model.RoleTeacher, "998902222222")
	f.student = db.addUser(model.RoleStudent, "998903333333")
	f.outsider = db.addUser(model.RoleStudent, "998904444444")
	f.admin = db.addUser(model.RoleAdmin, "998905555555")

	course := db.addCourse("Matematika")
	f.group = db.addGroup("Math-A", course.CourseID, f.teacher.UserID, f.student.UserID)

	f.svc = NewHomeworkService(newTestRepository(db), f.store, f.clock.Now, zap.NewNop())
	return f
}

func principal(u *model.User) model.Principal {
	return model.Principal{UserID: u.UserID, Role: u.Role}
}

func upload(name, content string) *Upload {
	return &Upload{Filename: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func intPtr(v int) *int { return &v }

// unknownID 格式合法但不存在的 uuid
const unknownID = "00000000-0000-4000-8000-999999999999"

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func TestCreateHomework_Success(t *testing.T) {
	f := setupHomeworkFixture()

	resp, err := f.svc.Create(context.Background(), principal(f.teacher), &dto.CreateHomeworkRequest{
		GroupID: f.group.GroupID,
		Title:   "  Algebra  ",
	})
	if err != nil {
		t.Fatalf("期望创建成功，实际: %v", err)
	}
	if resp.Title != "Algebra" {
		t.Errorf("标题应去除首尾空格，实际=%q", resp.Title)
	}
	if !resp.CreatedAt.Equal(t0) {
		t.Errorf("创建时间应取服务时钟，实际=%s", resp.CreatedAt)
	}
	if !resp.Deadline.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("截止时间应为创建后 24h，实际=%s", resp.Deadline)
	}
	if resp.Expired {
		t.Error("刚创建的作业不应过期")
	}
	if resp.GroupName != "Math-A" || resp.CourseName != "Matematika" {
		t.Errorf("小组/课程名不正确: %q / %q", resp.GroupName, resp.CourseName)
	}
	if len(f.db.homeworks) != 1 {
		t.Errorf("期望写入 1 条作业，实际=%d", len(f.db.homeworks))
	}
}

func TestCreateHomework_StudentForbidden(t *testing.T) {
	f := setupHomeworkFixture()

	_, err := f.svc.Create(context.Background(), principal(f.student), &dto.CreateHomeworkRequest{
		GroupID: f.group.GroupID,
		Title:   "x",
	})
	if !errors.Is(err, ErrForbiddenRole) {
		t.Errorf("期望 ErrForbiddenRole，实际: %v", err)
	}
}

func TestCreateHomework_NotGroupTeacher(t *testing.T) {
	f := setupHomeworkFixture()

	_, err := f.svc.Create(context.Background(), principal(f.otherTeacher), &dto.CreateHomeworkRequest{
		GroupID: f.group.GroupID,
		Title:   "x",
	})
	if !errors.Is(err, ErrForbiddenOwnership) {
		t.Errorf("期望 ErrForbiddenOwnership，实际: %v", err)
	}
}

func TestCreateHomework_Validation(t *testing.T) {
	f := setupHomeworkFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, principal(f.teacher), &dto.CreateHomeworkRequest{Title: "x"})
	if !errors.Is(err, ErrHomeworkGroupEmpty) {
		t.Errorf("缺少小组时期望 ErrHomeworkGroupEmpty，实际: %v", err)
	}

	for _, groupID := range []string{"missing", unknownID} {
		_, err = f.svc.Create(ctx, principal(f.teacher), &dto.CreateHomeworkRequest{GroupID: groupID, Title: "x"})
		if !errors.Is(err, ErrHomeworkGroupInvalid) {
			t.Errorf("小组 %q 不存在时期望 ErrHomeworkGroupInvalid，实际: %v", groupID, err)
		}
		if appErr, ok := apperrors.As(err); !ok || appErr.Kind != apperrors.KindValidation {
			t.Errorf("小组不存在应为校验错误，实际: %v", err)
		}
	}

	_, err = f.svc.Create(ctx, principal(f.teacher), &dto.CreateHomeworkRequest{GroupID: f.group.GroupID, Title: "   "})
	if !errors.Is(err, ErrHomeworkTitleEmpty) {
		t.Errorf("空标题时期望 ErrHomeworkTitleEmpty，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Submit
// ═══════════════════════════════════════════════════════════

func TestSubmit_Within24Hours(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	f.clock.now = t0.Add(23 * time.Hour)

	resp, err := f.svc.Submit(context.Background(), principal(f.student), hw.HomeworkID, upload("essay.pdf", "content"))
	if err != nil {
		t.Fatalf("t0+23h 提交应成功，实际: %v", err)
	}
	if resp.Late {
		t.Error("t0+23h 提交不应为迟交")
	}
	if !resp.SubmittedAt.Equal(t0.Add(23 * time.Hour)) {
		t.Errorf("提交时间应取服务时钟，实际=%s", resp.SubmittedAt)
	}
	if len(f.store.files) != 1 {
		t.Errorf("期望存储 1 个文件，实际=%d", len(f.store.files))
	}

	list, err := f.svc.ListForStudent(context.Background(), principal(f.student))
	if err != nil {
		t.Fatalf("ListForStudent 失败: %v", err)
	}
	if len(list) != 1 || list[0].Status != string(model.StatusSubmitted) {
		t.Fatalf("提交后状态应为 SUBMITTED，实际=%+v", list)
	}
	if list[0].Submission == nil || list[0].Submission.FileName != "essay.pdf" {
		t.Errorf("应附带提交摘要，实际=%+v", list[0].Submission)
	}
}

func TestSubmit_AtDeadlineBoundary(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	f.clock.now = t0.Add(24 * time.Hour)

	resp, err := f.svc.Submit(context.Background(), principal(f.student), hw.HomeworkID, upload("a.txt", "x"))
	if err != nil {
		t.Fatalf("恰好截止时刻提交应成功，实际: %v", err)
	}
	if resp.Late {
		t.Error("恰好截止时刻提交不算迟交")
	}
}

func TestSubmit_AfterDeadline(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	f.clock.now = t0.Add(25 * time.Hour)

	_, err := f.svc.Submit(context.Background(), principal(f.student), hw.HomeworkID, upload("a.txt", "x"))
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("t0+25h 提交期望 ErrDeadlinePassed，实际: %v", err)
	}
	if appErr, ok := apperrors.As(err); !ok || appErr.Kind != apperrors.KindValidation {
		t.Errorf("截止错误应为校验类错误，实际: %v", err)
	}
	if len(f.store.files) != 0 || len(f.db.submissions) != 0 {
		t.Error("被拒绝的提交不应写入文件或记录")
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, principal(f.student), hw.HomeworkID, upload("a.txt", "x")); err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	_, err := f.svc.Submit(ctx, principal(f.student), hw.HomeworkID, upload("b.txt", "y"))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("重复提交期望 ErrDuplicateSubmission，实际: %v", err)
	}
	if len(f.db.submissions) != 1 {
		t.Errorf("应只有 1 条提交记录，实际=%d", len(f.db.submissions))
	}
}

func TestSubmit_MissingFileReportsEarlierFailures(t *testing.T) {
	f := setupHomeworkFixture()
	expired := f.db.addHomework(f.group.GroupID, "Old", t0.Add(-48*time.Hour))
	done := f.db.addHomework(f.group.GroupID, "Done", t0)
	f.db.addSubmission(done.HomeworkID, f.student.UserID, t0.Add(time.Hour), nil)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, principal(f.student), expired.HomeworkID, nil); !errors.Is(err, ErrDeadlinePassed) {
		t.Errorf("已截止作业期望 ErrDeadlinePassed，实际: %v", err)
	}
	if _, err := f.svc.Submit(ctx, principal(f.student), done.HomeworkID, nil); !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("已提交作业期望 ErrDuplicateSubmission，实际: %v", err)
	}
}

func TestSubmit_LongCyrillicFilename(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)

	name := strings.Repeat("ж", 300) + ".pdf"
	resp, err := f.svc.Submit(context.Background(), principal(f.student), hw.HomeworkID, upload(name, "x"))
	if err != nil {
		t.Fatalf("提交应成功: %v", err)
	}

	stored := f.db.submissions[resp.SubmissionID].FileName
	if !utf8.ValidString(stored) {
		t.Fatalf("文件名被截断成非法 UTF-8: %q", stored)
	}
	if n := utf8.RuneCountInString(stored); n != 255 {
		t.Errorf("文件名应截取为 255 个字符，实际=%d", n)
	}
	if !strings.HasSuffix(stored, "ж.pdf") {
		t.Errorf("截取应保留结尾与扩展名，实际结尾=%q", stored[len(stored)-8:])
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`C:\docs\essay.pdf`, "essay.pdf"},
		{"../../etc/passwd", "passwd"},
		{"вазифа.docx", "вазифа.docx"},
		{"bad\xffname.txt", "badname.txt"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanFilename(tt.in); got != tt.want {
			t.Errorf("cleanFilename(%q) = %q，期望 %q", tt.in, got, tt.want)
		}
	}
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	f := setupHomeworkFixture()
	ctx := context.Background()
	const bad = "abc"

	if _, err := f.svc.Submit(ctx, principal(f.student), bad, upload("a.txt", "x")); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("Submit 期望 ErrHomeworkNotFound，实际: %v", err)
	}
	if _, err := f.svc.Detail(ctx, principal(f.student), bad); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("Detail 期望 ErrHomeworkNotFound，实际: %v", err)
	}
	if _, err := f.svc.Grade(ctx, principal(f.teacher), bad, &dto.GradeRequest{Score: intPtr(90)}); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("Grade 期望 ErrSubmissionNotFound，实际: %v", err)
	}
	if _, _, err := f.svc.OpenSubmissionFile(ctx, principal(f.student), bad); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("OpenSubmissionFile 期望 ErrSubmissionNotFound，实际: %v", err)
	}
}

func TestSubmit_DuplicateReportedByStorage(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	// 应用层检查通过后，并发请求抢先写入，唯一索引报冲突
	f.db.submissionCreateErr = gorm.ErrDuplicatedKey

	_, err := f.svc.Submit(context.Background(), principal(f.student), hw.HomeworkID, upload("a.txt", "x"))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("唯一索引冲突期望 ErrDuplicateSubmission，实际: %v", err)
	}
	if len(f.store.files) != 0 {
		t.Error("插入失败后应删除已保存的文件")
	}
	if len(f.store.deleted) != 1 {
		t.Errorf("期望删除 1 个文件，实际=%d", len(f.store.deleted))
	}
}

func TestSubmit_InsertFailureIsInternal(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	f.db.submissionCreateErr = errors.New("connection reset")

	_, err := f.svc.Submit(context.Background(), principal(f.student), hw.HomeworkID, upload("a.txt", "x"))
	if err == nil {
		t.Fatal("期望返回错误")
	}
	if _, ok := apperrors.As(err); ok {
		t.Errorf("持久化错误不应映射为业务错误，实际: %v", err)
	}
	if len(f.store.files) != 0 {
		t.Error("插入失败后应删除已保存的文件")
	}
}

func TestSubmit_Rejections(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller *model.User
		hwID   string
		file   *Upload
		want   error
	}{
		{"教师不能提交", f.teacher, hw.HomeworkID, upload("a.txt", "x"), ErrForbiddenRole},
		{"作业不存在", f.student, unknownID, upload("a.txt", "x"), ErrHomeworkNotFound},
		{"非小组成员", f.outsider, hw.HomeworkID, upload("a.txt", "x"), ErrForbiddenOwnership},
		{"未上传文件", f.student, hw.HomeworkID, nil, ErrFileRequired},
		{"未上传文件且作业不存在", f.student, unknownID, nil, ErrHomeworkNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, principal(tt.caller), tt.hwID, tt.file)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// Grade
// ═══════════════════════════════════════════════════════════

func TestGrade_RegradeOverwrites(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	sub := f.db.addSubmission(hw.HomeworkID, f.student.UserID, t0.Add(time.Hour), nil)
	ctx := context.Background()

	f.clock.now = t0.Add(2 * time.Hour)
	if _, err := f.svc.Grade(ctx, principal(f.teacher), sub.SubmissionID, &dto.GradeRequest{Score: intPtr(85)}); err != nil {
		t.Fatalf("首次评分失败: %v", err)
	}

	f.clock.now = t0.Add(3 * time.Hour)
	resp, err := f.svc.Grade(ctx, principal(f.teacher), sub.SubmissionID, &dto.GradeRequest{Score: intPtr(90), Feedback: "better"})
	if err != nil {
		t.Fatalf("重新评分失败: %v", err)
	}
	if resp.Status != string(model.StatusGraded) {
		t.Errorf("期望状态 GRADED，实际=%s", resp.Status)
	}

	stored := f.db.submissions[sub.SubmissionID]
	if stored.Score == nil || *stored.Score != 90 {
		t.Errorf("分数应被覆盖为 90，实际=%v", stored.Score)
	}
	if stored.Feedback != "better" {
		t.Errorf("评语应被覆盖，实际=%q", stored.Feedback)
	}
	if stored.GradedAt == nil || !stored.GradedAt.Equal(t0.Add(3*time.Hour)) {
		t.Errorf("评分时间应为最后一次评分时刻，实际=%v", stored.GradedAt)
	}
}

func TestGrade_ForbiddenCodesAreDistinct(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	sub := f.db.addSubmission(hw.HomeworkID, f.student.UserID, t0.Add(time.Hour), nil)
	ctx := context.Background()
	req := &dto.GradeRequest{Score: intPtr(70)}

	_, roleErr := f.svc.Grade(ctx, principal(f.student), sub.SubmissionID, req)
	if !errors.Is(roleErr, ErrForbiddenRole) {
		t.Fatalf("学生评分期望 ErrForbiddenRole，实际: %v", roleErr)
	}

	_, ownerErr := f.svc.Grade(ctx, principal(f.otherTeacher), sub.SubmissionID, req)
	if !errors.Is(ownerErr, ErrForbiddenOwnership) {
		t.Fatalf("非本组教师评分期望 ErrForbiddenOwnership，实际: %v", ownerErr)
	}

	r, _ := apperrors.As(roleErr)
	o, _ := apperrors.As(ownerErr)
	if r.Kind.HTTPStatus() != http.StatusForbidden || o.Kind.HTTPStatus() != http.StatusForbidden {
		t.Error("两类拒绝都应返回 403")
	}
	if r.Code == o.Code {
		t.Errorf("角色拒绝与归属拒绝的错误码应不同，实际都为 %d", r.Code)
	}
	if f.db.submissions[sub.SubmissionID].Score != nil {
		t.Error("被拒绝的评分不应写入")
	}
}

func TestGrade_Validation(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	sub := f.db.addSubmission(hw.HomeworkID, f.student.UserID, t0.Add(time.Hour), nil)
	ctx := context.Background()

	if _, err := f.svc.Grade(ctx, principal(f.teacher), "missing", &dto.GradeRequest{Score: intPtr(1)}); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("期望 ErrSubmissionNotFound，实际: %v", err)
	}
	for _, score := range []*int{nil, intPtr(-1), intPtr(101)} {
		if _, err := f.svc.Grade(ctx, principal(f.teacher), sub.SubmissionID, &dto.GradeRequest{Score: score}); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("分数 %v 期望 ErrInvalidScore，实际: %v", score, err)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// 列表与统计
// ═══════════════════════════════════════════════════════════

func TestListForStudent_ScopeOrderAndStatus(t *testing.T) {
	f := setupHomeworkFixture()
	other := f.db.addGroup("Other", f.group.CourseID, f.otherTeacher.UserID, f.outsider.UserID)

	older := f.db.addHomework(f.group.GroupID, "Older", t0.Add(-48*time.Hour))
	newer := f.db.addHomework(f.group.GroupID, "Newer", t0)
	f.db.addHomework(other.GroupID, "Hidden", t0)
	f.db.addSubmission(older.HomeworkID, f.student.UserID, t0.Add(-47*time.Hour), intPtr(77))

	list, err := f.svc.ListForStudent(context.Background(), principal(f.student))
	if err != nil {
		t.Fatalf("ListForStudent 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("只应看到所在小组的 2 份作业，实际=%d", len(list))
	}
	if list[0].ID != newer.HomeworkID || list[1].ID != older.HomeworkID {
		t.Error("应按创建时间倒序")
	}
	if list[0].Status != string(model.StatusPending) {
		t.Errorf("未提交作业应为 PENDING，实际=%s", list[0].Status)
	}
	if list[1].Status != string(model.StatusGraded) || list[1].Grade == nil || *list[1].Grade != 77 {
		t.Errorf("已评分作业应为 GRADED 且带分数，实际=%+v", list[1])
	}
	if !list[1].Expired {
		t.Error("48 小时前布置的作业应已过期")
	}
}

func TestRecentForStudent_Limit(t *testing.T) {
	f := setupHomeworkFixture()
	for i := 0; i < 7; i++ {
		f.db.addHomework(f.group.GroupID, "hw", t0.Add(time.Duration(i)*time.Minute))
	}

	list, err := f.svc.RecentForStudent(context.Background(), principal(f.student))
	if err != nil {
		t.Fatalf("RecentForStudent 失败: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("期望最多 5 条，实际=%d", len(list))
	}
}

func TestStudentStats(t *testing.T) {
	f := setupHomeworkFixture()
	ctx := context.Background()

	stats, err := f.svc.StudentStats(ctx, principal(f.student))
	if err != nil {
		t.Fatalf("StudentStats 失败: %v", err)
	}
	if stats.AverageGrade != 0 || stats.Total != 0 {
		t.Errorf("无作业时期望全 0，实际=%+v", stats)
	}

	h1 := f.db.addHomework(f.group.GroupID, "1", t0)
	h2 := f.db.addHomework(f.group.GroupID, "2", t0)
	h3 := f.db.addHomework(f.group.GroupID, "3", t0)
	f.db.addHomework(f.group.GroupID, "4", t0)
	f.db.addSubmission(h1.HomeworkID, f.student.UserID, t0, nil)

	stats, _ = f.svc.StudentStats(ctx, principal(f.student))
	if stats.Total != 4 || stats.Submitted != 1 || stats.Pending != 3 {
		t.Errorf("计数不正确: %+v", stats)
	}
	if stats.AverageGrade != 0 {
		t.Errorf("没有已评分提交时平均分应为 0，实际=%v", stats.AverageGrade)
	}

	f.db.addSubmission(h2.HomeworkID, f.student.UserID, t0, intPtr(85))
	f.db.addSubmission(h3.HomeworkID, f.student.UserID, t0, intPtr(90))
	f.db.submissions[firstSubmission(f.db, h1.HomeworkID)].Score = intPtr(88)

	stats, _ = f.svc.StudentStats(ctx, principal(f.student))
	if stats.Submitted != 3 || stats.Pending != 1 {
		t.Errorf("计数不正确: %+v", stats)
	}
	// (85+90+88)/3 = 87.666… → 87.7
	if stats.AverageGrade != 87.7 {
		t.Errorf("平均分应四舍五入到一位小数 87.7，实际=%v", stats.AverageGrade)
	}
}

func firstSubmission(db *memDB, homeworkID string) string {
	for id, s := range db.submissions {
		if s.HomeworkID == homeworkID {
			return id
		}
	}
	return ""
}

func TestTeacherStats(t *testing.T) {
	f := setupHomeworkFixture()
	second := f.db.addGroup("Math-B", f.group.CourseID, f.teacher.UserID, f.student.UserID, f.outsider.UserID)
	h1 := f.db.addHomework(f.group.GroupID, "1", t0)
	h2 := f.db.addHomework(second.GroupID, "2", t0)
	f.db.addSubmission(h1.HomeworkID, f.student.UserID, t0, nil)
	f.db.addSubmission(h2.HomeworkID, f.student.UserID, t0, intPtr(50))
	f.db.addSubmission(h2.HomeworkID, f.outsider.UserID, t0, nil)

	stats, err := f.svc.TeacherStats(context.Background(), principal(f.teacher))
	if err != nil {
		t.Fatalf("TeacherStats 失败: %v", err)
	}
	if stats.TotalGroups != 2 {
		t.Errorf("TotalGroups 期望 2，实际=%d", stats.TotalGroups)
	}
	if stats.TotalStudents != 3 {
		t.Errorf("TotalStudents 为各组人数之和，期望 3，实际=%d", stats.TotalStudents)
	}
	if stats.TotalHomework != 2 {
		t.Errorf("TotalHomework 期望 2，实际=%d", stats.TotalHomework)
	}
	if stats.PendingGrades != 2 {
		t.Errorf("PendingGrades 期望 2，实际=%d", stats.PendingGrades)
	}
}

func TestListSubmissions_ScopeAndFilters(t *testing.T) {
	f := setupHomeworkFixture()
	other := f.db.addGroup("Other", f.group.CourseID, f.otherTeacher.UserID, f.outsider.UserID)
	mine := f.db.addHomework(f.group.GroupID, "Mine", t0)
	theirs := f.db.addHomework(other.GroupID, "Theirs", t0)
	f.db.addSubmission(mine.HomeworkID, f.student.UserID, t0.Add(25*time.Hour), nil)
	f.db.addSubmission(theirs.HomeworkID, f.outsider.UserID, t0.Add(time.Hour), nil)
	ctx := context.Background()

	list, err := f.svc.ListSubmissions(ctx, principal(f.teacher), &dto.SubmissionListRequest{})
	if err != nil {
		t.Fatalf("ListSubmissions 失败: %v", err)
	}
	if len(list) != 1 || list[0].Homework != "Mine" {
		t.Fatalf("只应看到所授小组的提交，实际=%+v", list)
	}
	if !list[0].Late {
		t.Error("t0+25h 的提交应标记为迟交")
	}
	if list[0].Student != f.student.Phone {
		t.Errorf("应返回学生手机号，实际=%q", list[0].Student)
	}
	if !strings.Contains(list[0].File, list[0].ID) {
		t.Errorf("文件地址应包含提交 ID，实际=%q", list[0].File)
	}

	graded, _ := f.svc.ListSubmissions(ctx, principal(f.teacher), &dto.SubmissionListRequest{Status: "GRADED"})
	if len(graded) != 0 {
		t.Errorf("按 GRADED 过滤应为空，实际=%d", len(graded))
	}

	_, err = f.svc.ListSubmissions(ctx, principal(f.teacher), &dto.SubmissionListRequest{GroupID: other.GroupID})
	if !errors.Is(err, ErrForbiddenOwnership) {
		t.Errorf("筛选他人小组期望 ErrForbiddenOwnership，实际: %v", err)
	}
}

func TestMySubmissions(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	f.db.addSubmission(hw.HomeworkID, f.student.UserID, t0.Add(30*time.Hour), intPtr(60))

	list, err := f.svc.MySubmissions(context.Background(), principal(f.student))
	if err != nil {
		t.Fatalf("MySubmissions 失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条，实际=%d", len(list))
	}
	if list[0].Homework != "Essay" || !list[0].Late || list[0].Status != string(model.StatusGraded) {
		t.Errorf("提交记录字段不正确: %+v", list[0])
	}

	if _, err := f.svc.MySubmissions(context.Background(), principal(f.teacher)); !errors.Is(err, ErrForbiddenRole) {
		t.Errorf("教师调用期望 ErrForbiddenRole，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Detail / 文件下载
// ═══════════════════════════════════════════════════════════

func TestDetail_Visibility(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	f.db.addSubmission(hw.HomeworkID, f.student.UserID, t0.Add(time.Hour), nil)
	f.teacher.FullName = "Aziza Karimova"
	ctx := context.Background()

	detail, err := f.svc.Detail(ctx, principal(f.student), hw.HomeworkID)
	if err != nil {
		t.Fatalf("组内学生查看详情失败: %v", err)
	}
	if detail.Submission == nil || detail.Status != string(model.StatusSubmitted) {
		t.Errorf("学生详情应附带本人提交，实际=%+v", detail.HomeworkResponse)
	}
	if detail.TeacherName != "Aziza Karimova" {
		t.Errorf("应返回教师名，实际=%q", detail.TeacherName)
	}

	detail, err = f.svc.Detail(ctx, principal(f.teacher), hw.HomeworkID)
	if err != nil {
		t.Fatalf("本组教师查看详情失败: %v", err)
	}
	if detail.SubmissionCount == nil || *detail.SubmissionCount != 1 {
		t.Errorf("教师详情应带提交数 1，实际=%v", detail.SubmissionCount)
	}
	if detail.Submission != nil {
		t.Error("教师详情不应附带学生提交")
	}

	if _, err := f.svc.Detail(ctx, principal(f.outsider), hw.HomeworkID); !errors.Is(err, ErrForbiddenOwnership) {
		t.Errorf("非组内学生期望 ErrForbiddenOwnership，实际: %v", err)
	}
	if _, err := f.svc.Detail(ctx, principal(f.otherTeacher), hw.HomeworkID); !errors.Is(err, ErrForbiddenOwnership) {
		t.Errorf("非本组教师期望 ErrForbiddenOwnership，实际: %v", err)
	}
	if _, err := f.svc.Detail(ctx, principal(f.admin), hw.HomeworkID); !errors.Is(err, ErrForbiddenRole) {
		t.Errorf("管理员期望 ErrForbiddenRole，实际: %v", err)
	}
	if _, err := f.svc.Detail(ctx, principal(f.student), "missing"); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("期望 ErrHomeworkNotFound，实际: %v", err)
	}
}

func TestOpenSubmissionFile(t *testing.T) {
	f := setupHomeworkFixture()
	hw := f.db.addHomework(f.group.GroupID, "Essay", t0)
	ctx := context.Background()

	resp, err := f.svc.Submit(ctx, principal(f.student), hw.HomeworkID, upload(`C:\docs\essay.pdf`, "PDF-DATA"))
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	for _, caller := range []*model.User{f.student, f.teacher} {
		rc, name, err := f.svc.OpenSubmissionFile(ctx, principal(caller), resp.SubmissionID)
		if err != nil {
			t.Fatalf("%s 读取文件失败: %v", caller.Role, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != "PDF-DATA" {
			t.Errorf("文件内容不正确: %q", data)
		}
		if name != "essay.pdf" {
			t.Errorf("文件名应只保留最后一段，实际=%q", name)
		}
	}

	if _, _, err := f.svc.OpenSubmissionFile(ctx, principal(f.outsider), resp.SubmissionID); !errors.Is(err, ErrForbiddenOwnership) {
		t.Errorf("他人期望 ErrForbiddenOwnership，实际: %v", err)
	}
	if _, _, err := f.svc.OpenSubmissionFile(ctx, principal(f.otherTeacher), resp.SubmissionID); !errors.Is(err, ErrForbiddenOwnership) {
		t.Errorf("非本组教师期望 ErrForbiddenOwnership，实际: %v", err)
	}

	f.store.files = map[string][]byte{}
	if _, _, err := f.svc.OpenSubmissionFile(ctx, principal(f.student), resp.SubmissionID); !errors.Is(err, ErrSubmissionFileGone) {
		t.Errorf("文件丢失期望 ErrSubmissionFileGone，实际: %v", err)
	}
}
