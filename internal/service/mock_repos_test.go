package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	"maktab/backend/pkg/storage"
)

// ═══════════════════════════════════════════════════════════
// 内存数据库：各 mock repo 共享，模拟 Preload 关联
// ═══════════════════════════════════════════════════════════

type memDB struct {
	users       map[string]*model.User
	courses     map[string]*model.Course
	groups      map[string]*model.Group
	enrolments  map[string]map[string]bool // group_id -> student_id 集合
	schedules   []*model.Schedule
	homeworks   map[string]*model.Homework
	submissions map[string]*model.HomeworkSubmission
	ratings     []*model.Rating
	seq         int

	// 故障注入
	submissionCreateErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:       make(map[string]*model.User),
		courses:     make(map[string]*model.Course),
		groups:      make(map[string]*model.Group),
		enrolments:  make(map[string]map[string]bool),
		homeworks:   make(map[string]*model.Homework),
		submissions: make(map[string]*model.HomeworkSubmission),
	}
}

// nextID 生成按序递增、格式合法的 uuid
func (db *memDB) nextID() string {
	db.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", db.seq)
}

// ── 数据准备 ──

func (db *memDB) addUser(role model.Role, phone string) *model.User {
	u := &model.User{
		UserID:   db.nextID(),
		Phone:    phone,
		Role:     role,
		IsActive: true,
	}
	db.users[u.UserID] = u
	return u
}

func (db *memDB) addCourse(name string) *model.Course {
	c := &model.Course{CourseID: db.nextID(), Name: name}
	db.courses[c.CourseID] = c
	return c
}

func (db *memDB) addGroup(name, courseID, teacherID string, studentIDs ...string) *model.Group {
	g := &model.Group{
		GroupID:   db.nextID(),
		Name:      name,
		CourseID:  courseID,
		TeacherID: teacherID,
		Days:      []string{"Mon", "Wed"},
	}
	db.groups[g.GroupID] = g
	db.enrolments[g.GroupID] = make(map[string]bool)
	for _, id := range studentIDs {
		db.enrolments[g.GroupID][id] = true
	}
	return g
}

func (db *memDB) addHomework(groupID, title string, createdAt time.Time) *model.Homework {
	h := &model.Homework{
		HomeworkID: db.nextID(),
		GroupID:    groupID,
		Title:      title,
		CreatedAt:  createdAt,
	}
	db.homeworks[h.HomeworkID] = h
	return h
}

func (db *memDB) addSubmission(homeworkID, studentID string, submittedAt time.Time, score *int) *model.HomeworkSubmission {
	s := &model.HomeworkSubmission{
		SubmissionID: db.nextID(),
		HomeworkID:   homeworkID,
		StudentID:    studentID,
		FilePath:     "submissions/seed.pdf",
		FileName:     "seed.pdf",
		SubmittedAt:  submittedAt,
		Score:        score,
	}
	db.submissions[s.SubmissionID] = s
	return s
}

func (db *memDB) addRating(studentID, groupID string, score int, attendance bool) *model.Rating {
	r := &model.Rating{
		RatingID:   db.nextID(),
		StudentID:  studentID,
		GroupID:    groupID,
		Score:      score,
		Attendance: attendance,
		CreatedAt:  time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Minute),
	}
	db.ratings = append(db.ratings, r)
	return r
}

// ── 关联加载 ──

func (db *memDB) loadGroup(id string, withStudents bool) *model.Group {
	g, ok := db.groups[id]
	if !ok {
		return nil
	}
	cp := *g
	cp.Course = db.courses[g.CourseID]
	cp.Teacher = db.users[g.TeacherID]
	cp.Students = nil
	if withStudents {
		for sid := range db.enrolments[id] {
			if u, ok := db.users[sid]; ok {
				cp.Students = append(cp.Students, *u)
			}
		}
		sort.Slice(cp.Students, func(i, j int) bool { return cp.Students[i].UserID < cp.Students[j].UserID })
	}
	return &cp
}

func (db *memDB) loadHomework(id string) *model.Homework {
	h, ok := db.homeworks[id]
	if !ok {
		return nil
	}
	cp := *h
	cp.Group = db.loadGroup(h.GroupID, false)
	return &cp
}

func (db *memDB) loadSubmission(s *model.HomeworkSubmission) model.HomeworkSubmission {
	cp := *s
	cp.Homework = db.loadHomework(s.HomeworkID)
	cp.Student = db.users[s.StudentID]
	return cp
}

func (db *memDB) homeworkGroup(homeworkID string) string {
	if h, ok := db.homeworks[homeworkID]; ok {
		return h.GroupID
	}
	return ""
}

func newTestRepository(db *memDB) *repository.Repository {
	return &repository.Repository{
		User:       &mockUserRepo{db: db},
		Course:     &mockCourseRepo{db: db},
		Group:      &mockGroupRepo{db: db},
		Schedule:   &mockScheduleRepo{db: db},
		Homework:   &mockHomeworkRepo{db: db},
		Submission: &mockSubmissionRepo{db: db},
		Rating:     &mockRatingRepo{db: db},
	}
}

// uuidSyntaxErr 模拟 PostgreSQL 对 uuid 列传入非法字面量时的报错（非 ErrRecordNotFound）
func uuidSyntaxErr(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("ERROR: invalid input syntax for type uuid: %q (SQLSTATE 22P02)", id)
	}
	return nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.db.users {
		if u.Phone == user.Phone {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.db.nextID()
	}
	m.db.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) CreateBatch(ctx context.Context, users []*model.User) error {
	for _, u := range users {
		if err := m.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.db.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) List(_ context.Context, role model.Role, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.db.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Phone < all[j].Phone })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.db.users[user.UserID] = user
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ db *memDB }

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = m.db.nextID()
	}
	m.db.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.db.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByName(_ context.Context, name string) (*model.Course, error) {
	for _, c := range m.db.courses {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.db.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct{ db *memDB }

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		group.GroupID = m.db.nextID()
	}
	stored := *group
	stored.Students = nil
	m.db.groups[group.GroupID] = &stored
	m.db.enrolments[group.GroupID] = make(map[string]bool)
	for _, s := range group.Students {
		m.db.enrolments[group.GroupID][s.UserID] = true
	}
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g := m.db.loadGroup(id, true); g != nil {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) list(match func(g *model.Group) bool) []model.Group {
	var result []model.Group
	for id, g := range m.db.groups {
		if match(g) {
			result = append(result, *m.db.loadGroup(id, false))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockGroupRepo) ListAll(_ context.Context) ([]model.Group, error) {
	return m.list(func(*model.Group) bool { return true }), nil
}

func (m *mockGroupRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Group, error) {
	return m.list(func(g *model.Group) bool { return g.TeacherID == teacherID }), nil
}

func (m *mockGroupRepo) ListByStudent(_ context.Context, studentID string) ([]model.Group, error) {
	return m.list(func(g *model.Group) bool { return m.db.enrolments[g.GroupID][studentID] }), nil
}

func (m *mockGroupRepo) IDsByTeacher(ctx context.Context, teacherID string) ([]string, error) {
	groups, _ := m.ListByTeacher(ctx, teacherID)
	var ids []string
	for _, g := range groups {
		ids = append(ids, g.GroupID)
	}
	return ids, nil
}

func (m *mockGroupRepo) IDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	groups, _ := m.ListByStudent(ctx, studentID)
	var ids []string
	for _, g := range groups {
		ids = append(ids, g.GroupID)
	}
	return ids, nil
}

func (m *mockGroupRepo) IsEnrolled(_ context.Context, groupID, studentID string) (bool, error) {
	return m.db.enrolments[groupID][studentID], nil
}

func (m *mockGroupRepo) CountStudents(_ context.Context, groupIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, id := range groupIDs {
		if n := len(m.db.enrolments[id]); n > 0 {
			counts[id] = int64(n)
		}
	}
	return counts, nil
}

func (m *mockGroupRepo) ReplaceStudents(_ context.Context, group *model.Group, students []model.User) error {
	set := make(map[string]bool, len(students))
	for _, s := range students {
		set[s.UserID] = true
	}
	m.db.enrolments[group.GroupID] = set
	group.Students = students
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct{ db *memDB }

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if schedule.ScheduleID == "" {
		schedule.ScheduleID = m.db.nextID()
	}
	// 模拟 BeforeSave 钩子
	_ = schedule.BeforeSave(nil)
	m.db.schedules = append(m.db.schedules, schedule)
	return nil
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]model.Schedule, error) {
	allowed := idSet(filter.GroupIDs)
	var result []model.Schedule
	for _, s := range m.db.schedules {
		if filter.GroupIDs != nil && !allowed[s.GroupID] {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		cp := *s
		cp.Group = m.db.loadGroup(s.GroupID, false)
		result = append(result, cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

// ── Mock HomeworkRepository ──

type mockHomeworkRepo struct{ db *memDB }

func (m *mockHomeworkRepo) Create(_ context.Context, homework *model.Homework) error {
	if homework.HomeworkID == "" {
		homework.HomeworkID = m.db.nextID()
	}
	stored := *homework
	stored.Group = nil
	m.db.homeworks[homework.HomeworkID] = &stored
	return nil
}

func (m *mockHomeworkRepo) GetByID(_ context.Context, id string) (*model.Homework, error) {
	if err := uuidSyntaxErr(id); err != nil {
		return nil, err
	}
	if h := m.db.loadHomework(id); h != nil {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHomeworkRepo) ListByGroups(_ context.Context, groupIDs []string) ([]model.Homework, error) {
	allowed := idSet(groupIDs)
	var result []model.Homework
	for id, h := range m.db.homeworks {
		if allowed[h.GroupID] {
			result = append(result, *m.db.loadHomework(id))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockHomeworkRepo) CountByGroups(ctx context.Context, groupIDs []string) (int64, error) {
	list, _ := m.ListByGroups(ctx, groupIDs)
	return int64(len(list)), nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct{ db *memDB }

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.HomeworkSubmission) error {
	if m.db.submissionCreateErr != nil {
		return m.db.submissionCreateErr
	}
	for _, s := range m.db.submissions {
		if s.HomeworkID == sub.HomeworkID && s.StudentID == sub.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = m.db.nextID()
	}
	stored := *sub
	stored.Homework = nil
	stored.Student = nil
	m.db.submissions[sub.SubmissionID] = &stored
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.HomeworkSubmission, error) {
	if err := uuidSyntaxErr(id); err != nil {
		return nil, err
	}
	s, ok := m.db.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.db.loadSubmission(s)
	return &cp, nil
}

func (m *mockSubmissionRepo) GetByHomeworkAndStudent(_ context.Context, homeworkID, studentID string) (*model.HomeworkSubmission, error) {
	for _, s := range m.db.submissions {
		if s.HomeworkID == homeworkID && s.StudentID == studentID {
			cp := m.db.loadSubmission(s)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) sorted(match func(s *model.HomeworkSubmission) bool) []model.HomeworkSubmission {
	var result []model.HomeworkSubmission
	for _, s := range m.db.submissions {
		if match(s) {
			result = append(result, m.db.loadSubmission(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	return result
}

func (m *mockSubmissionRepo) ListByStudent(_ context.Context, studentID string) ([]model.HomeworkSubmission, error) {
	return m.sorted(func(s *model.HomeworkSubmission) bool { return s.StudentID == studentID }), nil
}

func (m *mockSubmissionRepo) ListByGroups(_ context.Context, filter repository.SubmissionFilter) ([]model.HomeworkSubmission, error) {
	allowed := idSet(filter.GroupIDs)
	return m.sorted(func(s *model.HomeworkSubmission) bool {
		gid := m.db.homeworkGroup(s.HomeworkID)
		if !allowed[gid] {
			return false
		}
		if filter.GroupID != "" && gid != filter.GroupID {
			return false
		}
		if filter.Graded != nil && *filter.Graded != (s.Score != nil) {
			return false
		}
		return true
	}), nil
}

func (m *mockSubmissionRepo) CountByHomeworks(_ context.Context, homeworkIDs []string) (map[string]int64, error) {
	allowed := idSet(homeworkIDs)
	counts := make(map[string]int64)
	for _, s := range m.db.submissions {
		if allowed[s.HomeworkID] {
			counts[s.HomeworkID]++
		}
	}
	return counts, nil
}

func (m *mockSubmissionRepo) CountUngradedByGroups(_ context.Context, groupIDs []string) (int64, error) {
	allowed := idSet(groupIDs)
	var n int64
	for _, s := range m.db.submissions {
		if s.Score == nil && allowed[m.db.homeworkGroup(s.HomeworkID)] {
			n++
		}
	}
	return n, nil
}

func (m *mockSubmissionRepo) UpdateGrade(_ context.Context, sub *model.HomeworkSubmission) error {
	stored, ok := m.db.submissions[sub.SubmissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Score = sub.Score
	stored.Feedback = sub.Feedback
	stored.GradedAt = sub.GradedAt
	return nil
}

// ── Mock RatingRepository ──

type mockRatingRepo struct{ db *memDB }

func (m *mockRatingRepo) Create(_ context.Context, rating *model.Rating) error {
	if rating.RatingID == "" {
		rating.RatingID = m.db.nextID()
	}
	stored := *rating
	stored.Student = nil
	stored.Group = nil
	m.db.ratings = append(m.db.ratings, &stored)
	return nil
}

func (m *mockRatingRepo) filter(match func(r *model.Rating) bool) []model.Rating {
	var result []model.Rating
	for _, r := range m.db.ratings {
		if match(r) {
			cp := *r
			cp.Student = m.db.users[r.StudentID]
			cp.Group = m.db.loadGroup(r.GroupID, false)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (m *mockRatingRepo) ListByStudent(_ context.Context, studentID string) ([]model.Rating, error) {
	return m.filter(func(r *model.Rating) bool { return r.StudentID == studentID }), nil
}

func (m *mockRatingRepo) ListByGroups(_ context.Context, groupIDs []string) ([]model.Rating, error) {
	allowed := idSet(groupIDs)
	return m.filter(func(r *model.Rating) bool { return allowed[r.GroupID] }), nil
}

func (m *mockRatingRepo) ListAll(_ context.Context) ([]model.Rating, error) {
	return m.filter(func(*model.Rating) bool { return true }), nil
}

// ═══════════════════════════════════════════════════════════
// Mock FileStorage
// ═══════════════════════════════════════════════════════════

type memStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	saveErr error
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (s *memStorage) Save(_ context.Context, key string, r io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return nil
}

func (s *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// ═══════════════════════════════════════════════════════════
// Mock TokenBlacklist
// ═══════════════════════════════════════════════════════════

type memBlacklist struct {
	entries map[string]time.Duration
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{entries: make(map[string]time.Duration)}
}

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.entries[jti] = ttl
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.entries[jti]
	return ok, nil
}
