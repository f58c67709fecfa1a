package service

import (
	"bytes"
	"context"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = apperrors.New(apperrors.KindInternal, 16101, "生成 Excel 文件失败")
)

const (
	ratingsSheet    = "Ratings"
	ratingsFilename = "ratings.xlsx"
)

// ratingsHeader 导出表头，列顺序固定
var ratingsHeader = []interface{}{"Student", "Group", "Score", "Attendance"}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRatings 导出全部评分为 Excel，仅管理员可用；无数据时只有表头
	ExportRatings(ctx context.Context, p model.Principal) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRatings — 导出评分为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Ratings"
//   - 第 1 行：Student | Group | Score | Attendance
//   - 之后每条评分一行：学生手机号、小组名、分数、是否出勤（布尔）

func (s *exportService) ExportRatings(ctx context.Context, p model.Principal) (*bytes.Buffer, string, error) {
	if !p.Is(model.RoleAdmin) {
		return nil, "", ErrForbiddenRole
	}

	ratings, err := s.repo.Rating.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询评分失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(ratingsSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(ratingsSheet, "A", "A", 18)
	f.SetColWidth(ratingsSheet, "B", "B", 24)
	f.SetColWidth(ratingsSheet, "C", "D", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	if err := f.SetSheetRow(ratingsSheet, "A1", &ratingsHeader); err != nil {
		s.logger.Error("写入表头失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetCellStyle(ratingsSheet, "A1", "D1", headerStyle)

	// 数据行
	for i := range ratings {
		r := &ratings[i]
		studentPhone, groupName := "", ""
		if r.Student != nil {
			studentPhone = r.Student.Phone
		}
		if r.Group != nil {
			groupName = r.Group.Name
		}

		row := []interface{}{studentPhone, groupName, r.Score, r.Attendance}
		if err := f.SetSheetRow(ratingsSheet, cell("A", i+2), &row); err != nil {
			s.logger.Error("写入评分行失败", zap.Int("row", i+2), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出评分", zap.Int("rows", len(ratings)))
	return buf, ratingsFilename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}
