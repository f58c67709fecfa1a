// Package storage 作业提交文件的存储后端：本地磁盘或 Backblaze B2。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maktab/backend/config"
)

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("文件不存在")

// FileStorage 文件存储接口
// key 为存储内的相对路径（正斜杠分隔），由 NewKey 生成
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New 按配置创建存储后端
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (FileStorage, error) {
	switch cfg.Driver {
	case "local":
		s, err := NewLocal(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		logger.Info("文件存储: 本地磁盘", zap.String("dir", cfg.LocalDir))
		return s, nil
	case "b2":
		s, err := NewB2(ctx, cfg.B2.AccountID, cfg.B2.AppKey, cfg.B2.Bucket)
		if err != nil {
			return nil, err
		}
		logger.Info("文件存储: Backblaze B2", zap.String("bucket", cfg.B2.Bucket))
		return s, nil
	default:
		return nil, fmt.Errorf("未知的存储驱动 %q", cfg.Driver)
	}
}

// NewKey 为上传文件生成存储路径：<prefix>/<yyyy>/<mm>/<uuid><ext>
// 不做内容去重，每次上传都是新路径
func NewKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%04d/%02d/%s%s", prefix, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// validKey 拒绝绝对路径与 .. 片段
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
