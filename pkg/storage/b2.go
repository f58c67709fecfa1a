package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
)

// B2Storage Backblaze B2 存储
type B2Storage struct {
	client *b2.Client
	bucket *b2.Bucket
}

// NewB2 连接 B2 并打开指定 Bucket
func NewB2(ctx context.Context, accountID, appKey, bucketName string) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("创建 B2 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("获取 B2 Bucket 失败: %w", err)
	}

	return &B2Storage{client: client, bucket: bucket}, nil
}

// Save 上传对象
func (s *B2Storage) Save(ctx context.Context, key string, r io.Reader) error {
	if !validKey(key) {
		return fmt.Errorf("非法的存储路径 %q", key)
	}
	return copyAndCommit(ctx, r, func(ctx context.Context) io.WriteCloser {
		return s.bucket.Object(key).NewWriter(ctx)
	})
}

// copyAndCommit 写入完成后 Close 提交对象
// 读取失败时先取消 writer 的 ctx 再 Close，blazer 会放弃上传而不是提交残缺对象
func copyAndCommit(ctx context.Context, r io.Reader, newWriter func(ctx context.Context) io.WriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := newWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("上传对象失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("完成上传失败: %w", err)
	}
	return nil
}

// Open 下载对象
func (s *B2Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return obj.NewReader(ctx), nil
}

// Delete 删除对象；对象不存在视为成功
func (s *B2Storage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return err
	}
	return nil
}
