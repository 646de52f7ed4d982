package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iceymoss/go-news/pkg/logger"

	"go.uber.org/zap"
)

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	basePath string // 基础存储路径，如 ./public
	baseURL  string // 基础访问URL，如 http://localhost:8080/
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage 创建本地文件存储实例
func NewLocalStorage(basePath, baseURL string) *LocalStorage {
	// 确保基础目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Error("创建存储目录失败", zap.String("path", basePath), zap.Error(err))
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}
}

// BasePath 存储根目录
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// SaveFile 先写临时文件再 rename，避免读到写了一半的页面
func (s *LocalStorage) SaveFile(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("非法文件名: %q", filename)
	}

	// 构建完整路径
	folderPath := filepath.Join(s.basePath, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("创建文件夹失败: %w", err)
	}

	tmp, err := os.CreateTemp(folderPath, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	// 复制文件内容
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmpPath) // 如果复制失败，删除已创建的文件
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("设置文件权限失败: %w", err)
	}

	filePath := filepath.Join(folderPath, name)
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	// 返回访问URL
	return s.GetFileURL(filepath.Join(folder, name)), nil
}

// ReadFile 读取文件
func (s *LocalStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.basePath, filepath.Clean("/"+path)))
}

// ListFiles 按文件名排序返回
func (s *LocalStorage) ListFiles(ctx context.Context, folder, pattern string) ([]FileInfo, error) {
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(s.basePath, folder, pattern))
	if err != nil {
		return nil, fmt.Errorf("匹配文件失败: %w", err)
	}

	files := make([]FileInfo, 0, len(matches))
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil || st.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Name:    st.Name(),
			Path:    filepath.ToSlash(filepath.Join(folder, st.Name())),
			Size:    st.Size(),
			ModTime: st.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// DeleteFile 删除文件
func (s *LocalStorage) DeleteFile(ctx context.Context, url string) error {
	// 从URL中提取相对路径
	relativePath := strings.TrimPrefix(url, s.baseURL)
	relativePath = strings.TrimPrefix(relativePath, "/")

	filePath := filepath.Join(s.basePath, filepath.Clean("/"+relativePath))

	// 检查文件是否存在
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil // 文件不存在，认为删除成功
	}

	// 删除文件
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("删除文件失败: %w", err)
	}

	return nil
}

// GetFileURL 获取文件的访问URL
func (s *LocalStorage) GetFileURL(path string) string {
	// 确保路径使用正斜杠（URL格式）
	urlPath := strings.TrimPrefix(filepath.ToSlash(path), "/")

	if s.baseURL == "" {
		return "/" + urlPath
	}
	baseURL := s.baseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + urlPath
}
