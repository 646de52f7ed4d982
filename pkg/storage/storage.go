package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo 存储中的文件
type FileInfo struct {
	Name    string // 相对 folder 的文件名
	Path    string // 相对存储根目录的路径
	Size    int64
	ModTime time.Time
}

// FileStorage 文件存储接口
// 日报页面和首页都通过它写出，方便以后切换到对象存储
type FileStorage interface {
	// SaveFile 写入文件，同名文件直接覆盖
	// 返回: 文件的访问URL
	SaveFile(ctx context.Context, file io.Reader, filename, folder string) (string, error)

	// ReadFile 读取文件内容，path 为相对存储根目录的路径
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// ListFiles 列出 folder 下匹配 glob pattern 的文件
	ListFiles(ctx context.Context, folder, pattern string) ([]FileInfo, error)

	// DeleteFile 删除文件
	// url: 文件的访问URL
	DeleteFile(ctx context.Context, url string) error

	// GetFileURL 获取文件的访问URL
	// path: 文件的存储路径
	GetFileURL(path string) string
}
