// Package media 把上传的文件保存到静态资源目录
// 文件名为随机 uuid，返回可直接访问的 /static/... 路径
package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"church_app_server/pkg/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store 本地上传目录
type Store struct {
	dir       string   // 磁盘目录
	urlPrefix string   // 对外路径前缀，如 /static/media
	maxSize   int64    // 单个文件最大字节数
	allowed   []string // 允许的 Content-Type 前缀
}

// NewStore 创建上传目录，allowed 为空时不限类型
func NewStore(dir, urlPrefix string, maxSize int64, allowed ...string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxSize:   maxSize,
		allowed:   allowed,
	}, nil
}

// Save 校验大小与类型后写入磁盘，返回访问路径
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", errorx.New(errorx.CodeInvalidParam, "请选择文件")
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", errorx.Newf(errorx.CodeInvalidParam, "文件不能超过 %dMB", s.maxSize>>20)
	}

	src, err := fh.Open()
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeInvalidParam, "读取上传文件失败")
	}
	defer src.Close()

	// 按内容判断类型，不信任客户端给的 Content-Type
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errorx.Wrap(err, errorx.CodeInvalidParam, "读取上传文件失败")
	}
	contentType := http.DetectContentType(head[:n])
	if !s.accepts(contentType) {
		return "", errorx.Newf(errorx.CodeInvalidParam, "不支持的文件类型 %s", contentType)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		zap.L().Error("create upload file", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	defer dst.Close()

	if _, err := dst.Write(head[:n]); err != nil {
		zap.L().Error("write upload file", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if _, err := io.Copy(dst, src); err != nil {
		zap.L().Error("write upload file", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return s.urlPrefix + "/" + name, nil
}

func (s *Store) accepts(contentType string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	for _, prefix := range s.allowed {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
