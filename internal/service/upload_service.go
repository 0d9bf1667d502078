package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vendora/vendora/internal/config"

	"github.com/google/uuid"
)

// 按用途分目录存放：商品图、商户资质文档
var allowedUploadScenes = map[string]struct{}{
	"product":  {},
	"document": {},
	"common":   {},
}

var allowedUploadExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".pdf":  {},
}

// UploadService 文件上传服务
type UploadService struct {
	cfg *config.Config
}

// NewUploadService 创建文件上传服务
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// SaveFile 保存上传的文件，返回可提交给资质/商品记录的相对 URL
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	if file.Size > s.cfg.Upload.MaxSize {
		return "", fmt.Errorf("文件大小超过限制（最大 %d MB）", s.cfg.Upload.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedUploadExtensions[ext]; !ok {
		return "", fmt.Errorf("文件扩展名不被允许: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头部识别 MIME 类型，不信任扩展名
	buffer := make([]byte, 512)
	if _, err := src.Read(buffer); err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}
	contentType := http.DetectContentType(buffer)
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return "", fmt.Errorf("文件类型不被允许: %s", contentType)
	}

	normalizedScene := normalizeUploadScene(scene)

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	now := time.Now()
	year := now.Format("2006")
	month := now.Format("01")
	savePath := filepath.Join(s.cfg.Upload.Dir, normalizedScene, year, month, filename)

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s/%s/%s", strings.TrimSuffix(s.cfg.Upload.BaseURL, "/"), normalizedScene, year, month, filename), nil
}

func normalizeUploadScene(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "common"
	}
	if _, ok := allowedUploadScenes[value]; ok {
		return value
	}
	return "common"
}
