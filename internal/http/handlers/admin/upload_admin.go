package admin

import (
	"github.com/vendora/vendora/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UploadFile 上传文件（商品图、资质文档），返回可提交的相对 URL
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	scene := c.DefaultPostForm("scene", "common")

	url, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		response.Error(c, response.CodeInternal, err.Error())
		return
	}

	response.Success(c, gin.H{
		"url":      url,
		"filename": file.Filename,
		"size":     file.Size,
	})
}
