package handlers

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parley-chat/parley/config"
)

// allowedImageExts maps accepted upload extensions to the MIME type their
// content must sniff as. Extension and content must agree; a renamed
// executable does not become an image.
var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// UploadResponse carries the public URL of a stored image.
type UploadResponse struct {
	URL string `json:"url"`
}

// HandleUpload accepts a single image in the "image" form field, stores it
// under a fresh UUID name in the upload directory, and returns its URL.
// Oversized uploads, unknown extensions, and files whose bytes don't match
// their extension are rejected.
func HandleUpload(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > cfg.UploadMaxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		// Backstop for chunked requests that lie about their length.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.UploadMaxBytes)

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > cfg.UploadMaxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		wantMIME, ok := allowedImageExts[ext]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only jpeg, jpg, png and gif files are allowed"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}
		mt, err := mimetype.DetectReader(src)
		src.Close()
		if err != nil || !mt.Is(wantMIME) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file content does not match its extension"})
			return
		}

		name := uuid.New().String() + ext
		dst := filepath.Join(cfg.UploadDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			log.Printf("failed to store upload %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}

		c.JSON(http.StatusOK, UploadResponse{URL: "/uploads/" + name})
	}
}
