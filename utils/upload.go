package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yatube/yatube/config"
)

const maxImageSize = 10 * 1024 * 1024

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveImage stores the uploaded image from the named form field under a
// dated directory and returns its public URL and absolute path. A request
// without that field is not an error; both strings come back empty.
func SaveImage(ctx *gin.Context, field string) (string, string, error) {
	file, header, err := ctx.Request.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return "", "", nil
		}
		return "", "", fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		return "", "", fmt.Errorf("unsupported image type %q", ext)
	}
	if header.Size > maxImageSize {
		return "", "", fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}

	now := time.Now()
	baseDir := filepath.Join(config.Get().UploadsDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	safeName := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	// LimitedReader backstops clients that lie about Content-Length.
	lr := &io.LimitedReader{R: file, N: maxImageSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("write file: %w", err)
	}
	if written > maxImageSize {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}

	relURL := "/" + filepath.ToSlash(dstPath)
	absPath, _ := filepath.Abs(dstPath)
	return relURL, absPath, nil
}
