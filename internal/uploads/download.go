package uploads

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RegisterDownload serves GET /download/:filename as an attachment.
func (s *Store) RegisterDownload(r gin.IRouter) {
	r.GET("/download/:filename", s.download)
}

func (s *Store) download(c *gin.Context) {
	name := c.Param("filename")
	path, err := s.Resolve(name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": false, "message": ErrFileNotFound.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": false, "message": err.Error()})
		return
	}

	c.FileAttachment(path, DisplayName(name))
}
