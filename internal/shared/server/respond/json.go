package respond

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/util"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 Created JSON response.
func Created(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusCreated, payload)
}

// Attachment streams r as a file download. Returns the number of bytes
// written; headers are already sent when the copy fails.
func Attachment(c *gin.Context, fileName, contentType string, r io.Reader) (int64, error) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", util.AttachmentDisposition(fileName))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	return io.Copy(c.Writer, r)
}
