package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MultipartOverhead is headroom for the multipart boundary and part headers
// on top of the payload itself.
const MultipartOverhead int64 = 1 << 20

// SizeLimitConfig represents size limit configuration
type SizeLimitConfig struct {
	// MaxBodySize caps the whole request body, multipart framing included.
	// It is a transport backstop, kept well above the upload gate's file
	// ceiling so an oversized file is rejected by the gate with a precise
	// message instead of being cut off mid-stream here.
	MaxBodySize int64
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize: (20 << 20) + MultipartOverhead,
	}
}

// SizeLimit rejects oversized requests before any body bytes are consumed
// and hard-caps the reader for clients that lie about Content-Length.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	if config.MaxBodySize <= 0 {
		config = DefaultSizeLimitConfig()
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"message": fmt.Sprintf("request body exceeds %d bytes", config.MaxBodySize),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		c.Next()
	}
}
