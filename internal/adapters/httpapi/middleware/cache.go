package middleware

import (
	"bytes"
	"net/http"
	"time"
	pageCachePort "yatube/internal/ports/pagecache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cacheWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves GET responses from cache, keyed by request URI, and stores
// successful responses for ttl. Entries only go away by expiry or Clear.
func CachePage(cache pageCachePort.PageCache, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.Request.URL.RequestURI()

		page, err := cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Page cache read failed", zap.String("key", key), zap.Error(err))
		}
		if page != nil {
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		err = cache.Set(ctx, key, &pageCachePort.Page{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}, ttl)
		if err != nil {
			logger.Warn("Page cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}
