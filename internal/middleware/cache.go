package middleware

import (
	"bytes"
	"net/http"
	"time"

	"nexus/internal/metrics"
	"nexus/internal/pkg/cache"

	"github.com/gin-gonic/gin"
)

const HeaderCache = "X-Cache"

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

// Cache serves GET responses from store for ttl, keyed by the full request URI.
// Only 200 responses are stored. A nil store disables caching.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if e, ok := store.Get(key); ok {
			metrics.ResponseCacheTotal.WithLabelValues("hit").Inc()
			c.Header(HeaderCache, "HIT")
			c.Data(e.Status, e.ContentType, e.Body)
			c.Abort()
			return
		}

		metrics.ResponseCacheTotal.WithLabelValues("miss").Inc()
		c.Header(HeaderCache, "MISS")
		w := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() == http.StatusOK && len(c.Errors) == 0 {
			store.Set(key, cache.Entry{
				Status:      w.Status(),
				ContentType: w.Header().Get("Content-Type"),
				Body:        bytes.Clone(w.body.Bytes()),
			}, ttl)
		}
	}
}
