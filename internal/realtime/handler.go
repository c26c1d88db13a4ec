package realtime

import (
	"net/url"
	"strings"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/middleware"
)

// Handler upgrades authenticated requests to websocket clients of hub.
// originPatterns lists the browser origin hosts allowed to connect; requests
// from the API's own host are always accepted.
func Handler(hub *Hub, originPatterns []string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := ws.Accept(c.Writer, c.Request, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept failed", zap.Error(err))
			return
		}

		userID := c.GetString(middleware.ContextUserID)
		logger.Debug("websocket connected", zap.String("user_id", userID))

		client := NewClient(hub, conn, userID)
		client.Run(c.Request.Context())

		logger.Debug("websocket disconnected", zap.String("user_id", userID))
	}
}

// OriginPatterns converts CORS origins ("https://app.example.org") into the
// host patterns the websocket handshake checks.
func OriginPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
