package logger

import (
	"Huddle/internal/api/config"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// accessLogSkip 探活与指标抓取不写访问日志
var accessLogSkip = []string{"/api/ping", "/metrics"}

func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: accessLogSkip,
		Formatter: FormatAccessLog,
	}))

	r.Use(gin.Recovery())
}

// FormatAccessLog 输出与 slog JSON 同构的访问日志，便于 Logstash 统一入库
func FormatAccessLog(p gin.LogFormatterParams) string {
	var traceID string
	var userID uint64
	if p.Keys != nil {
		if id, ok := p.Keys[TraceIDKey].(string); ok {
			traceID = id
		}
		if uid, ok := p.Keys["user_id"].(uint64); ok {
			userID = uid
		}
	}
	if traceID == "" && p.Request != nil {
		traceID = TraceIDFrom(p.Request.Context())
	}

	var token, index string
	if config.Cfg != nil {
		token, index = config.Cfg.Logstash.Token, config.Cfg.Logstash.Index
	}

	return fmt.Sprintf(
		`{"time":"%s","level":"INFO","msg":"GIN_ACCESS","trace_id":"%s","log_token":"%s","target_index":"%s","method":"%s","path":"%s","status":%d,"latency":"%v","client_ip":"%s","user_id":%d}`+"\n",
		p.TimeStamp.Format(time.RFC3339),
		traceID,
		token,
		index,
		p.Method,
		p.Path,
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		userID,
	)
}
