package wire

import (
	"Huddle/internal/api"
	"Huddle/internal/api/config"
	"Huddle/internal/api/handler"
	"Huddle/internal/job"
	"Huddle/internal/pkg/cron"
	"Huddle/internal/pkg/kafka"
	"Huddle/internal/pkg/minio"
	"Huddle/internal/pkg/msgstore"
	"Huddle/internal/pkg/ratelimit"
	"Huddle/internal/pkg/realtime"
	"Huddle/internal/pkg/redis"
	"Huddle/internal/repository"
	"Huddle/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const limiterIdleTTL = 10 * time.Minute

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Stream       *realtime.RedisStream
	KafkaManager *kafka.ConsumerManager // kafka.enable 为 false 时为 nil
	CronMgr      *cron.Manager
	Sessions     service.SessionRegistry
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	messageRepo := repository.NewMessageRepo(db)
	reactionRepo := repository.NewReactionRepo(db)
	channelRepo := repository.NewChannelRepo(db)
	profileRepo := repository.NewProfileRepo(db)

	stream := realtime.NewRedisStream(redis.Rdb, cfg.ChangeStream.ChannelPrefix, cfg.ChangeStream.BufferSize)
	revocations := redis.TokenRevocation{}
	sessions := service.NewSessionRegistry()

	chatService := service.NewChatService(messageRepo, reactionRepo, channelRepo, profileRepo)
	authService := service.NewAuthService(revocations, sessions)

	newSync := func(viewerID uint64, observer service.Observer) service.SyncService {
		return service.NewSyncService(viewerID, msgstore.New(), messageRepo, reactionRepo, stream, observer, cfg.Sync)
	}

	httpLimits := ratelimit.NewPool(cfg.RateLimit.HTTPRate, cfg.RateLimit.HTTPBurst, limiterIdleTTL)
	wsLimits := ratelimit.NewPool(cfg.RateLimit.WSRate, cfg.RateLimit.WSBurst, limiterIdleTTL)

	handlers := &api.HandlersGroup{
		ChatHandler:    handler.NewChatHandler(chatService),
		AuthHandler:    handler.NewAuthHandler(authService),
		MediaHandler:   handler.NewMediaHandler(minio.NewStorage(), cfg.MinIO.MaxUploadSize),
		WsHandler:      handler.NewWsHandler(chatService, sessions, newSync, wsLimits, cfg.WebSocket, cfg.Server.AllowedOrigins),
		Revocations:    revocations,
		HTTPLimits:     httpLimits,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	router := api.SetupRouter(handlers)

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, stream)
		if err != nil {
			return nil, err
		}
	}

	cronMgr := cron.NewCronManager(cfg.Sync.ReconcileSpec,
		job.NewReconcileJob(sessions),
		job.NewLimiterSweepJob(httpLimits, wsLimits))

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Stream:       stream,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		Sessions:     sessions,
	}, nil
}
