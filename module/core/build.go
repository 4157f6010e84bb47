package core

import (
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	handler "github.com/fleetpipe/fleetpipe/module/core/internal/handler/http"
	"github.com/fleetpipe/fleetpipe/module/core/internal/handler/subscriber"
	rediscache "github.com/fleetpipe/fleetpipe/module/core/internal/repository/cache/redis"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database/postgres"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/publisher/rabbitmq"
	redispub "github.com/fleetpipe/fleetpipe/module/core/internal/repository/publisher/redis"
	"github.com/fleetpipe/fleetpipe/module/core/internal/scheduler"
	"github.com/fleetpipe/fleetpipe/module/core/service"
)

type Module struct {
	LocationSvc *service.LocationService
	IngestSvc   *service.IngestService
	Segmenter   *service.TripSegmenter

	handler    *handler.VehicleHandler
	subscriber *subscriber.LocationSubscriber
	scheduler  *scheduler.Scheduler
	sweep      *scheduler.Sweep
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *redis.Client) (*Module, error) {
	locationRepo := postgres.NewLocationRepo(db)
	tripRepo := postgres.NewTripRepo(db)
	geofenceRepo := postgres.NewGeofenceRepo(db)
	eventRepo := postgres.NewGeofenceEventRepo(db)
	memberRepo := postgres.NewMemberRepo(db)

	notifier, err := rabbitmq.NewNotificationPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("notification publisher: %w", err)
	}
	livePub := redispub.NewLivePublisher(redisClient)
	state := rediscache.NewStateCache(redisClient)

	sched := scheduler.New()

	segmenter := service.NewTripSegmenter(locationRepo, tripRepo)
	locationSvc := service.NewLocationService(locationRepo, tripRepo)
	evaluator := service.NewGeofenceEvaluator(geofenceRepo, eventRepo, memberRepo, state, notifier)
	throttle := service.NewBroadcastThrottle(state)
	ingestSvc := service.NewIngestService(evaluator, throttle, livePub, state, segmenter, sched)

	h := handler.NewVehicleHandler(locationSvc, segmenter)
	sub := subscriber.NewLocationSubscriber(mqttClient, locationSvc, ingestSvc)
	sweep := scheduler.NewSweep(locationRepo, segmenter)

	return &Module{
		LocationSvc: locationSvc,
		IngestSvc:   ingestSvc,
		Segmenter:   segmenter,
		handler:     h,
		subscriber:  sub,
		scheduler:   sched,
		sweep:       sweep,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// StartSweep schedules the nightly resegmentation job. The cron spec
// comes from config so deployments can stagger it across regions.
func (m *Module) StartSweep(cronSpec string) error {
	return m.sweep.Start(cronSpec)
}

func (m *Module) Stop() {
	m.sweep.Stop()
	m.scheduler.Stop()
}
