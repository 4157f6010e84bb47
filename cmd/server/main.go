package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/fleetpipe/fleetpipe/config"
	"github.com/fleetpipe/fleetpipe/module/core"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	redisClient, err := config.NewRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	coreModule, err := core.Build(db, amqpConn, mqttClient, redisClient)
	if err != nil {
		log.Fatalf("core module: %v", err)
	}
	defer coreModule.Stop()

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	if err := coreModule.StartSweep(cfg.SweepCron); err != nil {
		log.Fatalf("start sweep: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, redisClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	log.Infof("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
