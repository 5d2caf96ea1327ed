package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/CortinezO98/MisVigencias/internal/config"
	"github.com/CortinezO98/MisVigencias/internal/ports"
	"github.com/CortinezO98/MisVigencias/internal/pushqueue"
	"github.com/CortinezO98/MisVigencias/internal/repository"
	"github.com/CortinezO98/MisVigencias/internal/senders"
	"github.com/CortinezO98/MisVigencias/internal/service"
	"github.com/CortinezO98/MisVigencias/pkg/circuitbreaker"
	"github.com/CortinezO98/MisVigencias/pkg/postgres"
)

func main() {
	var (
		testMode = flag.Bool("test", false, "modo de prueba (no envía mensajes reales)")
		days     = flag.Int("days", 0, "simular recordatorio para X días en el futuro")
		date     = flag.String("date", "", "fecha as-of YYYY-MM-DD (anula -days)")
		envFile  = flag.String("env", "", "ruta al archivo .env")
	)
	flag.Parse()

	ctx, ctxStop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer ctxStop()

	_ = godotenv.Load()

	cfg, err := config.NewConfig(*envFile, "")
	if err != nil {
		log.Fatal(err)
	}

	zlog.InitConsole()
	if err := zlog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatal(fmt.Errorf("error setting log level to '%s': %w", cfg.LogLevel, err))
	}

	asOf, err := resolveAsOf(*date, *days)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid -date value")
	}
	if *days != 0 || *date != "" {
		fmt.Printf("Modo simulación: %s\n", asOf.Format("2006-01-02"))
	}

	postgresRetryStrategy := config.MakeStrategy(cfg.PostgresRetry)

	var db *sqlx.DB
	err = retry.DoContext(ctx, postgresRetryStrategy, func() error {
		var connErr error
		db, connErr = sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN)
		return connErr
	})
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnectionMaxLifetimeSeconds) * time.Second)

	zlog.Logger.Info().Msg("Successfully connected to PostgreSQL")

	migrationsPath := "file://./db/migrations"
	if err := postgres.MigrateUp(cfg.Database.DSN, migrationsPath); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("couldn't migrate postgres")
	}

	store := repository.NewStoreRepository(db, config.MakeStrategy(cfg.StoreRetry))

	var guard ports.RunGuard
	if cfg.Redis.Addr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		guard = repository.NewRedisRunGuard(redisClient)
		zlog.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("once-per-day guard enabled")
	}

	emailSender := senders.NewBreakerSender(
		senders.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From),
		circuitbreaker.New("email-breaker"),
	)
	whatsappSender := senders.NewBreakerSender(
		senders.NewWhatsAppSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.Mode != "live"),
		circuitbreaker.New("whatsapp-breaker"),
	)

	var pushSender ports.PushSender
	if cfg.RabbitMQ.Host != "" {
		publisher, err := pushqueue.NewPublisher(ctx, cfg.RabbitMQ, config.MakeStrategy(cfg.RabbitMQRetry))
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("push queue unavailable, push channel disabled")
		} else {
			defer publisher.Close()
			pushSender = senders.NewPushSender(publisher)
		}
	}

	dispatcher := service.NewDispatchService(service.DispatchDeps{
		Source:      store,
		Logs:        store,
		Tokens:      store,
		Guard:       guard,
		Email:       emailSender,
		WhatsApp:    whatsappSender,
		Push:        pushSender,
		Workers:     cfg.Workers,
		SendTimeout: time.Duration(cfg.SendTimeoutSeconds) * time.Second,
	})

	summary, err := dispatcher.Run(ctx, asOf, *testMode)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("reminder pass aborted")
	}

	if cfg.PushgatewayURL != "" {
		if err := service.PushMetrics(cfg.PushgatewayURL); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to push metrics")
		}
	}

	// Per-item failures are data, not process failure: the exit code stays 0.
	fmt.Printf("Listo. Enviados=%d | WhatsApp=%d | Push=%d | Omitidos=%d | Fallidos=%d\n",
		summary.Sent, summary.WhatsApp, summary.Push, summary.Skipped, summary.Failed)
}

func resolveAsOf(date string, days int) (time.Time, error) {
	if date != "" {
		return time.Parse("2006-01-02", date)
	}
	now := time.Now()
	if days != 0 {
		now = now.AddDate(0, 0, days)
	}
	return now, nil
}
