package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealer-portal/internal/auth"
	"dealer-portal/internal/config"
	httpctl "dealer-portal/internal/controllers/http"
	"dealer-portal/internal/infra"
	"dealer-portal/internal/infra/kafka"
	mmysql "dealer-portal/internal/infra/mysql"
	"dealer-portal/internal/infra/rabbitmq"
	mredis "dealer-portal/internal/infra/redis"
	"dealer-portal/internal/logging"
	mysqlrepo "dealer-portal/internal/repository/mysql"
	"dealer-portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := logging.New("info", true)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	db, err := mmysql.Open(cfg.MySQL)
	if err != nil {
		log.Fatal().Err(err).Msg("db: connect")
	}
	if err := mmysql.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db: migrate")
	}

	redisClient := mredis.NewClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("redis not reachable yet")
	}
	cancel()
	cache := mredis.NewCache(redisClient)

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init publisher")
	}
	defer publisher.Close()

	products := mysqlrepo.NewProductRepository(db)
	users := mysqlrepo.NewUserRepository(db)
	locks := services.NewSessionLocks()

	catalog := services.NewCatalogService(products, cfg.BrowsePageSize, log)
	catalog.SetBrowseCache(cache, cfg.BrowseCacheTTL)

	carts := services.NewCartService(mysqlrepo.NewCartRepository(db), products, locks, log)
	carts.SetProductCache(cache, cfg.ProductCacheTTL)

	orders := services.NewOrderService(mysqlrepo.NewTransactor(db), mysqlrepo.NewOrderRepository(db), users, publisher, locks, log)
	account := services.NewAccountService(mysqlrepo.NewDealerProfileRepository(db), log)

	nonces := auth.NewNonces(cfg.NonceSecret, cfg.NonceLifetime)
	sessions := auth.NewRedisSessions(redisClient, users, cfg.SessionTTL)

	handler := httpctl.NewHandler(carts, catalog, orders, account, nonces, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(httpctl.Recovery(log), httpctl.RequestLogger(log))

	handler.RegisterRoutes(r, sessions)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting dealer portal")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server run")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	orders.Wait()
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (infra.Publisher, error) {
	switch cfg.EventBroker {
	case config.BrokerKafka:
		return kafka.NewPublisher(cfg.KafkaBrokerList(), cfg.KafkaTopic, log)
	case config.BrokerRabbitMQ:
		return rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
	default:
		return infra.NopPublisher{}, nil
	}
}
