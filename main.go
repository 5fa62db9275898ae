package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mattjboland/boutique-ado/src/bag"
	checkoutUseCase "github.com/mattjboland/boutique-ado/src/checkout/application/usecase"
	checkoutCtrl "github.com/mattjboland/boutique-ado/src/checkout/infrastructure/controller"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	checkoutPersistence "github.com/mattjboland/boutique-ado/src/checkout/infrastructure/persistence"
	"github.com/mattjboland/boutique-ado/src/notification"
	productCache "github.com/mattjboland/boutique-ado/src/products/infrastructure/cache"
	productPersistence "github.com/mattjboland/boutique-ado/src/products/infrastructure/persistence"
	profilePersistence "github.com/mattjboland/boutique-ado/src/profiles/infrastructure/persistence"
	"github.com/mattjboland/boutique-ado/src/shared/infrastructure/config"
	"github.com/mattjboland/boutique-ado/src/shared/infrastructure/metrics"
)

func main() {
	log.Println("🚀 Boutique Ado Checkout Service - Iniciando...")

	cfg := config.Load()

	// Configurar el router con Gin
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Métricas Prometheus
	checkoutMetrics := metrics.NewCheckoutMetrics()
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// Conectar a la base de datos
	cred := &checkoutPersistence.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		SSLMode:           cfg.DBSSLMode,
		MigrationsDirPath: "migrations",
	}

	db, err := checkoutPersistence.Connect(cred)
	if err != nil {
		log.Printf("⚠️  Error al conectar a la base de datos: %v", err)
		log.Println("⚠️  El servicio no puede operar sin base de datos")
		os.Exit(1)
	}
	defer db.Close()
	log.Println("✅ Conexión a la base de datos establecida con éxito")

	if err := checkoutPersistence.RunMigrations(db, cred); err != nil {
		log.Printf("⚠️  Error aplicando migraciones: %v", err)
		os.Exit(1)
	}
	log.Println("✅ Migraciones aplicadas")

	// Conectar a Redis (bags de sesión)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Printf("✅ Cliente Redis configurado en %s", cfg.RedisAddr)

	// Publisher de eventos (no-op sin brokers configurados)
	publisher := notification.NewEventPublisher(cfg.KafkaBrokers)
	if publisher.Enabled() {
		log.Println("✅ Publisher de eventos Kafka habilitado")
	} else {
		log.Println("⚠️  Kafka deshabilitado (sin brokers configurados)")
	}
	defer publisher.Close()

	// API v1 grupo de rutas
	v1 := router.Group("/api/v1")

	setupCheckoutModule(v1, db, redisClient, publisher, cfg, checkoutMetrics)

	log.Printf("✅ Servidor Checkout iniciado en http://localhost:%s", cfg.Port)
	log.Printf("✅ Health endpoint: GET http://localhost:%s/health", cfg.Port)
	router.Run(":" + cfg.Port)
}

// setupCheckoutModule configura el módulo Checkout completo
func setupCheckoutModule(
	router *gin.RouterGroup,
	db *sql.DB,
	redisClient *redis.Client,
	publisher *notification.EventPublisher,
	cfg *config.Config,
	checkoutMetrics *metrics.CheckoutMetrics,
) {
	log.Println("Configurando módulo Checkout...")

	// Repositorios
	orderRepo := checkoutPersistence.NewOrderPostgresRepository(db)
	productRepo := productPersistence.NewProductPostgresRepository(db)
	profileRepo := profilePersistence.NewProfilePostgresRepository(db)

	// Cache de catálogo: solo para valorizar el bag al iniciar el
	// checkout. La materialización de órdenes usa el repo directo, una
	// entrada vieja del cache no puede producir una orden inconsistente.
	catalogCache := productCache.NewProductCache()
	if err := catalogCache.LoadFromDB(db); err != nil {
		log.Printf("⚠️  Warning: Could not preload product catalog: %v", err)
	}
	cachedProductRepo := productCache.NewCachedProductRepository(catalogCache, productRepo)

	// Bag de sesión y gateway de pagos
	bagStore := bag.NewStore(redisClient)
	intentClient := gateway.NewPaymentIntentClient(cfg.PaymentGatewayURL)

	// Notificaciones
	dispatcher := notification.NewEmailDispatcher(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	}, publisher, checkoutMetrics)

	// Casos de uso
	startCheckoutUC := checkoutUseCase.NewStartCheckoutUseCase(bagStore, cachedProductRepo, intentClient, cfg.StripeSecretKey, cfg.StripePublicKey, cfg.StripeCurrency)
	cacheCheckoutDataUC := checkoutUseCase.NewCacheCheckoutDataUseCase(bagStore, intentClient, cfg.StripeSecretKey)
	submitCheckoutUC := checkoutUseCase.NewSubmitCheckoutUseCase(orderRepo, productRepo, profileRepo, bagStore, dispatcher)
	getOrderUC := checkoutUseCase.NewGetOrderUseCase(orderRepo)
	reconcileUC := checkoutUseCase.NewReconcilePaymentUseCase(orderRepo, productRepo, profileRepo, dispatcher)

	// Controladores
	checkoutController := checkoutCtrl.NewCheckoutController(startCheckoutUC, cacheCheckoutDataUC, submitCheckoutUC, getOrderUC, checkoutMetrics)
	webhookController := checkoutCtrl.NewWebhookController(reconcileUC, cfg.StripeWebhookKey, checkoutMetrics)

	checkoutController.RegisterRoutes(router)
	webhookController.RegisterRoutes(router)

	log.Println("Módulo Checkout configurado exitosamente")
}
