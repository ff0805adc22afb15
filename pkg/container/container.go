package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"bookstore-storefront/internal/config"
	infraCache "bookstore-storefront/internal/infrastructure/cache"
	"bookstore-storefront/internal/infrastructure/database"
	"bookstore-storefront/internal/infrastructure/queue"
	queueHandlers "bookstore-storefront/internal/infrastructure/queue/handlers"
	"bookstore-storefront/internal/infrastructure/storage"
	"bookstore-storefront/internal/shared/middleware"
	"bookstore-storefront/pkg/cache"
	pkgDatabase "bookstore-storefront/pkg/database"
	"bookstore-storefront/pkg/jwt"

	checkoutHandler "bookstore-storefront/internal/domains/checkout/handler"
	checkoutService "bookstore-storefront/internal/domains/checkout/service"
	couponHandler "bookstore-storefront/internal/domains/coupon/handler"
	couponRepo "bookstore-storefront/internal/domains/coupon/repository"
	couponService "bookstore-storefront/internal/domains/coupon/service"
	offerHandler "bookstore-storefront/internal/domains/offer/handler"
	offerRepo "bookstore-storefront/internal/domains/offer/repository"
	offerService "bookstore-storefront/internal/domains/offer/service"
	orderHandler "bookstore-storefront/internal/domains/order/handler"
	orderRepo "bookstore-storefront/internal/domains/order/repository"
	orderService "bookstore-storefront/internal/domains/order/service"
	pricingService "bookstore-storefront/internal/domains/pricing/service"
	productRepo "bookstore-storefront/internal/domains/product/repository"
	refundModel "bookstore-storefront/internal/domains/refund/model"
	refundService "bookstore-storefront/internal/domains/refund/service"
	reportHandler "bookstore-storefront/internal/domains/report/handler"
	reportService "bookstore-storefront/internal/domains/report/service"
	walletHandler "bookstore-storefront/internal/domains/wallet/handler"
	walletRepo "bookstore-storefront/internal/domains/wallet/repository"
	walletService "bookstore-storefront/internal/domains/wallet/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của api và worker
// Pattern: Service Locator + Dependency Injection
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Storage     *storage.MinIOStorage // nil khi MinIO không kết nối được
	TxRunner    pkgDatabase.TxRunner
	AsynqClient *queue.Client

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	ProductRepo productRepo.Repository
	OfferRepo   offerRepo.Repository
	CouponRepo  couponRepo.Repository
	WalletRepo  walletRepo.Repository
	OrderRepo   orderRepo.OrderRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	RefundConfig    refundModel.Config
	OfferService    *offerService.OfferService
	CouponService   *couponService.CouponService
	WalletService   *walletService.WalletService
	Quoter          *pricingService.Quoter
	CheckoutService *checkoutService.CheckoutService
	RefundProcessor *refundService.Processor
	OrderService    orderService.OrderService
	ReportService   *reportService.ReportService

	// ========================================
	// HANDLER LAYER
	// ========================================
	OfferHandler    *offerHandler.OfferHandler
	CouponHandler   *couponHandler.AdminHandler
	WalletHandler   *walletHandler.WalletHandler
	CheckoutHandler *checkoutHandler.CheckoutHandler
	OrderHandler    *orderHandler.OrderHandler
	ReportHandler   *reportHandler.ReportHandler
	JobHandler      *queueHandlers.JobHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo toàn bộ dependency graph
// Thứ tự: Config → DB → Redis → Storage → Repositories → Services → Handlers
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	c.TxRunner = pkgDatabase.NewTxRunner(db.Pool)
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	// Checkout session nằm trên Redis nên lỗi Redis là lỗi khởi động
	log.Println("🔴 Connecting to Redis...")

	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis, "storefront")
	c.AsynqClient = queue.NewClient(queue.RedisOpt(cfg.Redis))
	log.Println("✅ Redis connected")

	// ========================================
	// STEP 4: INITIALIZE STORAGE (optional)
	// ========================================
	// MinIO chỉ dùng để lưu báo cáo, lỗi thì tắt tính năng store
	minioStorage, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		log.Printf("⚠️  MinIO unavailable, stored reports disabled: %v", err)
	} else {
		c.Storage = minioStorage
		log.Println("✅ MinIO connected")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// ========================================
	// STEP 5: REPOSITORIES → SERVICES → HANDLERS
	// ========================================
	c.initRepositories()

	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	log.Println("✅ Services initialized")

	if err := c.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.OfferRepo = offerRepo.NewPostgresRepository(pool)
	c.CouponRepo = couponRepo.NewPostgresRepository(pool)
	c.WalletRepo = walletRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
}

func (c *Container) initServices() error {
	cfg := c.Config

	taxRate, err := decimal.NewFromString(cfg.Pricing.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid tax rate: %w", err)
	}

	refundCfg, err := RefundConfig(cfg.Refund)
	if err != nil {
		return err
	}
	c.RefundConfig = refundCfg

	c.OfferService = offerService.NewOfferService(c.OfferRepo, c.ProductRepo, c.Cache, cfg.Pricing.OfferTTL)
	c.CouponService = couponService.NewCouponService(c.CouponRepo)
	c.WalletService = walletService.NewWalletService(c.WalletRepo, c.TxRunner)

	c.Quoter = pricingService.NewQuoter(c.ProductRepo, c.OfferService, c.CouponService, pricingService.NewBuilder(taxRate))
	c.CheckoutService = checkoutService.NewCheckoutService(c.Cache, c.Quoter, cfg.Checkout.SessionTTL)

	c.RefundProcessor = refundService.NewProcessor(refundCfg, c.OrderRepo, c.WalletService, c.TxRunner)
	c.OrderService = orderService.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CouponService,
		c.WalletService,
		c.CheckoutService,
		c.RefundProcessor,
		c.TxRunner,
	)

	// tránh typed-nil: Storage nil thì ObjectStore phải là nil interface
	var store reportService.ObjectStore
	if c.Storage != nil {
		store = c.Storage
	}
	c.ReportService = reportService.NewReportService(c.OrderRepo, store)

	return nil
}

func (c *Container) initHandlers() error {
	couponLimit, err := middleware.RateLimit(c.Config.RateLimit.CouponRate)
	if err != nil {
		return err
	}

	c.OfferHandler = offerHandler.NewOfferHandler(c.OfferService)
	c.CouponHandler = couponHandler.NewAdminHandler(c.CouponService)
	c.WalletHandler = walletHandler.NewWalletHandler(c.WalletService)
	c.CheckoutHandler = checkoutHandler.NewCheckoutHandler(c.CheckoutService, couponLimit)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.ReportHandler = reportHandler.NewReportHandler(c.ReportService)
	c.JobHandler = queueHandlers.NewJobHandler(c.AsynqClient)
	return nil
}

// ========================================
// HELPER METHODS
// ========================================

// RefundConfig map cấu hình refund dạng chuỗi sang refund.Config
func RefundConfig(raw config.RefundConfig) (refundModel.Config, error) {
	cfg, err := refundModel.ParseConfig(
		raw.SingleItemFullTotal,
		raw.RefundableItemStatuses,
		raw.RefundablePaymentStatuses,
		raw.CODRequiresEvidence,
	)
	if err != nil {
		return refundModel.Config{}, fmt.Errorf("invalid refund config: %w", err)
	}
	return cfg, nil
}

// RegisterAdminRoutes gom các handler admin, router chỉ cần gọi một lần
func (c *Container) RegisterAdminRoutes(admin *gin.RouterGroup) {
	c.OfferHandler.RegisterAdminRoutes(admin)
	c.CouponHandler.RegisterRoutes(admin)
	c.WalletHandler.RegisterAdminRoutes(admin)
	c.OrderHandler.RegisterAdminRoutes(admin)
	c.ReportHandler.RegisterAdminRoutes(admin)
	c.JobHandler.RegisterAdminRoutes(admin)
}

// RedisOpt cho asynq server/scheduler ở worker
func (c *Container) RedisOpt() asynq.RedisClientOpt {
	return queue.RedisOpt(c.Config.Redis)
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %v", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
