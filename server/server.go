// Package server exposes the storefront REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/example/keebstore/pkg/auth"
	"github.com/example/keebstore/pkg/cart"
	"github.com/example/keebstore/pkg/checkout"
	"github.com/example/keebstore/pkg/config"
	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/payment"
	"github.com/example/keebstore/pkg/pricing"
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductStore is the catalog surface the handlers consume.
type ProductStore interface {
	List(ctx context.Context, f repository.ProductFilter) ([]models.Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type OrderStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
	SetTracking(ctx context.Context, id primitive.ObjectID, trackingNumber string) error
	UserHasPaidOrderWith(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	Stats(ctx context.Context) (int64, float64, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type AuditStore interface {
	Record(ctx context.Context, log *repository.AuditLog) error
	ListByEntity(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error)
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, req checkout.Request) (*models.Order, error)
}

// Deps bundles the collaborators behind the HTTP surface.
type Deps struct {
	Products ProductStore
	Orders   OrderStore
	Reviews  ReviewStore
	Users    UserStore
	Audit    AuditStore
	Carts    cart.Store
	Checkout CheckoutService
	Verifier payment.Verifier
	Pricing  *pricing.Calculator
	Tokens   *auth.Manager
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	deps   Deps
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
		deps:   deps,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.register)
			authGroup.POST("/login", s.login)
			authGroup.GET("/me", s.requireAuth(), s.me)
			authGroup.PUT("/profile", s.requireAuth(), s.updateProfile)
		}

		products := api.Group("/products")
		{
			products.GET("", s.listProducts)
			products.GET("/:slug", s.getProductBySlug)
			products.POST("", s.requireAuth(), s.requireAdmin(), s.createProduct)
			products.PUT("/id/:id", s.requireAuth(), s.requireAdmin(), s.updateProduct)
			products.DELETE("/id/:id", s.requireAuth(), s.requireAdmin(), s.deleteProduct)
		}

		carts := api.Group("/cart", s.optionalAuth())
		{
			carts.GET("", s.getCart)
			carts.GET("/quote", s.quoteCart)
			carts.POST("", s.addToCart)
			carts.PUT("/:productId", s.updateCartItem)
			carts.DELETE("/:productId", s.removeCartItem)
			carts.DELETE("", s.clearCart)
		}

		orders := api.Group("/orders", s.requireAuth())
		{
			orders.POST("", s.createOrder)
			orders.GET("/myorders", s.myOrders)
			orders.GET("/:id", s.getOrder)
			orders.GET("", s.requireAdmin(), s.listOrders)
			orders.PUT("/:id/pay", s.payOrder)
			orders.PUT("/:id/status", s.requireAdmin(), s.updateOrderStatus)
		}

		reviews := api.Group("/reviews")
		{
			reviews.POST("", s.requireAuth(), s.createReview)
			reviews.GET("/:productId", s.listProductReviews)
			reviews.PUT("/review/:id", s.requireAuth(), s.updateReview)
			reviews.DELETE("/review/:id", s.requireAuth(), s.deleteReview)
		}

		admin := api.Group("/admin", s.requireAuth(), s.requireAdmin())
		{
			admin.GET("/stats", s.adminStats)
			admin.GET("/users", s.listUsers)
			admin.GET("/audit/:entityId", s.auditTrail)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("API server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
