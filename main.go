package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/paypal"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(&models.Product{}, &models.User{}, &models.Cart{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close() // Ensure the connection is closed on exit

	// --- Payment gateway ---
	paypalClient := paypal.NewClient(paypal.Config{
		BaseURL:   cfg.PayPalAPIURL,
		ClientID:  cfg.PayPalClientID,
		AppSecret: cfg.PayPalAppSecret,
	})

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	seedProducts(productRepo)

	// --- Services ---
	calc := pricing.Calculator{
		FreeShippingThreshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
		ShippingPrice:         decimal.NewFromFloat(cfg.ShippingPrice),
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
	}
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo, calc, mqClient)
	orderService := services.NewOrderService(orderRepo, cartRepo, userRepo, productRepo, paypalClient, mqClient)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(productService, cfg.PageSize, cfg.LatestProductsLimit)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, cfg.PageSize)
	userHandler := handlers.NewUserHandler(userService, cfg.PageSize)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger
	app.Use(middleware.SessionCart(cfg.SessionCartCookie))

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	// Cart routes serve both anonymous sessions and signed-in users.
	cartHandler.RegisterRoutes(apiV1.Group("", middleware.OptionalAuth(authService)))

	// Routes that require a signed-in user.
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)

	// Back-office routes.
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)

	// --- Health check ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Paid-order consumer ---
	// Receipt processing happens off the request path: the capture endpoint
	// publishes order.paid and this consumer picks it up.
	log.Println("Starting paid-order consumer...")
	err = mqClient.ConsumePaidOrders(func(msg amqp.Delivery) error {
		var event struct {
			OrderID    string `json:"order_id"`
			UserID     string `json:"user_id"`
			PayerEmail string `json:"payer_email"`
			Total      string `json:"total"`
		}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Printf("Discarding malformed order.paid event: %v", err)
			return nil
		}
		log.Printf("Order %s paid (%s), sending receipt to %s", event.OrderID, event.Total, event.PayerEmail)
		return nil
	})
	if err != nil {
		log.Printf("Failed to start paid-order consumer: %v", err)
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedProducts populates an empty catalog with some initial data so a fresh
// install has something to browse.
func seedProducts(repo repositories.ProductRepository) {
	count, err := repo.Count()
	if err != nil || count > 0 {
		return
	}

	products := []models.Product{
		{
			Name:        "Polo Sporting Stretch Shirt",
			Slug:        "polo-sporting-stretch-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Polo",
			Description: "Classic Polo style with modern comfort",
			Images:      []string{"/images/sample-products/p1-1.jpg"},
			Price:       decimal.NewFromFloat(59.99),
			Stock:       5,
		},
		{
			Name:        "Brooks Brothers Long Sleeved Shirt",
			Slug:        "brooks-brothers-long-sleeved-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Brooks Brothers",
			Description: "Timeless style and premium comfort",
			Images:      []string{"/images/sample-products/p2-1.jpg"},
			Price:       decimal.NewFromFloat(85.90),
			Stock:       10,
		},
		{
			Name:        "Tommy Hilfiger Classic Fit Shirt",
			Slug:        "tommy-hilfiger-classic-fit-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Tommy Hilfiger",
			Description: "A perfect blend of classic design and modern fit",
			Images:      []string{"/images/sample-products/p3-1.jpg"},
			Price:       decimal.NewFromFloat(99.95),
			Stock:       0,
		},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
