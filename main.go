package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/openbill/openbill/api"
	"github.com/openbill/openbill/cache"
	"github.com/openbill/openbill/config"
	"github.com/openbill/openbill/db"
	"github.com/openbill/openbill/middleware"
	"github.com/openbill/openbill/security"
	"github.com/openbill/openbill/services"
	"github.com/openbill/openbill/stores"
	"github.com/openbill/openbill/utils"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func printBanner() {
	fmt.Printf("%s%s", colorCyan, colorBold)
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                                                              ║")
	fmt.Println("║  🧾 OpenBill Invoice Service                                 ║")
	fmt.Println("║                                                              ║")
	fmt.Println("║  Invoicing for businesses and the people they bill           ║")
	fmt.Println("║                                                              ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("%s", colorReset)
}

func printStep(step, message string) {
	fmt.Printf("%s[%s]%s %s%s%s\n", colorBlue, step, colorReset, colorBold, message, colorReset)
}

func printSuccess(message string) {
	fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, message)
}

func printWarning(message string) {
	fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, message)
}

func printError(message string) {
	fmt.Printf("%s✗%s %s\n", colorRed, colorReset, message)
}

func printInfo(message string) {
	fmt.Printf("%sℹ%s %s\n", colorCyan, colorReset, message)
}

func main() {
	printBanner()
	fmt.Println()

	printStep("1/8", "Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError(fmt.Sprintf("Configuration validation failed: %v", err))
		os.Exit(1)
	}
	printSuccess("Configuration loaded and validated")

	printStep("2/8", "Setting up logging...")
	if err := utils.SetupLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		printError(fmt.Sprintf("Failed to set up logging: %v", err))
		os.Exit(1)
	}
	printSuccess("Logging configured")

	printStep("3/8", "Connecting to database...")
	database, err := db.Connect(context.Background(), cfg.GetDatabaseURL())
	if err != nil {
		printError(fmt.Sprintf("Failed to connect to database: %v", err))
		os.Exit(1)
	}
	sqlDB, err := database.DB()
	if err != nil {
		printError(fmt.Sprintf("Failed to get database instance: %v", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(database); err != nil {
		printError(fmt.Sprintf("Failed to migrate schema: %v", err))
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Connected to PostgreSQL at %s:%d", cfg.Database.Host, cfg.Database.Port))

	printStep("4/8", "Connecting to Redis...")
	var listCache services.ListCache
	redisCache, err := cache.CreateRedisCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		printWarning(fmt.Sprintf("Failed to connect to Redis: %v (continuing without cache)", err))
	} else {
		defer redisCache.Close()
		listCache = redisCache
		printSuccess(fmt.Sprintf("Connected to Redis at %s:%d", cfg.Redis.Host, cfg.Redis.Port))
	}

	printStep("5/8", "Initializing security components...")
	jwtManager := security.CreateJWTManager(cfg.Security.JWTSecret, "openbill", "openbill-api")
	rateLimiter := security.NewRateLimiter()
	rateLimit := security.RateLimitConfig{
		RequestsPerSecond: cfg.Security.RateLimitRPS,
		Burst:             cfg.Security.RateLimitBurst,
		Window:            time.Minute,
	}
	printSuccess("Security components initialized")

	printStep("6/8", "Initializing stores...")
	userStore := stores.CreateUserStore(database)
	invoiceStore := stores.CreateInvoiceStore(database)
	printSuccess("Stores initialized")

	printStep("7/8", "Initializing services...")
	userService := services.CreateUserService(userStore, jwtManager, cfg.Security.JWTExpiration)
	invoiceService := services.CreateInvoiceService(invoiceStore, userStore, listCache)
	printSuccess("Services initialized")

	printStep("8/8", "Setting up HTTP server...")
	userHandler := api.CreateUserHandler(userService)
	invoiceHandler := api.CreateInvoiceHandler(invoiceService)

	router := mux.NewRouter()

	authMiddleware := middleware.CreateAuthMiddleware(jwtManager, rateLimiter, rateLimit)

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.HeadersMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(authMiddleware.RateLimitMiddleware)
	router.Use(authMiddleware.JWTMiddleware)

	router.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")

	router.HandleFunc("/users/register", userHandler.HandleRegister).Methods("POST")
	router.HandleFunc("/users/login", userHandler.HandleLogin).Methods("POST")
	router.HandleFunc("/users/me", userHandler.HandleMe).Methods("GET")
	router.HandleFunc("/users/me/stats", userHandler.HandleStats).Methods("GET")

	router.HandleFunc("/invoices/create", invoiceHandler.HandleCreate).Methods("POST")
	router.HandleFunc("/invoices/edit/{invoice_number}", invoiceHandler.HandleUpdate).Methods("PUT")
	router.HandleFunc("/invoices/delete/{invoice_number}", invoiceHandler.HandleDelete).Methods("PUT")
	router.HandleFunc("/invoices/user/{username}", invoiceHandler.HandleListUser).Methods("GET")
	router.HandleFunc("/invoices/business/{username}", invoiceHandler.HandleListBusiness).Methods("GET")
	router.HandleFunc("/invoices/customer/{username}", invoiceHandler.HandleListCustomer).Methods("GET")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	printSuccess("HTTP server configured")

	fmt.Println()
	fmt.Printf("%s%s🎉 OpenBill is ready!%s\n", colorGreen, colorBold, colorReset)
	fmt.Println()
	fmt.Printf("%s%sAPI Endpoints:%s\n", colorPurple, colorBold, colorReset)
	fmt.Printf("  %s•%s Health Check: %shttp://localhost:%s/health%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Register:     %shttp://localhost:%s/users/register%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Login:        %shttp://localhost:%s/users/login%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Invoices:     %shttp://localhost:%s/invoices/create%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Println()
	fmt.Printf("%s%sEnvironment:%s %s%s%s\n", colorPurple, colorBold, colorReset, colorYellow, cfg.Environment, colorReset)
	fmt.Printf("%s%sServer Port:%s %s%s%s\n", colorPurple, colorBold, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Println()
	fmt.Printf("%s%sPress Ctrl+C to stop the server%s\n", colorYellow, colorBold, colorReset)
	fmt.Println()

	go func() {
		printInfo(fmt.Sprintf("Starting HTTP server on port %s...", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			printError(fmt.Sprintf("Server failed to start: %v", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println()
	printWarning("Shutting down OpenBill server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		printError(fmt.Sprintf("Server forced to shutdown: %v", err))
		os.Exit(1)
	}

	rateLimiter.Close()

	printSuccess("OpenBill server stopped gracefully")
}
