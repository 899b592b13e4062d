package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/adiretotes/store-api/internal/cart"
	"github.com/adiretotes/store-api/internal/checkout"
	"github.com/adiretotes/store-api/internal/router"
	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/mongo"
	"github.com/adiretotes/store-api/pkg/paystack"
	"github.com/adiretotes/store-api/pkg/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongo.InitMongoDB()
	mongo.EnsureIndexesOnStartup()
	redis.Init()

	products := &mongo.ProductRepo{}
	carts := &mongo.CartRepo{}
	orders := &mongo.OrderRepo{}
	transactions := &mongo.TransactionRepo{}
	sessions := &redis.SessionStore{}
	events := &redis.EventBus{}
	gateway := paystack.NewClient(global.GetPaystackSecret())

	cartSvc := cart.NewService(carts, &redis.GuestCartRepo{}, products, events, sessions)

	checkoutSvc := &checkout.Service{
		Catalog:         products,
		Carts:           carts,
		Orders:          orders,
		Gateway:         gateway,
		FrontendBaseURL: global.GetFrontendBaseURL(),
	}
	reconciler := &checkout.Reconciler{
		Catalog: products,
		Carts:   carts,
		Orders:  orders,
		Ledger:  transactions,
		Gateway: gateway,
		Tx:      &mongo.TxnRunner{},
	}

	// Pending orders that never hear back from the gateway are failed
	// after a TTL so they do not pile up.
	ttl := time.Duration(global.GetEnvIntOrDefault("PENDING_ORDER_TTL_MINUTES", 60)) * time.Minute
	sweeper := checkout.NewSweeper(orders, 5*time.Minute, ttl)
	go sweeper.Run(context.Background())

	router.InitEngine()
	router.InitializeRoutes(router.NewAPI(cartSvc, checkoutSvc, reconciler, global.GetPaystackSecret()))

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := router.Router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
