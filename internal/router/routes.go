package router

func InitializeRoutes(a *API) {
	api := Router.Group("/api")
	{
		api.GET("/health", a.HealthCheck)

		users := api.Group("/users")
		{
			users.POST("/signup", a.Signup)
			users.POST("/login", a.Login)
			users.POST("/logout", a.RequireUser(), a.Logout)
			users.GET("/me", a.RequireUser(), a.CurrentUser)
		}

		products := api.Group("/products")
		{
			products.GET("/", a.GetAllProducts)
			products.GET("/:id", a.GetProductByID)
			products.POST("/", a.RequireAdmin(), a.CreateProduct)
			products.PUT("/:id", a.RequireAdmin(), a.UpdateProduct)
			products.PUT("/:id/stock", a.RequireAdmin(), a.SetProductStock)
			products.DELETE("/:id", a.RequireAdmin(), a.DeleteProduct)
		}

		stories := api.Group("/stories")
		{
			stories.GET("/", a.GetAllStories)
			stories.GET("/:id", a.GetStoryByID)
		}

		// Cart routes accept either a logged-in bearer token or a guest
		// X-Session-ID header.
		cart := api.Group("/cart", a.ResolveOwner())
		{
			cart.GET("/", a.GetCart)
			cart.POST("/items", a.AddToCart)
			cart.PUT("/items/:productId", a.UpdateCartLine)
			cart.DELETE("/items/:productId", a.RemoveFromCart)
			cart.DELETE("/clear", a.ClearCart)
			cart.GET("/events", a.StreamCartEvents)
		}

		api.POST("/checkout", a.RequireUser(), a.BeginCheckout)
		api.POST("/paystack/webhook", a.PaystackWebhook)
		api.POST("/verify-payment", a.RequireUser(), a.VerifyPayment)

		orders := api.Group("/orders", a.RequireUser())
		{
			orders.GET("/", a.GetMyOrders)
			orders.GET("/:reference", a.GetOrderByReference)
		}

		api.GET("/transactions", a.RequireUser(), a.GetMyTransactions)
	}
}
