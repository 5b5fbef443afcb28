package routes

import (
	"log/slog"

	"pedeai/configs"
	"pedeai/controllers"
	"pedeai/entity"
	"pedeai/events"
	"pedeai/middlewares"
	"pedeai/repository"
	"pedeai/services"
	"pedeai/store"
	"pedeai/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs from the process.
type Deps struct {
	DB      *gorm.DB
	Config  *configs.Config
	Log     *slog.Logger
	Carts   store.CartStore
	Hub     *ws.OrderHub
	Events  events.Publisher
	Limiter *middlewares.RateLimiter
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.CORSMiddleware())
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	cfg := d.Config
	db := d.DB

	// Repositories
	userRepo := repository.NewUserRepository(db)
	restRepo := repository.NewRestaurantRepository(db)
	productRepo := repository.NewProductRepository(db)
	addrRepo := repository.NewAddressRepository(db)
	payRepo := repository.NewPaymentRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Services
	authSvc := services.NewAuthService(db, userRepo, d.Carts, addrRepo, payRepo, cfg.JWTSecret, cfg.JWTTTL, d.Log)
	cartSvc := services.NewCartService(d.Carts, productRepo)
	orderSvc := services.NewOrderService(db, orderRepo, d.Carts, addrRepo, payRepo, d.Events, d.Log)
	addrSvc := services.NewAddressService(db, addrRepo, cfg.MaxAddresses)
	paySvc := services.NewPaymentService(db, payRepo)
	restSvc := services.NewRestaurantService(restRepo, productRepo)
	productSvc := services.NewProductService(productRepo, restRepo)

	// Controllers
	healthCtrl := controllers.NewHealthController(db)
	authCtrl := controllers.NewAuthController(authSvc)
	cartCtrl := controllers.NewCartController(cartSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	addrCtrl := controllers.NewAddressController(addrSvc)
	payCtrl := controllers.NewPaymentController(paySvc)
	restCtrl := controllers.NewRestaurantController(restSvc)
	productCtrl := controllers.NewProductController(productSvc)

	auth := middlewares.AuthMiddleware(cfg.JWTSecret)
	admin := middlewares.AuthMiddleware(cfg.JWTSecret, entity.RoleAdmin)

	r.GET("/health", healthCtrl.Check)

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
	}

	// Profile
	me := r.Group("/users/me", auth)
	{
		me.GET("", authCtrl.Me)
		me.PATCH("", authCtrl.UpdateMe)
		me.DELETE("", authCtrl.DeleteMe)
	}

	// Catalog (public)
	r.GET("/restaurants", restCtrl.List)
	r.GET("/restaurants/:id", restCtrl.Detail)
	r.GET("/restaurants/:id/products", restCtrl.Products)
	r.GET("/products", productCtrl.Search)
	r.GET("/products/:id", productCtrl.Detail)

	// Cart
	cart := r.Group("/cart", auth)
	{
		cart.GET("", cartCtrl.Get)
		cart.DELETE("", cartCtrl.Clear)
		cart.POST("/items", cartCtrl.Add)
		cart.PUT("/items/:id", cartCtrl.UpdateQuantity)
		cart.DELETE("/items/:id", cartCtrl.RemoveItem)
	}

	addr := r.Group("/addresses", auth)
	{
		addr.GET("", addrCtrl.List)
		addr.POST("", addrCtrl.Create)
		addr.PATCH("/:id", addrCtrl.Update)
		addr.DELETE("/:id", addrCtrl.Delete)
	}

	pay := r.Group("/payments", auth)
	{
		pay.GET("", payCtrl.List)
		pay.POST("", payCtrl.Create)
		pay.PATCH("/:id", payCtrl.Update)
		pay.DELETE("/:id", payCtrl.Delete)
	}

	// Orders
	o := r.Group("/orders", auth)
	{
		o.POST("", orderCtrl.Create)
		o.GET("/my", orderCtrl.ListMine)
		o.GET("/my/stats", orderCtrl.Stats)
		o.GET("/:id", orderCtrl.Detail)
		o.POST("/:id/cancel", orderCtrl.Cancel)
	}
	r.PATCH("/orders/:id/status", admin, orderCtrl.UpdateStatus)

	// Admin catalog
	adm := r.Group("", admin)
	{
		adm.POST("/restaurants", restCtrl.Create)
		adm.PATCH("/restaurants/:id", restCtrl.Update)
		adm.DELETE("/restaurants/:id", restCtrl.Delete)
		adm.POST("/products", productCtrl.Create)
		adm.PATCH("/products/:id", productCtrl.Update)
		adm.DELETE("/products/:id", productCtrl.Delete)
	}

	// Realtime order status
	if d.Hub != nil {
		r.GET("/ws/orders", middlewares.WSAuthMiddleware(cfg.JWTSecret), d.Hub.HandleWebSocket)
	}
}
