package router

import (
	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/controller"
	"github.com/enteacher-core/internal/installer"
	"github.com/enteacher-core/internal/middleware"
	"github.com/enteacher-core/internal/service"
	"github.com/enteacher-core/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies 路由依赖的服务，DB 为 nil 表示进程以安装模式启动
type Dependencies struct {
	DB           *gorm.DB
	Installer    *installer.Installer
	InstallState *store.InstallStateStore
	Auth         *service.AuthService
	Products     *service.ProductService
	Courses      *service.CourseService
	Orders       *service.OrderService
	Payments     *service.PaymentService
	AdminData    *service.AdminDataService
	Database     *service.DatabaseService
	SystemConfig *service.SystemConfigService
	Log          *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, corsOrigins []string, deps *Dependencies) *gin.Engine {
	gin.SetMode(cfg.App.Mode)

	r := gin.New()

	// 全局中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.Metrics())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
		})
	})
	r.GET("/metrics", middleware.MetricsAuth(cfg.Monitoring), middleware.PrometheusHandler())

	authRequired := middleware.Auth(deps.Auth)
	adminRequired := []gin.HandlerFunc{authRequired, middleware.RequireAdmin()}

	installController := controller.NewInstallController(deps.Installer, deps.InstallState, deps.DB, deps.Log)
	install := r.Group("/install")
	{
		install.GET("/status", installController.Status)
		install.POST("/database/test", installController.TestDatabase)
		install.POST("/run", installController.Run)
	}

	authController := controller.NewAuthController(deps.Auth)
	auth := r.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/send-code", authController.SendCode)
		auth.POST("/code-login", authController.CodeLogin)
		auth.POST("/admin/login", authController.AdminLogin)
		auth.POST("/register", authController.Register)
		auth.GET("/me", authRequired, authController.Me)
	}

	catalogController := controller.NewCatalogController(deps.Products, deps.Courses)
	products := r.Group("/products")
	{
		products.GET("", catalogController.ListProducts)
		products.GET("/:id", catalogController.GetProduct)
	}
	courses := r.Group("/courses")
	{
		courses.GET("", catalogController.ListCourses)
		courses.GET("/:id", catalogController.GetCourse)
	}

	orderController := controller.NewOrderController(deps.Orders)
	orders := r.Group("/orders", authRequired)
	{
		orders.POST("", orderController.CreateOrder)
		orders.GET("", orderController.ListOrders)
		orders.GET("/:id", orderController.GetOrder)
	}

	paymentController := controller.NewPaymentController(deps.Payments)
	payments := r.Group("/payments")
	{
		payments.POST("/wechat", authRequired, paymentController.CreateWechatPayment)
		payments.POST("/wechat/notify", paymentController.WechatNotify)
		payments.GET("/wechat/js-config", paymentController.JSConfig)
	}

	adminController := controller.NewAdminController(deps.AdminData, deps.Database, deps.SystemConfig)
	r.GET("/admin", adminController.Root)
	admin := r.Group("/admin", adminRequired...)
	{
		admin.GET("/dashboard", adminController.Dashboard)
		admin.GET("/users", adminController.Users)
		admin.GET("/payments", adminController.Payments)

		admin.GET("/products", catalogController.ListProducts)
		admin.POST("/products", catalogController.CreateProduct)
		admin.PUT("/products/:id", catalogController.UpdateProduct)
		admin.DELETE("/products/:id", catalogController.DeleteProduct)

		admin.GET("/orders", adminController.Orders)
		admin.GET("/orders/:id", adminController.Order)

		admin.GET("/courses", catalogController.ListCourses)
		admin.POST("/courses", catalogController.CreateCourse)
		admin.PUT("/courses/:id", catalogController.UpdateCourse)
		admin.DELETE("/courses/:id", catalogController.DeleteCourse)

		admin.POST("/database/test", adminController.TestDatabase)
		admin.POST("/database/seed", adminController.SeedDatabase)
		admin.GET("/config", adminController.GetConfig)
		admin.PUT("/config", adminController.SaveConfig)
	}

	return r
}
