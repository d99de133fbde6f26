package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/catering-app/config"
	"github.com/yeremiapane/catering-app/controllers"
	"github.com/yeremiapane/catering-app/hub"
	"github.com/yeremiapane/catering-app/middlewares"
	"github.com/yeremiapane/catering-app/services"
	"github.com/yeremiapane/catering-app/utils"
	"gorm.io/gorm"
)

// App is everything the HTTP layer needs, built once at startup.
type App struct {
	DB     *gorm.DB
	Config *config.Config
	Tokens *utils.TokenManager
	Media  *services.MediaStore
	Hub    *hub.Hub
	Now    func() time.Time
}

// NewApp wires the default collaborators for cfg.
func NewApp(db *gorm.DB, cfg *config.Config) *App {
	return &App{
		DB:     db,
		Config: cfg,
		Tokens: utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Media:  services.NewMediaStore(cfg.MediaRoot, cfg.BaseURL),
		Hub:    hub.New(),
		Now:    time.Now,
	}
}

var (
	ownerOfEstablishment = middlewares.EstablishmentOwner("id")
	authorOfBooking      = middlewares.BookingAuthorParam("id")
)

// Permissions lists the checks of every routed operation.
var Permissions = middlewares.Policy{
	"user.register": {middlewares.AllowAny},
	"user.login":    {middlewares.AllowAny},
	"user.logout":   {middlewares.Authenticated},
	"user.profile":  {middlewares.Authenticated},

	"location.list": {middlewares.AllowAny},

	"establishment.create_new":      {middlewares.Authenticated},
	"establishment.update_info":     {ownerOfEstablishment},
	"establishment.update":          {ownerOfEstablishment},
	"establishment.main_info":       {middlewares.AnyOf(middlewares.EstablishmentVisible("id"), middlewares.Authenticated)},
	"establishment.owned_by_user":   {middlewares.Authenticated},
	"establishment.representation":  {middlewares.AllowAny},
	"establishment.catalog":         {middlewares.AllowAny},
	"establishment.user_rating.get": {middlewares.Authenticated},
	"establishment.user_rating.set": {middlewares.Authenticated},
	"establishment.feedbacks.list":  {middlewares.AllowAny},
	"establishment.feedbacks.add":   {middlewares.Authenticated},
	"establishment.tables_list":     {middlewares.AllowAny},
	"establishment.tables":          {middlewares.AllowAny},
	"establishment.work_hours":      {middlewares.AllowAny},
	"establishment.pay_for_booking": {middlewares.BookingAuthor},
	"establishment.statistics":      {middlewares.Authenticated},

	"booking.create":        {middlewares.Authenticated},
	"booking.update":        {authorOfBooking},
	"booking.owned_by_user": {middlewares.Authenticated},

	"dish.create":         {middlewares.Authenticated},
	"dish.names":          {middlewares.AllowAny},
	"dish.related_data":   {middlewares.AllowAny},
	"dish.menu":           {middlewares.AllowAny},
	"dish.populate_order": {middlewares.BookingAuthor},
	"dish.update_order":   {middlewares.BookingAuthor},
	"dish.statistics":     {middlewares.Authenticated},
}

func SetupRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	cfg := app.Config
	now := app.Now
	if now == nil {
		now = time.Now
	}

	// Services
	users := services.NewUserService(app.DB, app.Tokens, now)
	establishments := services.NewEstablishmentService(app.DB, app.Media)
	ratings := services.NewRatingService(app.DB, app.Hub)
	bookings := services.NewBookingService(app.DB, app.Hub, now)
	orders := services.NewOrderService(app.DB, app.Hub)
	dishes := services.NewDishService(app.DB, app.Media, now)
	locations := services.NewLocationService(app.DB)

	// Controllers
	userCtrl := controllers.NewUserController(users, app.Tokens)
	locationCtrl := controllers.NewLocationController(locations)
	establishmentCtrl := controllers.NewEstablishmentController(establishments, ratings)
	bookingCtrl := controllers.NewBookingController(bookings)
	dishCtrl := controllers.NewDishController(dishes, orders)
	notificationCtrl := controllers.NewNotificationController(app.Hub, cfg.AllowedOrigins)

	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(cfg.GinMode == gin.ReleaseMode))
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Uploaded photos
	r.Static(services.MediaURLPrefix, app.Media.Root)

	guard := func(op string) gin.HandlerFunc { return Permissions.Guard(app.DB, op) }
	limiter := middlewares.NewStrictRateLimiter().RateLimit()
	paymentLimiter := middlewares.PaymentRateLimiter(time.Second, 10)

	api := r.Group("/api")
	api.Use(middlewares.Authenticate(app.Tokens))
	api.Use(middlewares.Locale(users.Language))

	// ----------------------------------------------------------------
	//                      USER
	// ----------------------------------------------------------------
	user := api.Group("/user")
	{
		user.POST("/register", limiter, guard("user.register"), userCtrl.Register)
		user.POST("/login", limiter, guard("user.login"), userCtrl.Login)
		user.POST("/logout", guard("user.logout"), userCtrl.Logout)
		user.GET("/profile", guard("user.profile"), userCtrl.GetProfile)
	}

	api.GET("/locations", guard("location.list"), locationCtrl.GetLocations)

	// ----------------------------------------------------------------
	//                      CATERING ESTABLISHMENT
	// ----------------------------------------------------------------
	est := api.Group("/catering_establishment")
	{
		est.POST("/create_new", guard("establishment.create_new"), establishmentCtrl.CreateNew)
		est.GET("/owned_by_user", guard("establishment.owned_by_user"), establishmentCtrl.OwnedByUser)
		est.GET("/representation", guard("establishment.representation"), establishmentCtrl.Representation)
		est.GET("/catalog", guard("establishment.catalog"), establishmentCtrl.Catalog)
		est.GET("/user_rating", guard("establishment.user_rating.get"), establishmentCtrl.GetUserRating)
		est.POST("/user_rating", guard("establishment.user_rating.set"), establishmentCtrl.PostUserRating)
		est.GET("/feedbacks", guard("establishment.feedbacks.list"), establishmentCtrl.GetFeedbacks)
		est.POST("/feedbacks", guard("establishment.feedbacks.add"), establishmentCtrl.PostFeedback)
		est.GET("/tables_list", guard("establishment.tables_list"), establishmentCtrl.TablesList)
		est.GET("/tables", guard("establishment.tables"), establishmentCtrl.Tables)
		est.GET("/work_hours", guard("establishment.work_hours"), establishmentCtrl.WorkHours)
		est.POST("/pay_for_booking",
			middlewares.LogPaymentRequest(),
			middlewares.PaymentSecurityHeaders(),
			paymentLimiter,
			middlewares.ValidatePaymentRequest(),
			guard("establishment.pay_for_booking"),
			bookingCtrl.PayForBooking)
		est.GET("/statistics", guard("establishment.statistics"), bookingCtrl.Statistics)

		est.GET("/:id/update_info", guard("establishment.update_info"), establishmentCtrl.UpdateInfo)
		est.GET("/:id/main_info", guard("establishment.main_info"), establishmentCtrl.MainInfo)
		est.PUT("/:id", guard("establishment.update"), establishmentCtrl.Update)
		est.PATCH("/:id", guard("establishment.update"), establishmentCtrl.Update)

		// Booking
		est.POST("/booking", guard("booking.create"), bookingCtrl.CreateBooking)
		est.GET("/booking/owned_by_user", guard("booking.owned_by_user"), bookingCtrl.OwnedByUser)
		est.PUT("/booking/:id", guard("booking.update"), bookingCtrl.UpdateBooking)
		est.PATCH("/booking/:id", guard("booking.update"), bookingCtrl.UpdateBooking)
	}

	// ----------------------------------------------------------------
	//                      DISH
	// ----------------------------------------------------------------
	dish := api.Group("/dish")
	{
		dish.POST("", guard("dish.create"), dishCtrl.CreateDish)
		dish.GET("/names", guard("dish.names"), dishCtrl.Names)
		dish.GET("/dish_related_data", guard("dish.related_data"), dishCtrl.RelatedData)
		dish.GET("/menu", guard("dish.menu"), dishCtrl.Menu)
		dish.POST("/populate_order", guard("dish.populate_order"), dishCtrl.PopulateOrder)
		dish.POST("/update_order", guard("dish.update_order"), dishCtrl.UpdateOrder)
		dish.GET("/statistics", guard("dish.statistics"), dishCtrl.Statistics)
	}

	// Notifications stream, token in ?token=
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware(app.Tokens))
	{
		wsGroup.GET("/notifications", notificationCtrl.Stream)
	}

	return r
}
