package router

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"bistro/internal/auth"
	"bistro/internal/cache"
	"bistro/internal/config"
	"bistro/internal/errors"
	"bistro/internal/handler"
	"bistro/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Menu    *handler.MenuHandler
	Order   *handler.OrderHandler
	Address *handler.AddressHandler
	Payment *handler.PaymentHandler
	Health  *handler.HealthHandler
}

// Register wires routes and middleware. Every route group is served under
// /api and again at the root for older clients. cacheClient may be nil, in
// which case rate limits are tracked in process memory.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	cacheClient *cache.Client,
	jwtService *auth.JWTService,
	h Handlers,
) {
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Validator = NewValidator()
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.CORS(cfg.AllowedOrigins))
	e.Use(echomw.BodyLimit("10M"))
	e.Use(middleware.NewSanitizer(cfg.SQLGuard).Middleware())

	e.GET("/", h.Health.Root)
	e.GET("/health", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := middleware.JWT(jwtService)
	optionalAuth := middleware.OptionalJWT(jwtService)
	adminOnly := middleware.RequireAdmin()

	authLimit := middleware.RateLimit(cacheClient, middleware.RateLimitConfig{
		Name:    "auth",
		Max:     cfg.AuthRateLimitMax,
		Window:  cfg.RateLimitWindow,
		Message: "Too many authentication attempts, please try again later",
	})
	apiLimit := middleware.RateLimit(cacheClient, middleware.RateLimitConfig{
		Name:    "api",
		Max:     cfg.RateLimitMax,
		Window:  cfg.RateLimitWindow,
		Message: "Too many requests from this IP, please try again later",
	})

	mounts := []*echo.Group{e.Group("/api", apiLimit), e.Group("")}
	for _, root := range mounts {
		authGroup := root.Group("/auth", authLimit)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.POST("/send-verification", h.Auth.SendVerification)
		authGroup.GET("/verify-email", h.Auth.VerifyEmail)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/reset-password", h.Auth.ResetPassword)
		authGroup.POST("/google", h.Auth.GoogleSignIn)

		menu := root.Group("/menu")
		menu.GET("", h.Menu.GetMenu)
		menu.GET("/categories", h.Menu.ListCategories)
		menu.GET("/item/:id", h.Menu.GetItem)
		menu.POST("", h.Menu.CreateItem, requireAuth, adminOnly)
		menu.PUT("/:id", h.Menu.UpdateItem, requireAuth, adminOnly)
		menu.DELETE("/:id", h.Menu.DeleteItem, requireAuth, adminOnly)
		menu.POST("/categories", h.Menu.CreateCategory, requireAuth, adminOnly)
		menu.PUT("/categories/:id", h.Menu.UpdateCategory, requireAuth, adminOnly)
		menu.DELETE("/categories/:id", h.Menu.DeleteCategory, requireAuth, adminOnly)
		menu.POST("/seed", h.Menu.Seed, requireAuth, adminOnly)

		order := root.Group("/order")
		order.POST("", h.Order.CreateOrder, optionalAuth)
		order.GET("/my-orders", h.Order.GetMyOrders, requireAuth)
		order.GET("/all", h.Order.GetAllOrders, requireAuth, adminOnly)
		order.GET("/user/:userId", h.Order.GetUserOrders, requireAuth)
		order.GET("/:orderId", h.Order.GetOrder, requireAuth)
		order.PATCH("/:orderId/status", h.Order.UpdateStatus, requireAuth, adminOnly)
		order.DELETE("/:orderId", h.Order.DeleteOrder, requireAuth, adminOnly)

		address := root.Group("/address", requireAuth)
		address.POST("", h.Address.Create)
		address.GET("", h.Address.List)
		address.PUT("/:id", h.Address.Update)
		address.DELETE("/:id", h.Address.Delete)

		payment := root.Group("/payment", requireAuth)
		payment.POST("", h.Payment.CreateMethod)
		payment.GET("", h.Payment.ListMethods)
		payment.POST("/intent", h.Payment.CreateIntent)
		payment.PUT("/:id", h.Payment.UpdateMethod)
		payment.DELETE("/:id", h.Payment.DeleteMethod)
	}
}

// CustomValidator wraps validator for Echo and reports failures as
// errors.ValidationError keyed by JSON field name.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator that names fields by their json tag.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(errors.ErrInvalidRequest, "%s", err.Error())
	}
	out := &errors.ValidationError{Fields: make([]errors.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, errors.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "alpha":
		return "must contain letters only"
	default:
		return "is invalid"
	}
}
