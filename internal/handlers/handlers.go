package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"primex/api/internal/config"
	"primex/api/internal/middleware"
	"primex/api/internal/monitor"
	"primex/api/internal/repository"
	"primex/api/internal/service"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	monitor     *monitor.Monitor
	authService *service.AuthService
	db          *pgxpool.Pool
	cache       *redis.Client
	users       *repository.UserRepository
	admins      *repository.AdminRepository
	devices     *repository.DeviceRepository
	events      *repository.SecurityEventRepository
	blocks      *repository.BlockedAddressRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, m *monitor.Monitor, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	eventRepo := repository.NewSecurityEventRepository(db)
	blockRepo := repository.NewBlockedAddressRepository(db)
	auth := service.NewAuthService(userRepo, adminRepo, m, cfg, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		monitor:     m,
		authService: auth,
		db:          db,
		cache:       cache,
		users:       userRepo,
		admins:      adminRepo,
		devices:     deviceRepo,
		events:      eventRepo,
		blocks:      blockRepo,
	}
}

// Register wires the per-route-class middleware chains. Every route
// passes the block check and signature detection first; the rate-limit
// class, authentication and the entitlement gates vary by group.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.Use(
		middleware.BlockCheck(h.monitor),
		middleware.DetectSuspicious(h.monitor),
	)

	router.GET("/healthz",
		middleware.RateLimit(h.monitor, h.cfg.Monitor.Default),
		h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(h.monitor, h.cfg.Monitor.Login))
	auth.POST("/login", h.Login)
	auth.POST("/admin/login", h.AdminLogin)

	user := v1.Group("/user")
	user.Use(
		middleware.RateLimit(h.monitor, h.cfg.Monitor.API),
		middleware.Auth(h.cfg, h.users),
		middleware.Subscription(),
		middleware.DeviceLimit(h.cfg, h.devices),
	)
	user.GET("/me", h.Me)
	user.GET("/devices", h.ListDevices)

	stream := v1.Group("/stream")
	stream.Use(
		middleware.RateLimit(h.monitor, h.cfg.Monitor.Stream),
		middleware.AuthAny(h.cfg, h.users, h.admins),
		middleware.Subscription(),
		middleware.DeviceLimit(h.cfg, h.devices),
	)
	stream.GET("/authorize", h.StreamAuthorize)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.RateLimit(h.monitor, h.cfg.Monitor.API),
		middleware.AuthAdmin(h.cfg, h.admins),
	)
	admin.GET("/permissions", h.Permissions)

	adminUsers := admin.Group("/users")
	adminUsers.Use(middleware.RequireModule("users"))
	adminUsers.DELETE("/:userId/devices/:deviceId", h.RevokeDevice)

	security := admin.Group("/security")
	security.Use(middleware.RequireModule("security"))
	security.GET("/events", h.SecurityEvents)
	security.GET("/blocked", h.BlockedAddresses)
	security.POST("/blocked", h.BlockAddress)
	security.DELETE("/blocked/:ip", h.UnblockAddress)
}
