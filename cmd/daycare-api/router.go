package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/daycare-api/api/swagger"
	"github.com/noah-isme/daycare-api/internal/handler"
	"github.com/noah-isme/daycare-api/internal/middleware"
	"github.com/noah-isme/daycare-api/internal/models"
	"github.com/noah-isme/daycare-api/internal/service"
	"github.com/noah-isme/daycare-api/pkg/config"
	"github.com/noah-isme/daycare-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/daycare-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/daycare-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg           *config.Config
	logger        *zap.Logger
	metrics       *service.MetricsService
	auditWriter   middleware.AuditWriter
	auth          *service.AuthService
	users         *service.UserService
	children      *service.ChildService
	attendance    *service.AttendanceService
	announcements *service.AnnouncementService
	dayView       *service.DayViewService
	daySummaries  *service.DaySummaryService
	notifications *service.NotificationService
	reports       *service.ReportService
	ready         handler.ReadinessProbe
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger, "/health", "/metrics"))
	r.Use(corsmiddleware.New(deps.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics, "/metrics", "/health"))

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.ready)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if deps.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(deps.auth)
	userHandler := handler.NewUserHandler(deps.users)
	childHandler := handler.NewChildHandler(deps.children)
	attendanceHandler := handler.NewAttendanceHandler(deps.attendance)
	announcementHandler := handler.NewAnnouncementHandler(deps.announcements)
	dayViewHandler := handler.NewDayViewHandler(deps.dayView)
	daySummaryHandler := handler.NewDaySummaryHandler(deps.daySummaries)
	notificationHandler := handler.NewNotificationHandler(deps.notifications)
	reportHandler := handler.NewReportHandler(deps.reports)

	staffOnly := middleware.RequireRoles(models.RoleStaff, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action, resource, idParam string) gin.HandlerFunc {
		return middleware.Audit(deps.auditWriter, deps.logger, action, resource, idParam)
	}

	api := r.Group(deps.cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.auth))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.GET("/auth/me", authHandler.Me)

	users := secured.Group("/users")
	users.GET("", adminOnly, userHandler.List)
	users.GET("/:id", middleware.RequireSelfOr("id", models.RoleAdmin), userHandler.Get)
	users.POST("", adminOnly, userHandler.Create)
	users.PUT("/:id/role", adminOnly, userHandler.UpdateRole)
	users.DELETE("/:id", adminOnly, userHandler.Delete)
	secured.GET("/audit-logs", adminOnly, userHandler.AuditTrail)

	children := secured.Group("/children")
	children.GET("", childHandler.List)
	children.POST("", adminOnly, childHandler.Create)
	children.GET("/:id", childHandler.Get)
	children.DELETE("/:id", adminOnly, childHandler.Delete)
	children.GET("/:id/parents", staffOnly, childHandler.Parents)

	children.POST("/:id/checkin", staffOnly, attendanceHandler.CheckIn)
	children.POST("/:id/checkout", staffOnly, attendanceHandler.CheckOut)
	children.GET("/:id/checkins", staffOnly, attendanceHandler.Checkins)
	children.PUT("/:id/sick", attendanceHandler.ReportSick)
	children.DELETE("/:id/sick", attendanceHandler.ClearSick)
	children.PUT("/:id/vacation", attendanceHandler.SetVacation)
	children.DELETE("/:id/vacation", attendanceHandler.ClearVacation)
	children.POST("/:id/sleep/start", staffOnly, attendanceHandler.StartSleep)
	children.POST("/:id/sleep/end", staffOnly, attendanceHandler.EndSleep)
	children.PUT("/:id/sleep-plan", attendanceHandler.SetSleepPlan)
	children.PUT("/:id/day-reminder", attendanceHandler.SetDayReminder)
	children.PUT("/:id/photo", staffOnly, attendanceHandler.SetPhoto)

	children.GET("/:id/day", dayViewHandler.Get)
	children.GET("/:id/notifications", notificationHandler.Summary)
	children.POST("/:id/notifications/seen", notificationHandler.MarkSeen)

	groups := secured.Group("/groups/:group")
	groups.GET("/day-summary", daySummaryHandler.Get)
	groups.PUT("/day-summary/note", staffOnly, audit(models.AuditActionDaySummary, "day_summaries", "group"), daySummaryHandler.UpsertNote)
	groups.POST("/day-summary/photos", staffOnly, audit(models.AuditActionDaySummary, "day_summaries", "group"), daySummaryHandler.AppendPhoto)
	groups.GET("/announcements", announcementHandler.List)
	groups.POST("/announcements", staffOnly, audit(models.AuditActionAnnouncement, "announcements", "group"), announcementHandler.Create)
	groups.GET("/report", staffOnly, reportHandler.GroupDay)

	announcements := secured.Group("/announcements", staffOnly)
	announcements.PUT("/:id", audit(models.AuditActionAnnouncement, "announcements", "id"), announcementHandler.Update)
	announcements.DELETE("/:id", audit(models.AuditActionAnnouncement, "announcements", "id"), announcementHandler.Delete)

	secured.GET("/metrics/summary", adminOnly, metricsHandler.Summary)

	return r
}
