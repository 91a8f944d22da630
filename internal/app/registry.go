package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/holiday"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leave"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavebalance"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/leavepolicy"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/messaging/kafka"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/middleware"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/notification"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/settings"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

// tenantEntities is the schema the registrar keeps aligned on every
// tenant database. LeavePolicy and LeaveBalance are critical: their
// shapes are hot-edited by tenants, so they are re-migrated on every
// handle open rather than once.
func tenantEntities() []tenantconn.Entity {
	return []tenantconn.Entity{
		{Name: "employees", Model: &employee.Employee{}},
		{Name: "departments", Model: &employee.Department{}},
		{Name: "company_settings", Model: &settings.CompanySettings{}},
		{Name: "leave_policies", Model: &leavepolicy.LeavePolicy{}, Critical: true},
		{Name: "leave_balances", Model: &leavebalance.LeaveBalance{}, Critical: true},
		{Name: "leave_requests", Model: &leave.Leave{}},
		{Name: "attendances", Model: &attendance.Attendance{}},
		{Name: "holidays", Model: &holiday.Holiday{}},
		{Name: "notifications", Model: &notification.Notification{}},
	}
}

func registerModules(
	router *gin.Engine,
	controlDB *gorm.DB,
	conns *tenantconn.Registry,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	// --- Repositories ---
	employeeRepo := employee.NewRepository()
	balanceRepo := leavebalance.NewRepository()
	policyRepo := leavepolicy.NewRepository()
	leaveRepo := leave.NewRepository()
	holidayRepo := holiday.NewRepository()
	settingsRepo := settings.NewRepository()
	attendanceRepo := attendance.NewRepository()
	notificationRepo := notification.NewRepository()
	outboxRepo := kafka.NewOutboxRepository(controlDB)

	// --- Domain engines ---
	synchronizer := leavepolicy.NewSynchronizer(employeeRepo, balanceRepo, policyRepo, logger)
	enforcer := leavepolicy.NewEnforcer(policyRepo, employeeRepo, synchronizer, logger)
	attendanceSyncer := attendance.NewSyncer(attendanceRepo, logger)
	notifier := notification.NewNotifier(notificationRepo, outboxRepo, controlDB, logger)

	// --- Services ---
	policyService := leavepolicy.NewService(conns, policyRepo, synchronizer, settingsRepo, rdb, logger)
	leaveService := leave.NewService(
		conns, leaveRepo, balanceRepo, employeeRepo, policyRepo, holidayRepo,
		settingsRepo, enforcer, attendanceSyncer, notifier, logger,
	)
	settingsService := settings.NewService(conns, settingsRepo, logger)
	holidayService := holiday.NewService(conns, holidayRepo, logger)
	attendanceService := attendance.NewService(conns, attendanceRepo, logger)

	// --- Handlers ---
	policyHandler := leavepolicy.NewHandler(policyService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	settingsHandler := settings.NewHandler(settingsService, logger)
	holidayHandler := holiday.NewHandler(holidayService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	notificationHandler := notification.NewHandler(conns, notificationRepo, logger)

	// --- Routes ---
	adminOnly := middleware.RequireRoles("hr", "admin", "psa", "company_admin")

	api := router.Group("/api/v1")
	api.Use(middleware.Auth([]byte(os.Getenv("JWT_SECRET"))))
	api.Use(middleware.RateLimitByActor(20, 40))
	api.Use(middleware.ContextLogger(logger))
	if rdb != nil {
		api.Use(middleware.Idempotency(rdb))
	}
	{
		leave.RegisterRoutes(api, leaveHandler)
		leavepolicy.RegisterRoutes(api, policyHandler, adminOnly)
		settings.RegisterRoutes(api, settingsHandler, adminOnly)
		holiday.RegisterRoutes(api, holidayHandler, adminOnly)
		attendance.RegisterRoutes(api, attendanceHandler)
		notification.RegisterRoutes(api, notificationHandler)
	}
}
