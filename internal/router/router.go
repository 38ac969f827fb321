package router

import (
	"time"

	"droseonline/internal/config"
	"droseonline/internal/handler"
	"droseonline/internal/middleware"
	"droseonline/internal/model"
	"droseonline/internal/repository"
	"droseonline/internal/service"
	"droseonline/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	userSvc := service.NewUserService(userRepo, counterRepo, groupRepo.DB)
	courseSvc := service.NewCourseService(courseRepo, subjectRepo, yearRepo, userRepo, counterRepo, groupRepo.DB)
	groupSvc := service.NewGroupService(groupRepo, courseRepo, userRepo, counterRepo)
	attendanceSvc := service.NewAttendanceService(
		attendanceRepo, groupRepo, courseRepo, txRepo, counterRepo,
		dispatcher, cfg.BillableStatusSet(), cfg.Currency,
	)
	scheduleSvc := service.NewScheduleService(groupRepo, attendanceRepo, rdb)
	accountingSvc := service.NewAccountingService(txRepo, paymentRepo, groupRepo, userRepo, cfg.Currency)
	auditSvc := service.NewAuditService(attendanceRepo, groupRepo, courseRepo, attendanceSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userSvc)
	coursesH := handler.NewCoursesHandler(courseSvc)
	groupsH := handler.NewGroupsHandler(groupSvc)
	attendanceH := handler.NewAttendanceHandler(attendanceSvc, scheduleSvc)
	accountingH := handler.NewAccountingHandler(accountingSvc, auditSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		admin := middleware.RequireRole(model.RoleAdmin)
		staff := middleware.RequireRole(model.RoleAdmin, model.RoleTeacher)
		anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleTeacher, model.RoleStudent)

		// Users — admin only
		users := v1.Group("/users", admin)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}

		// Subjects / academic years — admin writes, staff reads
		v1.GET("/subjects", staff, coursesH.ListSubjects)
		v1.POST("/subjects", admin, coursesH.CreateSubject)
		v1.GET("/academic-years", staff, coursesH.ListAcademicYears)
		v1.POST("/academic-years", admin, coursesH.CreateAcademicYear)
		v1.PATCH("/academic-years/:id/current", admin, coursesH.SetCurrentYear)

		// Courses
		v1.GET("/courses", staff, coursesH.List)
		v1.GET("/courses/:id", staff, coursesH.Get)
		v1.POST("/courses", admin, coursesH.Create)
		v1.PUT("/courses/:id", admin, coursesH.Update)

		// Groups — reads open to any authenticated role, writes admin-only
		v1.GET("/groups", anyRole, groupsH.List)
		v1.GET("/groups/:id", anyRole, groupsH.Get)
		v1.POST("/groups", admin, groupsH.Create)
		v1.PUT("/groups/:id", admin, groupsH.Update)
		v1.DELETE("/groups/:id", admin, groupsH.Deactivate)
		v1.POST("/groups/check-schedule-conflict", anyRole, groupsH.CheckConflict)

		// Enrollment
		v1.POST("/groups/:id/students", admin, groupsH.AddStudent)
		v1.DELETE("/groups/:id/students/:studentId", admin, groupsH.RemoveStudent)
		v1.GET("/students/:id/groups", anyRole, groupsH.StudentGroups)

		// Attendance
		v1.GET("/schedule/today", staff, attendanceH.TodaySchedule)
		v1.GET("/attendance", staff, attendanceH.List)
		v1.GET("/attendance/:id", staff, attendanceH.Get)
		v1.POST("/attendance", staff, attendanceH.CreateSession)
		v1.PUT("/attendance/:id/records", staff, attendanceH.UpdateRecords)
		v1.POST("/attendance/:id/lock", staff, attendanceH.Lock)
		v1.POST("/attendance/:id/unlock", admin, attendanceH.Unlock)
		v1.POST("/attendance/:id/post-revenue", admin, attendanceH.PostRevenue)

		// Accounting — teacher or admin; audit maintenance stays admin-only
		acc := v1.Group("/accounting", staff)
		{
			acc.GET("/summary", accountingH.Summary)
			acc.GET("/transactions", accountingH.ListTransactions)
			acc.POST("/expenses", accountingH.RecordExpense)
			acc.GET("/payments", accountingH.ListPayments)
			acc.POST("/payments", accountingH.RecordPayment)
			acc.GET("/report", accountingH.MonthlyReport)
			acc.GET("/audit", admin, accountingH.AuditDetect)
			acc.POST("/audit/repair", admin, accountingH.AuditRepair)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
