package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"maktab/backend/config"
	"maktab/backend/internal/api/handler"
	"maktab/backend/internal/api/middleware"
	"maktab/backend/internal/model"
	"maktab/backend/pkg/jwt"
)

// Deps 路由层依赖；Blacklist 与 Limiter 可为 nil（Redis 不可用时降级）
type Deps struct {
	JWT       *jwt.Manager
	Blacklist middleware.Blacklist
	Limiter   middleware.Limiter
	Registry  *prometheus.Registry
	Logger    *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		deps.Logger.Fatal("注册校验器失败", zap.Error(err))
	}

	r := gin.New()

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		reg, gatherer = deps.Registry, deps.Registry
	}
	metrics := middleware.NewMetrics(reg)

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(metrics.Handler())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadMB<<20 + 1<<20))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	admin := middleware.RoleAuth(model.RoleAdmin)
	teacher := middleware.RoleAuth(model.RoleTeacher)
	student := middleware.RoleAuth(model.RoleStudent)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, cfg.RateLimit.LoginPerMinute, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist, deps.Logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 作业模块
			homework := authorized.Group("/homework")
			{
				// 学生
				homework.GET("", student, h.Homework.List)
				homework.GET("/recent", student, h.Homework.Recent)
				homework.GET("/stats", student, h.Homework.Stats)
				homework.GET("/my-submissions", student, h.Homework.MySubmissions)
				homework.POST("/:id/submit", student, h.Homework.Submit)

				// 教师
				homework.POST("/create", teacher, h.Homework.Create)
				homework.GET("/teaching", teacher, h.Homework.Teaching)
				homework.GET("/submissions", teacher, h.Homework.Submissions)
				homework.GET("/recent-submissions", teacher, h.Homework.RecentSubmissions)
				homework.GET("/teacher-stats", teacher, h.Homework.TeacherStats)
				homework.POST("/submission/:id/grade", teacher, h.Homework.Grade)

				// 共用（Service 层做归属校验）
				homework.GET("/submission/:id/file", h.Homework.SubmissionFile)
				homework.GET("/:id", h.Homework.Detail)
			}

			// 评分模块
			ratings := authorized.Group("/ratings")
			{
				ratings.GET("", h.Rating.ListRatings)
				ratings.POST("", h.Rating.CreateRating) // 教师（本组）或管理员，Service 层鉴权
				ratings.GET("/export", admin, h.Export.ExportRatings)
			}

			// 课程表模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.ListSchedules)
				schedules.GET("/ics", h.Schedule.ExportICS)
				schedules.POST("", admin, h.Schedule.CreateSchedule)
			}

			// 用户模块
			users := authorized.Group("/users", admin)
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.POST("/import", h.User.ImportUsers)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.POST("", admin, h.Course.CreateCourse)
			}

			// 小组模块
			groups := authorized.Group("/groups")
			{
				groups.GET("/my", h.Group.MyGroups)
				groups.POST("", admin, h.Group.CreateGroup)
				groups.PUT("/:id/students", admin, h.Group.SetStudents)
			}
		}
	}

	return r
}
