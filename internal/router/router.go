package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigilo-backend/internal/config"
	"github.com/vigilo-labs/vigilo-backend/internal/handler"
	"github.com/vigilo-labs/vigilo-backend/internal/middleware"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Attempt   *handler.AttemptHandler
	Exam      *handler.ExamHandler
	Question  *handler.QuestionHandler
	Dashboard *handler.DashboardHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Participant Group (Public) ─────────────────────────────────
	// Participants identify by name + email only; no accounts, no tokens.
	examAPI := router.Group("/api/v1/exam")
	{
		examAPI.POST("/attempts", handlers.Attempt.Start)
		examAPI.POST("/attempts/:attempt_id/answers", handlers.Attempt.SubmitAnswer)
		examAPI.POST("/attempts/:attempt_id/violations", handlers.Attempt.RecordViolation)
		examAPI.POST("/attempts/:attempt_id/finish", handlers.Attempt.Finish)
		examAPI.GET("/attempts/:attempt_id", handlers.Attempt.GetResult)
		examAPI.GET("/attempts/:attempt_id/analysis", handlers.Attempt.GetAnalysis)

		examAPI.GET("/exams", handlers.Attempt.ListOpenExams)
		examAPI.GET("/exams/:exam_id/questions", handlers.Attempt.ListExamQuestions)
		examAPI.GET("/participants/:participant_id/results", handlers.Attempt.ListParticipantResults)
	}

	// ─── 2. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/host/login", handlers.Auth.HostLogin)
		auth.GET("/host/me", middleware.RequireHostJWT(authService), handlers.Auth.GetHostProfile)
	}

	// ─── 3. Host Group (JWT) ───────────────────────────────────────────
	hostAPI := router.Group("/api/v1/host")
	hostAPI.Use(middleware.RequireHostJWT(authService))
	{
		// Exam management
		hostAPI.GET("/exams", handlers.Exam.List)
		hostAPI.POST("/exams", handlers.Exam.Create)
		hostAPI.GET("/exams/:exam_id", handlers.Exam.Get)
		hostAPI.PUT("/exams/:exam_id", handlers.Exam.Update)
		hostAPI.DELETE("/exams/:exam_id", handlers.Exam.Delete)
		hostAPI.POST("/exams/:exam_id/activate", handlers.Exam.Activate)

		// Question management
		hostAPI.GET("/exams/:exam_id/questions", handlers.Exam.ListQuestions)
		hostAPI.POST("/exams/:exam_id/questions", handlers.Question.Add)
		hostAPI.POST("/exams/:exam_id/questions/reorder", handlers.Question.Reorder)
		hostAPI.PUT("/questions/:question_id", handlers.Question.Update)
		hostAPI.DELETE("/questions/:question_id", handlers.Question.Delete)

		// Per-exam monitoring
		hostAPI.GET("/exams/:exam_id/stats", handlers.Dashboard.ExamStats)
		hostAPI.GET("/exams/:exam_id/participants", handlers.Dashboard.ExamParticipants)
		hostAPI.GET("/exams/:exam_id/violations", handlers.Dashboard.ExamViolations)
		hostAPI.GET("/exams/:exam_id/activity", handlers.Dashboard.ExamActivity)
		hostAPI.GET("/exams/:exam_id/attempts", handlers.Dashboard.ExamAttempts)

		// Global dashboard
		hostAPI.GET("/dashboard/stats", handlers.Dashboard.GlobalStats)
		hostAPI.GET("/dashboard/participants", handlers.Dashboard.AllParticipants)
		hostAPI.GET("/dashboard/recent-violations", handlers.Dashboard.RecentViolations)
	}

	// ─── 4. WebSocket Group (Host WS Auth) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireHostWSAuth(authService))
	{
		ws.GET("/host/exams/:exam_id/monitor", handlers.WS.ExamMonitorStream)
	}

	return router
}
