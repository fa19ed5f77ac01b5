package routes

import (
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/controllers"
	"github.com/vnkhanh/survey-hub/metrics"
	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/web"
)

// Limiters throttle the anonymous endpoints per client IP.
type Limiters struct {
	Submit *middleware.IPRateLimiter
	SignIn *middleware.IPRateLimiter
}

func NewLimiters(cfg config.Config) Limiters {
	return Limiters{
		Submit: middleware.NewIPRateLimiter(cfg.SubmitRatePerMin, cfg.SubmitBurst, 10*time.Minute),
		SignIn: middleware.NewIPRateLimiter(cfg.LoginRatePerMin, cfg.LoginBurst, 10*time.Minute),
	}
}

func (l Limiters) Stop() {
	l.Submit.Stop()
	l.SignIn.Stop()
}

func SetupRoutes(r *gin.Engine, cfg config.Config, sessions middleware.SessionLoader, h *controllers.Handler, lim Limiters) error {
	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	origins := cfg.AllowedOrigins()

	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		metrics.Middleware(),
		cors.New(cors.Config{
			AllowOriginFunc: func(origin string) bool {
				return slices.Contains(origins, origin)
			},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.Authenticate(cfg.JWTSecret, sessions),
	)

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	submit := middleware.RateLimitByIP(lim.Submit)
	r.GET("/:appSlug/:surveySlug/form", h.ShowForm)
	r.POST("/:appSlug/:surveySlug/form", submit, h.PostForm)

	api := r.Group("/api")
	{
		api.GET("/meta", h.Meta)
		api.GET("/me", h.Me)

		authn := api.Group("/auth")
		{
			signIn := middleware.RateLimitByIP(lim.SignIn)
			authn.POST("/sign-in", signIn, h.SignIn)
			authn.POST("/google", signIn, h.GoogleSignIn)
			authn.POST("/sign-out", h.SignOut)
		}

		public := api.Group("/public")
		{
			public.GET("/apps/:appSlug", h.PublicApp)
			public.GET("/apps/:appSlug/surveys/:surveySlug", h.PublicSurvey)
			public.POST("/surveys/:surveyId/submissions", submit, h.Submit)
		}

		// Role checks happen in the services; these gates only turn away
		// requests that can never succeed.
		admin := api.Group("/admin", middleware.RequireAuth())
		{
			admin.GET("/apps", h.ListApps)
			admin.POST("/apps", h.CreateApp)
			admin.GET("/apps/:id", h.GetApp)
			admin.PUT("/apps/:id", h.UpdateApp)
			admin.DELETE("/apps/:id", h.DeleteApp)
			admin.GET("/apps/:id/surveys", h.ListSurveys)
			admin.POST("/apps/:id/surveys", h.CreateSurvey)

			admin.GET("/surveys/:id", h.GetSurvey)
			admin.PUT("/surveys/:id", h.UpdateSurvey)
			admin.PATCH("/surveys/:id/active", h.SetSurveyActive)
			admin.DELETE("/surveys/:id", h.DeleteSurvey)
			admin.POST("/surveys/:id/questions", h.AddQuestion)
			admin.PUT("/surveys/:id/questions/order", h.ReorderQuestions)
			admin.GET("/surveys/:id/responses", h.ListResponses)

			admin.PUT("/questions/:id", h.UpdateQuestion)
			admin.DELETE("/questions/:id", h.DeleteQuestion)

			admin.GET("/answers", h.GetAnswers)
			admin.GET("/answers/export", h.ExportAnswers)
			admin.POST("/exports", h.CreateExport)
			admin.GET("/exports/:id", h.GetExport)
			admin.GET("/exports/:id/download", h.DownloadExport)

			adminOnly := admin.Group("", middleware.RequireAdmin())
			adminOnly.GET("/users", h.ListUsers)
			adminOnly.POST("/users", h.CreateUser)
			adminOnly.PUT("/users/:id", h.UpdateUser)
			adminOnly.DELETE("/users/:id", h.DeleteUser)
			adminOnly.GET("/audit-logs", h.ListAuditLogs)
		}
	}
	return nil
}
