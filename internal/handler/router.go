package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/middleware"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
)

// Router groups the handlers mounted under the API prefix.
type Router struct {
	Auth     *AuthHandler
	Students *StudentHandler
	Settings *SettingsHandler
	Courses  *CourseHandler
	Exports  *ExportHandler
	Metrics  *MetricsHandler
	Tokens   middleware.TokenValidator
}

// Register mounts every API route on r below prefix.
func (rt *Router) Register(r gin.IRouter, prefix string) {
	api := r.Group(prefix)
	authed := middleware.JWT(rt.Tokens)
	manageStudents := middleware.RequireCapability(models.CapabilityManageStudents)
	manageSite := middleware.RequireCapability(models.CapabilityManageSite)

	auth := api.Group("/auth")
	auth.POST("/register", rt.Auth.Register)
	auth.POST("/login", rt.Auth.Login)
	auth.POST("/logout", authed, rt.Auth.Logout)
	auth.GET("/me", authed, rt.Auth.Me)
	api.PUT("/me/watch-time", authed, rt.Auth.WatchTime)

	students := api.Group("/students", authed, manageStudents)
	students.GET("", rt.Students.List)
	students.POST("/export", rt.Exports.ExportStudents)
	students.GET("/:index", rt.Students.Get)
	students.PUT("/:index", rt.Students.Update)
	students.POST("/:index/marks", rt.Students.AddMark)
	students.PUT("/:index/password", rt.Students.ResetPassword)
	students.POST("/:index/courses/:courseId/toggle", rt.Students.ToggleCourse)

	api.GET("/export/:token", rt.Exports.Download)

	api.GET("/site/settings", rt.Settings.Get)
	site := api.Group("/site/settings", authed, manageSite)
	site.PUT("", rt.Settings.Save)
	site.POST("/top-stars/:year", rt.Settings.AddTopStar)
	site.PUT("/top-stars/:year/:position", rt.Settings.UpdateTopStar)
	site.DELETE("/top-stars/:year/:position", rt.Settings.RemoveTopStar)

	// Per-kind capability checks happen in the asset service.
	api.POST("/site/assets/:kind", authed,
		middleware.RequireCapability(models.CapabilityManageBranding, models.CapabilityManageSite),
		rt.Settings.UploadAsset)

	api.GET("/courses", rt.Courses.List)
	api.PUT("/courses", authed, manageSite, rt.Courses.Save)
	api.POST("/courses", authed, manageSite, rt.Courses.Create)

	api.GET("/system/metrics", authed, manageSite, rt.Metrics.System)
}
