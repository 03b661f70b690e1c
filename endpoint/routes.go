package endpoint

import (
	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires middleware and every route onto a new gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *service.Services) *gin.Engine {
	util.RegisterBindingValidator()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		middleware.DatabaseMiddleware(db),
		middleware.ServicesMiddleware(svc),
		middleware.EndpointCallLogger(),
	)
	r.NoRoute(NoRoute)

	r.GET("/", Welcome(cfg.AppName))
	r.GET("/healthz", Healthz)

	auth := r.Group("/auth")
	{
		auth.POST("/register", Register)
		auth.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{Limit: cfg.LoginRateLimit}), Login)
	}

	protected := r.Group("/")
	protected.Use(middleware.Authenticate())
	{
		protected.POST("/auth/logout", Logout)
		protected.GET("/auth/me", Me)
		protected.GET("/auth/users", ListUsers)
		protected.GET("/auth/users/:id", GetUser)
		protected.PUT("/auth/users/:id", UpdateUser)
		protected.PATCH("/auth/users/:id/disabled", SetUserDisabled)

		patients := protected.Group("/patients")
		patients.POST("", CreatePatient)
		patients.GET("", ListPatients)
		patients.GET("/:id", GetPatient)
		patients.PUT("/:id", UpdatePatient)
		patients.DELETE("/:id", DeletePatient)

		doctors := protected.Group("/doctors")
		doctors.POST("", CreateDoctor)
		doctors.GET("", ListDoctors)
		doctors.GET("/:id", GetDoctor)
		doctors.PUT("/:id", UpdateDoctor)
		doctors.DELETE("/:id", DeleteDoctor)

		appointments := protected.Group("/appointments")
		appointments.POST("", CreateAppointment)
		appointments.GET("", ListAppointments)
		appointments.GET("/:id", GetAppointment)
		appointments.PATCH("/:id/status", UpdateAppointmentStatus)

		records := protected.Group("/medical-records")
		records.POST("", CreateMedicalRecord)
		records.GET("", ListMedicalRecords)
		records.GET("/:id", GetMedicalRecord)
	}

	return r
}
