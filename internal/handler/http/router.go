package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	app config.AppConfig,
	JWTService jwt.Service,
	workSessionHandler WorkSessionHandler,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worksession-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/work-sessions", func(r chi.Router) {
				r.Get("/", workSessionHandler.List)
				r.Post("/start", workSessionHandler.StartDay)
				r.Post("/end", workSessionHandler.EndDay)
				r.Post("/pause", workSessionHandler.Pause)
				r.Post("/resume", workSessionHandler.Resume)
				r.Get("/today", workSessionHandler.Today)
				r.Put("/productivity", workSessionHandler.UpdateProductivity)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/my", attendanceHandler.GetMyAttendance)
				r.Get("/today", attendanceHandler.GetToday)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", attendanceHandler.List)
					r.Post("/events", attendanceHandler.RecordEvent)
					r.Post("/import", attendanceHandler.ImportEvents)
					r.Post("/reconcile", attendanceHandler.Reconcile)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/my", payrollHandler.GetMySalary)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/employees/{employeeID}", payrollHandler.CalculateSalary)
					r.Post("/calculate", payrollHandler.CalculatePayroll)
					r.Put("/working-days", payrollHandler.SetWorkingDays)

					r.Route("/profiles/{employeeID}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetProfile)
						r.Put("/", payrollHandler.SetProfile)
						r.Get("/adjustments", payrollHandler.ListAdjustments)
						r.Post("/adjustments", payrollHandler.AddAdjustment)
					})
				})
			})
		})
	})
	return r
}
