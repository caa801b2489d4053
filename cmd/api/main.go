package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/worksession-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worksession-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/worksession-backend-go/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/worksession-backend-go/internal/service/payroll"
	workSessionService "github.com/cmlabs-hris/worksession-backend-go/internal/service/worksession"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	workSessionRepo := postgresql.NewWorkSessionRepository(db)
	aimRepo := postgresql.NewAimRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	attendanceEventRepo := postgresql.NewAttendanceEventRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		slog.Error("Error configuring JWT", "error", err)
		os.Exit(1)
	}

	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		attendanceEventRepo,
		workSessionRepo,
		cfg,
	)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, attendanceRepo, cfg)
	workSessionSvc := workSessionService.NewWorkSessionService(
		transactor,
		workSessionRepo,
		aimRepo,
		attendanceSvc,
		payrollSvc,
		cfg,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, cfg.Location(), cfg.Attendance.ReconcileHour).RegisterJobs(scheduler)
	scheduler.Start()

	workSessionHandler := appHTTP.NewWorkSessionHandler(workSessionSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		workSessionHandler,
		attendanceHandler,
		payrollHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
}
