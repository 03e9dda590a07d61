package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	httpadp "github.com/bp4sp4/NMS-System-sub001/internal/adapter/http"
	mw "github.com/bp4sp4/NMS-System-sub001/internal/adapter/middleware"
	"github.com/bp4sp4/NMS-System-sub001/internal/adapter/repository/mysql"
	"github.com/bp4sp4/NMS-System-sub001/internal/config"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/directory"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
	"github.com/bp4sp4/NMS-System-sub001/internal/flow"
	"github.com/bp4sp4/NMS-System-sub001/internal/infrastructure/cache"
	"github.com/bp4sp4/NMS-System-sub001/internal/infrastructure/db"
	"github.com/bp4sp4/NMS-System-sub001/internal/notifier"
	"github.com/bp4sp4/NMS-System-sub001/internal/scheduler"
	documentuc "github.com/bp4sp4/NMS-System-sub001/internal/usecase/document"
	templateuc "github.com/bp4sp4/NMS-System-sub001/internal/usecase/template"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "approval-api").Logger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	if err := gdb.AutoMigrate(
		&template.FormTemplate{},
		&approval.ApprovalDocument{},
		&approval.History{},
		&directory.OrgUser{},
	); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	// repositories and unit of work
	templates := mysql.NewTemplateRepository(gdb)
	documents := mysql.NewDocumentRepository(gdb)
	dir := mysql.NewDirectoryRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	// outbound notifications, best-effort
	notif := notifier.NewManager(log)
	if cfg.SMSAPIKey != "" {
		notif.AddChannel(notifier.NewSMSChannel(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSender, dir.PhoneNumber))
	}
	if cfg.KakaoAPIKey != "" {
		notif.AddChannel(notifier.NewKakaoChannel(cfg.KakaoAPIURL, cfg.KakaoAPIKey, cfg.KakaoSender, dir.PhoneNumber))
	}

	// usecases
	tplUC := templateuc.NewUsecase(templates)
	docUC := documentuc.NewUsecase(templates, documents, tx, dir, flow.NewEvaluator(), notif, log)

	// background escalation sweeps
	scanCtx, stopScan := context.WithCancel(context.Background())
	defer stopScan()
	scanner := scheduler.NewEscalationScanner(documents, docUC, cfg.EscalationScanInterval, log)
	go scanner.Run(scanCtx)

	// http
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	h := httpadp.NewHandler()
	th := httpadp.NewTemplateHandler(tplUC)
	dh := httpadp.NewDocumentHandler(docUC)
	idemp := mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	e.GET("/health", h.Health)

	e.POST("/templates", th.Create)
	e.GET("/templates", th.List)
	e.GET("/templates/:template_id", th.Get)
	e.PUT("/templates/:template_id", th.Update)
	e.DELETE("/templates/:template_id", th.Deactivate)

	e.POST("/documents", dh.CreateDraft, idemp)
	e.GET("/documents", dh.List)
	e.GET("/documents/:document_id", dh.Get)
	e.PUT("/documents/:document_id", dh.UpdateDraft)
	e.POST("/documents/:document_id/submit", dh.Submit, idemp)
	e.POST("/documents/:document_id/actions", dh.Act, idemp)
	e.POST("/documents/:document_id/cancel", dh.Cancel, idemp)

	go func() {
		addr := ":" + cfg.AppPort
		log.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopScan()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("bye")
}
