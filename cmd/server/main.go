package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lcfauto/config"
	"lcfauto/internal/database"
	"lcfauto/internal/handler"
	"lcfauto/internal/repository"
	"lcfauto/internal/router"
	"lcfauto/internal/service"
	"lcfauto/internal/ws"
	"lcfauto/pkg/cloudinary"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	hub := ws.NewHub()
	fcm := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcm, hub)
	loyaltySvc := service.NewLoyaltyService(loyaltyRepo, notifSvc)
	revenueSvc := service.NewRevenueService(appointmentRepo)
	authSvc := service.NewAuthService(cfg, userRepo)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, loyaltySvc, auditRepo),
		GoogleOAuth:  handler.NewGoogleOAuthHandler(cfg, authSvc, loyaltySvc, auditRepo),
		Me:           handler.NewMeHandler(userRepo),
		Loyalty:      handler.NewLoyaltyHandler(loyaltySvc, loyaltyRepo),
		Appointment:  handler.NewAppointmentHandler(appointmentRepo, loyaltySvc, notifSvc),
		Vehicle:      handler.NewVehicleHandler(vehicleRepo, cloud, cfg.Cloudinary.UploadFolder),
		Billing:      handler.NewBillingHandler(billingRepo, loyaltySvc, notifSvc),
		Notification: handler.NewNotificationHandler(notificationRepo),
		Admin:        handler.NewAdminHandler(adminRepo, userRepo, auditRepo, revenueSvc),
	}

	engine := router.Setup(cfg, handlers, hub)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
