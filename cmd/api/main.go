package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nahio/backend/internal/cep"
	"nahio/backend/internal/config"
	"nahio/backend/internal/domain/athlete"
	authdom "nahio/backend/internal/domain/auth"
	"nahio/backend/internal/domain/booking"
	"nahio/backend/internal/domain/invitation"
	"nahio/backend/internal/domain/notifications"
	"nahio/backend/internal/firebase"
	apihttp "nahio/backend/internal/http"
	"nahio/backend/internal/storage"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	defer clients.Close()

	blobs := storage.NewGCS(clients.Storage, cfg.StorageBucket, cfg.SignedURLServiceAccountEmail)

	provider, err := authdom.NewFirebaseProvider(ctx, clients.Auth, cfg.WebAPIKey)
	if err != nil {
		log.Fatalf("identity provider init failed: %v", err)
	}

	// Repositories
	authRepo := authdom.NewFirestoreRepo(clients.Firestore)
	athleteRepo := athlete.NewFirestoreRepo(clients.Firestore)
	invitationRepo := invitation.NewFirestoreRepo(clients.Firestore)
	bookingRepo := booking.NewFirestoreRepo(clients.Firestore)
	notificationsRepo := notifications.NewFirestoreRepo(clients.Firestore)

	// Services
	authSvc := authdom.NewService(authRepo, provider)
	athleteSvc := athlete.NewService(athleteRepo, blobs)
	invitationSvc := invitation.NewService(invitationRepo)
	bookingSvc := booking.NewService(bookingRepo)
	notificationsSvc := notifications.NewService(notificationsRepo)

	invitationSvc.SetNotifier(notificationsSvc)
	bookingSvc.SetNotifier(notificationsSvc)

	if cfg.SendgridAPIKey != "" {
		authSvc.SetMailer(authdom.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFrom))
		log.Println("sendgrid mailer initialized")
	} else {
		log.Println("SENDGRID_API_KEY not set, transactional email disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:              cfg,
		AuthClient:       clients.Auth,
		AuthSvc:          authSvc,
		AthleteSvc:       athleteSvc,
		InvitationSvc:    invitationSvc,
		BookingSvc:       bookingSvc,
		NotificationsSvc: notificationsSvc,
		CEP:              cep.NewClient(cfg.ViaCEPBaseURL, nil),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
