package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mechsathi/internal/assist"
	"mechsathi/internal/events"
	"mechsathi/internal/locations"
	"mechsathi/internal/notify"
	"mechsathi/internal/reviews"
	"mechsathi/internal/users"
	"mechsathi/internal/workshops"
	"mechsathi/pkg/database"
	"mechsathi/pkg/utils"
)

func main() {
	srvCfg, err := utils.LoadServerConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Setup(db); err != nil {
		log.Fatalf("db setup failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Event fan-out: websocket via the router, raw TCP on its own port.
	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))
	tcpSrv := events.NewServer(srvCfg.TCPAddr, hub)

	// UDP rating-update push for registered mobile clients.
	registry := notify.NewRegistry()
	notifier := notify.NewServer(srvCfg.UDPAddr, registry, nil)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Assist deep links (public; the client hands these to the OS).
	router.GET("/assist/emergency", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"number": assist.EmergencyNumber,
			"dial":   assist.EmergencyDialURL(),
		})
	})
	router.GET("/assist/navigate", func(c *gin.Context) {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr != nil || lngErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng required"})
			return
		}
		c.JSON(http.StatusOK, assist.MapsURL(lat, lng, c.Query("label")))
	})

	// Workshops (public)
	workshopRepo := workshops.NewRepo(db)
	workshopHandler := workshops.NewHandler(workshopRepo)
	workshopHandler.RegisterRoutes(router.Group("/workshops"))

	// Auth
	tokenSvc := users.TokenService{
		Secret:   []byte(srvCfg.JWTSecret),
		Issuer:   srvCfg.JWTIssuer,
		Duration: srvCfg.JWTDuration(),
	}
	userRepo := users.NewRepo(db)
	userHandler := users.NewHandler(userRepo, tokenSvc)
	userHandler.RegisterRoutes(router.Group("/auth"))

	// Reviews: listing a workshop's reviews is public.
	reviewRepo := reviews.NewRepo(db)
	reviewHandler := reviews.NewHandler(reviewRepo, hub, notifier)
	reviewHandler.RegisterPublicRoutes(router.Group(""))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(users.AuthMiddleware(tokenSvc))

	userHandler.RegisterProtectedRoutes(protected)
	reviewHandler.RegisterProtectedRoutes(protected)

	locationRepo := locations.NewRepo(db)
	locationHandler := locations.NewHandler(locationRepo, hub)
	locationHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifier.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := notifier.Close(); err != nil {
		log.Printf("udp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
