package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/config"
	"github.com/parley-chat/parley/internal/handlers"
	"github.com/parley-chat/parley/internal/redisstore"
	"github.com/parley-chat/parley/internal/signaling"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload directory: %v", err)
	}

	// Presence mirror is optional; the in-memory registry is the source
	// of truth either way.
	var mirror signaling.PresenceMirror
	if cfg.Redis.Disabled {
		log.Println("Redis presence mirror disabled")
	} else {
		m, err := redisstore.Connect(cfg.Redis)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer m.Close()
		mirror = m
		log.Println("Redis connection established")
	}

	srv := signaling.NewServer(signaling.NewRegistry(), mirror)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	router.GET("/health", handlers.HandleHealth)

	// Chat page and assets. The room ID lives in the page URL only; the
	// client echoes it back over the WebSocket as join-room.
	router.GET("/room/:roomId", handlers.ServeRoomPage(cfg.StaticDir))
	router.Static("/static", cfg.StaticDir)
	router.Static("/uploads", cfg.UploadDir)

	router.POST("/upload", handlers.HandleUpload(cfg))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/rooms/:roomId", handlers.GetRoomInfo(srv))
		apiGroup.GET("/ice-servers", handlers.GetICEServers(cfg.STUNServers))
	}

	router.GET("/ws", handlers.HandleWebSocket(srv))

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting parley server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// Graceful shutdown on Ctrl-C. Room and presence state is volatile on
	// purpose; there is nothing to flush beyond in-flight responses.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
