package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"facemark/internal/cloudinary"
	"facemark/internal/config"
	"facemark/internal/faceclient"
	"facemark/internal/queue"
	"facemark/internal/store"
)

// Worker consumes registry events and keeps the external face service's
// gallery (and Cloudinary, when configured) in sync with the registry.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}

	face := faceclient.New(cfg.FaceServiceURL, cfg.FaceSkip)
	if !cfg.FaceSkip {
		if err := face.Health(ctx); err != nil {
			log.Printf("WARNING: face service not available: %v", err)
			log.Println("worker will retry when events arrive")
		} else {
			log.Println("face service connected")
		}
	}

	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	}

	messages, err := events.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for events...")
	for evt := range messages {
		switch evt.Type {
		case queue.EventPersonRegistered:
			userID := strconv.FormatInt(evt.PersonID, 10)
			if _, err := face.Enroll(ctx, userID, evt.Image, evt.Name); err != nil {
				log.Printf("enroll person %s failed: %v", userID, err)
				continue
			}
			log.Printf("enrolled person %s (%s)", userID, evt.Name)

		case queue.EventPersonDeleted:
			userID := strconv.FormatInt(evt.PersonID, 10)
			if err := face.Remove(ctx, userID); err != nil {
				log.Printf("remove person %s from gallery failed: %v", userID, err)
			}
			if cdnClient != nil && evt.Image != "" {
				publicID := strings.TrimSuffix(filepath.Base(evt.Image), filepath.Ext(evt.Image))
				if err := cdnClient.Destroy(ctx, publicID); err != nil {
					log.Printf("destroy image %s failed: %v", publicID, err)
				}
			}
			log.Printf("removed person %s (%s)", userID, evt.Name)

		case queue.EventAttendanceMarked:
			log.Printf("attendance marked: %s on %s", evt.Name, evt.Date)
		}
	}

	log.Println("worker stopped")
}
