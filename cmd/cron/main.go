// Standalone runner for the scheduled sweeps, for deployments that
// keep cron traffic off the API instances. Supports -run-once for
// manual execution.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"courtside/internal/clock"
	"courtside/internal/db"
	"courtside/internal/jobs"
	"courtside/internal/store"
)

func main() {
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (complete-past-slots, expire-pending-slots, all-nightly)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	maxOpenConns, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS"))
	if err != nil {
		logger.Fatalf("Invalid value for DB_MAX_OPEN_CONNS: %v", err)
	}

	pool, err := db.New(os.Getenv("DB_ADDR"), int32(maxOpenConns), os.Getenv("DB_MAX_IDLE_TIME"))
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	slots := store.NewSlotRequestStore(pool)
	sweeper := jobs.NewSweeper(slots, clock.Real(), logger)

	if *runOnce != "" {
		switch *runOnce {
		case "complete-past-slots":
			sweeper.CompletePastSlots()
		case "expire-pending-slots":
			sweeper.ExpirePendingSlots()
		case "all-nightly":
			sweeper.RunNightly()
		default:
			logger.Fatalw("unknown job name", "job", *runOnce)
		}
		return
	}

	scheduler := jobs.NewScheduler(sweeper, logger)
	scheduler.Start()
	logger.Info("sweep scheduler is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down sweep scheduler")
	scheduler.Stop()
}
