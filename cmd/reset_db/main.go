package main

import (
	"context"
	"fmt"
	"os"

	"ridebook/config"
	"ridebook/pkg/logger"
	"ridebook/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Identities cascade into profiles, roles and notifications; rides reference profiles.
	_, err = pg.GetPool().Exec(context.Background(),
		"TRUNCATE TABLE rides, notifications, user_roles, drivers, customers, identities, contact_requests CASCADE")
	if err != nil {
		log.Error(fmt.Sprintf("Failed to truncate tables: %v", err))
		os.Exit(1)
	}
	log.Info("Successfully truncated account, ride and contact request tables.")
}
