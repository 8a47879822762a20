// Command seed loads directory users from a JSON file into MongoDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Dias221467/Friends_Manager/internal/config"
	"github.com/Dias221467/Friends_Manager/internal/database"
	"github.com/Dias221467/Friends_Manager/internal/repository"
	"github.com/Dias221467/Friends_Manager/internal/seed"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
)

func main() {
	file := flag.String("f", "users.json", "JSON array of users to insert")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel)

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer db.Client().Disconnect(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Log.Fatalf("Index creation failed: %v", err)
	}

	created, err := seed.Load(ctx, repository.NewUserRepository(db), *file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("created %d users\n", created)
}
