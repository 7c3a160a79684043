package main

import (
	"fmt"
	"log"
	"os"

	"github.com/teamturing/competition-api/internal/config"
	"github.com/teamturing/competition-api/internal/domain/entity"
	"github.com/teamturing/competition-api/internal/pkg/emailrules"
	pgRepo "github.com/teamturing/competition-api/internal/repository/postgres"
	"github.com/teamturing/competition-api/pkg/database"
)

// Утилита управления whitelist: email из списка проходят верификацию
// школьной почты автоматически, без кода и письма.
//
//	whitelist add user@college.edu
//	whitelist remove user@college.edu
//	whitelist list

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo := pgRepo.NewWhitelistRepo(db)

	switch os.Args[1] {
	case "add":
		email := requireEmailArg()
		if !emailrules.IsLikelySchoolEmail(email) {
			fmt.Fprintf(os.Stderr, "Warning: %s does not look like a school email, adding anyway\n", email)
		}
		if err := repo.Create(&entity.WhitelistEntry{Email: email}); err != nil {
			log.Fatalf("Failed to add %s: %v", email, err)
		}
		fmt.Printf("Added %s to whitelist\n", email)

	case "remove":
		email := requireEmailArg()
		if err := repo.Delete(email); err != nil {
			log.Fatalf("Failed to remove %s: %v", email, err)
		}
		fmt.Printf("Removed %s from whitelist\n", email)

	case "list":
		entries, err := repo.List()
		if err != nil {
			log.Fatalf("Failed to list whitelist: %v", err)
		}
		if len(entries) == 0 {
			fmt.Println("Whitelist is empty")
			return
		}
		for _, e := range entries {
			status := "unclaimed"
			if e.ClaimedBy != "" {
				status = "claimed by " + e.ClaimedBy
			}
			fmt.Printf("%-40s %s\n", e.Email, status)
		}

	default:
		usage()
		os.Exit(2)
	}
}

func requireEmailArg() string {
	if len(os.Args) < 3 {
		usage()
		os.Exit(2)
	}
	email := emailrules.Normalize(os.Args[2])
	if email == "" {
		log.Fatal("Email must not be empty")
	}
	return email
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: whitelist <add|remove|list> [email]")
}
