package main

import (
	"errors"
	"flag"
	"log"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"bookstore-storefront/internal/config"
)

// Usage:
//
//	go run ./cmd/migrate [-path migrations] up|down|version|force <v>
func main() {
	path := flag.String("path", "migrations", "migrations directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	m, err := migrate.New("file://"+*path, dbConfig.URL())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatal(verr)
		}
		log.Printf("version=%d dirty=%t", v, dirty)
		return
	case "force":
		v, convErr := strconv.Atoi(flag.Arg(1))
		if convErr != nil {
			log.Fatalf("force needs a version number: %v", convErr)
		}
		err = m.Force(v)
	default:
		log.Fatalf("unknown command %q", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("database is dirty at version %d, fix it then run: migrate force %d", dirty.Version, dirty.Version-1)
		}
		log.Fatal(err)
	}

	log.Printf("Migration %s successful", cmd)
}
