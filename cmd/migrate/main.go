package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"denialdesk.org/internal/auth"
	"denialdesk.org/internal/migrate"
	"denialdesk.org/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn            = flag.String("dsn", os.Getenv("DENIALDESK_DATABASE_URL"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", "ops/migrations/sql", "Path to SQL migrations")
		seedsPath      = flag.String("seeds", "ops/seeds", "Path to SQL seeds")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or DENIALDESK_DATABASE_URL")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|status|create-admin <username> <email> <password>]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath)

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	case "create-admin":
		err = createAdmin(ctx, db, flag.Args()[1:])
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

// createAdmin provisions the first administrator account. Passwords are
// hashed here, so no hash ever needs to live in a seed file.
func createAdmin(ctx context.Context, db *sql.DB, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: migrate create-admin <username> <email> <password>")
	}
	users, err := auth.NewService(pg.NewStore(db))
	if err != nil {
		return err
	}
	admin, err := users.CreateAdmin(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("created admin %s (%s)\n", admin.Username, admin.ID)
	return nil
}
