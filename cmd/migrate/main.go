package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/gridledger/billing/internal/infrastructure/logger"
	"github.com/gridledger/billing/internal/infrastructure/migration"
	"github.com/gridledger/billing/internal/infrastructure/persistence"
	"github.com/gridledger/billing/migrations"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	var (
		migrationsDir string
		logLevel      string
	)

	flag.StringVar(&migrationsDir, "dir", "", "Read migrations from this directory instead of the embedded schema")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	var schema fs.FS = migrations.FS
	if migrationsDir != "" {
		schema = os.DirFS(migrationsDir)
	}

	// Commands that work on files only
	switch command {
	case "create":
		if migrationsDir == "" {
			log.Fatal("create writes files: pass -dir <migrations directory>")
		}
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate -dir <dir> create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		m, err := migration.Create(migrationsDir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", m.Version),
			zap.String("up_file", m.UpPath),
			zap.String("down_file", m.DownPath),
		)
		return

	case "list":
		list, err := migration.List(schema)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(list) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(list)))
		for _, m := range list {
			fmt.Printf("  %06d %s\n", m.Version, m.Name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, gormlogger.Discard)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if command == "create-admin" {
		if len(args) < 3 {
			log.Fatal("Usage: migrate create-admin <username> <password>")
		}
		createAdmin(log, db, args[1], args[2])
		return
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	m, err := migration.New(sqlDB, schema, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		_ = m.Close()
	}()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		log.Warn("Forcing migration version - use with caution!")
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// createAdmin seeds the first ADMIN account, which every other account is
// created through
func createAdmin(log *zap.Logger, db *persistence.Database, username, password string) {
	ctx := context.Background()
	users := persistence.NewGormUserRepository(db.DB)

	exists, err := users.ExistsByUsername(ctx, username)
	if err != nil {
		log.Fatal("Failed to check username", zap.Error(err))
	}
	if exists {
		log.Fatal("User already exists", zap.String("username", username))
	}

	user, err := identity.NewUser(username, password, identity.RoleAdmin)
	if err != nil {
		log.Fatal("Invalid admin account", zap.Error(err))
	}
	if err := users.Save(ctx, user); err != nil {
		log.Fatal("Failed to save admin account", zap.Error(err))
	}
	log.Info("Admin account created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
}

func printUsage() {
	fmt.Println(`Billing Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                           Apply all pending migrations
  down                         Roll back all migrations
  step <n>                     Apply n migrations (positive=up, negative=down)
  goto <version>               Migrate to a specific version
  version                      Show current migration version
  force <version>              Force set migration version (use with caution)
  create <name> [desc]         Create a new migration file pair (needs -dir)
  list                         List available migrations
  create-admin <user> <pass>   Create the first ADMIN account

Flags:
  -dir string          Migrations directory (default: schema embedded in the binary)
  -log-level string    Log level: debug, info, warn, error (default: info)

Environment Variables:
  BILLING_DATABASE_HOST, BILLING_DATABASE_PORT, BILLING_DATABASE_USER,
  BILLING_DATABASE_PASSWORD, BILLING_DATABASE_DBNAME, BILLING_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate -dir ./migrations create add_meter_brand "Record meter manufacturer"
  migrate create-admin admin 'a-long-password'`)
}
