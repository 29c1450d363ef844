package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// Runner de migraciones: `migrate up`, `migrate down`, `migrate version`,
// `migrate force <v>`. Las migraciones SQL viven en ./migrations.
func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", "migrations", "directorio de migraciones")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	db, err := sql.Open("postgres", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión a PostgreSQL")
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("crear driver de migraciones")
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal().Err(err).Msg("crear instancia de migraciones")
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migrate up")
		}
		logVersion(m, log)
	case "down":
		if err := m.Steps(-1); err != nil && err != migrate.ErrNoChange {
			log.Fatal().Err(err).Msg("migrate down")
		}
		logVersion(m, log)
	case "version":
		logVersion(m, log)
	case "force":
		if len(args) < 2 {
			printUsage()
			os.Exit(1)
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("force: versión inválida")
		}
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("migrate force")
		}
		logVersion(m, log)
	default:
		printUsage()
		os.Exit(1)
	}
}

func logVersion(m *migrate.Migrate, log *logger.Logger) {
	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Info().Msg("sin migraciones aplicadas")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("estado de migraciones")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `uso: migrate [-path dir] <comando>

comandos:
  up           aplica todas las migraciones pendientes
  down         revierte la última migración
  version      muestra la versión actual
  force <v>    fija la versión sin ejecutar SQL (para estados dirty)`)
}
