// Command catalog-importer loads exercises and companion types from a JSON
// file into the database. Rows are matched by exercise name and companion
// code, so re-running an import updates in place.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"fithub/database"
)

func main() {
	file := flag.String("file", "", "catalog JSON file ({\"exercises\": [...], \"companion_types\": [...]})")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (defaults to DATABASE_URL)")
	dryRun := flag.Bool("dry-run", false, "parse and validate only")
	dump := flag.Bool("dump", false, "print the built-in default catalog and exit")
	flag.Parse()

	if *dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(database.DefaultCatalog()); err != nil {
			log.Fatal("Failed to encode catalog:", err)
		}
		return
	}

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}
	var catalog database.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}
	fmt.Printf("Found %d exercises and %d companion types\n", len(catalog.Exercises), len(catalog.CompanionTypes))

	if *dryRun {
		if err := database.ValidateCatalog(catalog); err != nil {
			log.Fatal("Invalid catalog: ", err)
		}
		fmt.Println("✓ Catalog is valid")
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using system environment variables")
	}
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		log.Fatal("No database: pass -dsn or set DATABASE_URL")
	}

	db, err := database.Open(*dsn, "warn")
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	n, err := database.UpsertCatalog(db, catalog)
	if err != nil {
		log.Fatal("Import failed: ", err)
	}
	fmt.Printf("✓ Imported %d rows\n", n)
}
