package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gorm"
)

// simTables skips schema_migrations, which only the migrator touches.
var simTables = []string{"sim_runs", "sim_snapshots", "sim_events"}

func main() {
	var dsn, out string
	flag.StringVar(&dsn, "dsn", os.Getenv("TIMEHERO_DB_DSN"), "postgres dsn")
	flag.StringVar(&out, "out", "internal/adapter/repo/gorm/model", "output dir for generated models")
	flag.Parse()

	if dsn == "" {
		log.Fatal("missing --dsn or TIMEHERO_DB_DSN")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:      out,
		ModelPkgPath: "model",
		Mode:         gen.WithoutContext | gen.WithDefaultQuery,
	})
	g.UseDB(db)
	for _, table := range simTables {
		g.ApplyBasic(g.GenerateModel(table))
	}
	g.Execute()

	fmt.Printf("generated gorm models at %s\n", out)
}
