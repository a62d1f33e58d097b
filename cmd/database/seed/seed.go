// Command seed imports the ingredient catalog from a CSV file of
// "name,measurement_unit" rows.
package main

import (
	"Foodgram-Backend/cmd/config"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/pkg/catalog"
	"context"
	"flag"
	"log"
	"os"
)

func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients csv")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *path, err)
	}
	defer file.Close()

	catalogService := catalog.NewCatalogService(catalog.NewCatalogRepository(db))
	imported, err := catalogService.ImportIngredients(context.Background(), file)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("imported %d ingredients", imported)
}
