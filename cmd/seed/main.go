package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// SeedIngredientData is the ingredient fixture row: JSON files carry
// [{"name": ..., "measurement_unit": ...}], CSV files two bare columns
// in the same order.
type SeedIngredientData struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// SeedTagData is the tag fixture row.
type SeedTagData struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "", "path to ingredients fixture (.csv or .json)")
	tagsPath := flag.String("tags", "", "path to tags fixture (.json)")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		log.Fatal("nothing to do: pass -ingredients and/or -tags")
	}

	log.Println("Starting seed script...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.Tag{}, &model.Ingredient{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	if *ingredientsPath != "" {
		rows, err := loadIngredients(*ingredientsPath)
		if err != nil {
			log.Fatalf("Failed to load ingredients: %v", err)
		}
		log.Printf("Loaded %d ingredient rows from %s", len(rows), *ingredientsPath)

		ingredientRepo := repository.NewIngredientRepository(gormDB)
		seeded, skipped, err := seedIngredients(ctx, ingredientRepo, rows)
		if err != nil {
			log.Fatalf("Failed to seed ingredients: %v", err)
		}
		log.Printf("Ingredients: %d created, %d already present", seeded, skipped)
	}

	if *tagsPath != "" {
		rows, err := loadTags(*tagsPath)
		if err != nil {
			log.Fatalf("Failed to load tags: %v", err)
		}
		log.Printf("Loaded %d tag rows from %s", len(rows), *tagsPath)

		tagRepo := repository.NewTagRepository(gormDB)
		seeded, skipped, err := seedTags(ctx, tagRepo, rows)
		if err != nil {
			log.Fatalf("Failed to seed tags: %v", err)
		}
		log.Printf("Tags: %d created, %d already present", seeded, skipped)
	}

	log.Println("Seed completed successfully!")
}

// loadIngredients reads an ingredient fixture, dispatching on the file
// extension.
func loadIngredients(path string) ([]SeedIngredientData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseIngredientsCSV(f)
	case ".json":
		return parseIngredientsJSON(f)
	default:
		return nil, fmt.Errorf("unsupported fixture format: %s", path)
	}
}

func parseIngredientsCSV(r io.Reader) ([]SeedIngredientData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	var rows []SeedIngredientData
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse CSV: %w", err)
		}
		rows = append(rows, SeedIngredientData{
			Name:            strings.TrimSpace(record[0]),
			MeasurementUnit: strings.TrimSpace(record[1]),
		})
	}
	return rows, nil
}

func parseIngredientsJSON(r io.Reader) ([]SeedIngredientData, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var rows []SeedIngredientData
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return rows, nil
}

func loadTags(path string) ([]SeedTagData, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var rows []SeedTagData
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return rows, nil
}

// seedIngredients inserts fixture rows that are not present yet. Rows
// matching an existing name+unit pair are skipped so reruns are safe.
func seedIngredients(ctx context.Context, repo repository.IngredientRepository, rows []SeedIngredientData) (seeded int, skipped int, err error) {
	var fresh []model.Ingredient
	for _, row := range rows {
		if row.Name == "" || row.MeasurementUnit == "" {
			skipped++
			continue
		}
		exists, err := repo.ExistsByNameAndUnit(ctx, row.Name, row.MeasurementUnit)
		if err != nil {
			return seeded, skipped, fmt.Errorf("error checking ingredient %q: %w", row.Name, err)
		}
		if exists {
			skipped++
			continue
		}
		fresh = append(fresh, model.Ingredient{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
		})
	}

	if len(fresh) > 0 {
		if err := repo.CreateBatch(ctx, fresh); err != nil {
			return seeded, skipped, fmt.Errorf("error inserting ingredients: %w", err)
		}
	}
	return len(fresh), skipped, nil
}

// seedTags inserts fixture tags, skipping slugs that already exist.
func seedTags(ctx context.Context, repo repository.TagRepository, rows []SeedTagData) (seeded int, skipped int, err error) {
	for _, row := range rows {
		if row.Name == "" || row.Slug == "" {
			skipped++
			continue
		}
		existing, err := repo.FindBySlug(ctx, row.Slug)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, skipped, fmt.Errorf("error checking tag %q: %w", row.Slug, err)
		}
		if existing != nil {
			skipped++
			continue
		}
		tag := model.Tag{Name: row.Name, Slug: row.Slug}
		if err := repo.Create(ctx, &tag); err != nil {
			return seeded, skipped, fmt.Errorf("error creating tag %q: %w", row.Slug, err)
		}
		seeded++
	}
	return seeded, skipped, nil
}
