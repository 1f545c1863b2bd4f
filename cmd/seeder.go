package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/frahmantamala/evaluation-criteria/db"
	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"github.com/frahmantamala/evaluation-criteria/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with evaluation categories and criteria from a YAML fixture.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)

		raw := db.DefaultSeed
		if seedFile != "" {
			if raw, err = os.ReadFile(seedFile); err != nil {
				log.Fatalf("failed to read seed file: %v", err)
			}
		}
		seed, err := db.ParseSeed(raw)
		if err != nil {
			log.Fatalf("invalid seed: %v", err)
		}

		conn, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer conn.Close()

		gdb, err := initGorm(cfg.Database, conn, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := gdb.Transaction(func(tx *gorm.DB) error {
			return applySeed(tx, seed)
		}); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}

		fmt.Println("Evaluation categories seeded successfully")
	},
}

// applySeed inserts categories by name, skipping ones that already exist.
func applySeed(tx *gorm.DB, seed *db.Seed) error {
	if clearData {
		if err := tx.Exec("DELETE FROM criteria").Error; err != nil {
			return fmt.Errorf("clear criteria: %w", err)
		}
		if err := tx.Exec("DELETE FROM categories").Error; err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		fmt.Println("Cleared existing categories and criteria")
	}

	for _, c := range seed.Categories {
		var existing int64
		if err := tx.Model(&categoryDatamodel.Category{}).Where("name = ?", c.Name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			fmt.Printf("category %s already exists; skipping\n", c.Name)
			continue
		}

		row := &categoryDatamodel.Category{
			Name:        c.Name,
			Description: c.Description,
			Weight:      c.Weight,
			IsActive:    c.IsActive(),
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("insert category %s: %w", c.Name, err)
		}

		for _, cr := range c.Criteria {
			if err := tx.Create(&criteriaDatamodel.Criteria{
				CategoryID:      row.ID,
				Name:            cr.Name,
				BaseDescription: cr.Description,
				IsActive:        row.IsActive,
			}).Error; err != nil {
				return fmt.Errorf("insert criteria %s: %w", cr.Name, err)
			}
		}
		fmt.Printf("Seeded category: %s (%.2f)\n", c.Name, c.Weight)
	}

	return nil
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture to load instead of the bundled one")
}
