package database

import (
	"fmt"
	"os"

	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the reference data a fresh installation needs: locations and the dish catalog.
type SeedFile struct {
	Countries      []CountrySeed  `yaml:"countries"`
	DishCategories []CategorySeed `yaml:"dish_categories"`
	Foods          []string       `yaml:"foods"`
	Dishes         []DishSeed     `yaml:"dishes"`
}

type CountrySeed struct {
	Name    string       `yaml:"name"`
	Regions []RegionSeed `yaml:"regions"`
}

type RegionSeed struct {
	Name        string           `yaml:"name"`
	Settlements []SettlementSeed `yaml:"settlements"`
}

type SettlementSeed struct {
	Name      string   `yaml:"name"`
	Addresses []string `yaml:"addresses"`
}

type CategorySeed struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
}

// DishSeed references its food and subcategory by name.
type DishSeed struct {
	Name        string `yaml:"name"`
	Food        string `yaml:"food"`
	Subcategory string `yaml:"subcategory"`
}

func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Seed inserts the reference data. Records are matched by name under their parent, so
// running it twice changes nothing.
func Seed(db *gorm.DB, seed *SeedFile) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedLocations(tx, seed.Countries); err != nil {
			return err
		}

		subcategories := make(map[string]uint)
		for _, c := range seed.DishCategories {
			category := models.DishCategory{}
			if err := tx.Where(models.DishCategory{Name: c.Name}).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("seed dish category %s: %w", c.Name, err)
			}
			for _, name := range c.Subcategories {
				sub := models.DishSubcategory{}
				if err := tx.Where(models.DishSubcategory{Name: name, CategoryID: category.ID}).FirstOrCreate(&sub).Error; err != nil {
					return fmt.Errorf("seed dish subcategory %s: %w", name, err)
				}
				subcategories[name] = sub.ID
			}
		}

		foods := make(map[string]uint)
		for _, name := range seed.Foods {
			food := models.Food{}
			if err := tx.Where(models.Food{Name: name}).FirstOrCreate(&food).Error; err != nil {
				return fmt.Errorf("seed food %s: %w", name, err)
			}
			foods[name] = food.ID
		}

		for _, d := range seed.Dishes {
			foodID, ok := foods[d.Food]
			if !ok {
				return fmt.Errorf("seed dish %s: unknown food %q", d.Name, d.Food)
			}
			subID, ok := subcategories[d.Subcategory]
			if !ok {
				return fmt.Errorf("seed dish %s: unknown subcategory %q", d.Name, d.Subcategory)
			}
			dish := models.Dish{}
			if err := tx.Where(models.Dish{Name: d.Name, FoodID: foodID, SubcategoryID: subID}).FirstOrCreate(&dish).Error; err != nil {
				return fmt.Errorf("seed dish %s: %w", d.Name, err)
			}
		}

		utils.InfoLogger.Infof("Seeded %d countries, %d dish categories, %d foods, %d dishes",
			len(seed.Countries), len(seed.DishCategories), len(seed.Foods), len(seed.Dishes))
		return nil
	})
}

func seedLocations(tx *gorm.DB, countries []CountrySeed) error {
	for _, c := range countries {
		country := models.Country{}
		if err := tx.Where(models.Country{Name: c.Name}).FirstOrCreate(&country).Error; err != nil {
			return fmt.Errorf("seed country %s: %w", c.Name, err)
		}
		for _, r := range c.Regions {
			region := models.Region{}
			if err := tx.Where(models.Region{Name: r.Name, CountryID: country.ID}).FirstOrCreate(&region).Error; err != nil {
				return fmt.Errorf("seed region %s: %w", r.Name, err)
			}
			for _, s := range r.Settlements {
				settlement := models.Settlement{}
				if err := tx.Where(models.Settlement{Name: s.Name, RegionID: region.ID}).FirstOrCreate(&settlement).Error; err != nil {
					return fmt.Errorf("seed settlement %s: %w", s.Name, err)
				}
				for _, name := range s.Addresses {
					address := models.Address{}
					if err := tx.Where(models.Address{Name: name, SettlementID: settlement.ID}).FirstOrCreate(&address).Error; err != nil {
						return fmt.Errorf("seed address %s: %w", name, err)
					}
				}
			}
		}
	}
	return nil
}
