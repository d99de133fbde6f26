package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yeremiapane/catering-app/models"
	"gorm.io/gorm"
)

type DishInput struct {
	Name        string `json:"name" binding:"required"`
	Food        uint   `json:"food" binding:"required"`
	Subcategory uint   `json:"subcategory" binding:"required"`
}

type DishName struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type DishRelatedData struct {
	DishesNames []DishName            `json:"dishes_names"`
	Categories  []models.DishCategory `json:"categories"`
	Foods       []models.Food         `json:"foods"`
}

type MenuFilter struct {
	Establishment *uint
	HasDiscount   *bool
	FinalPriceMin *float64
	FinalPriceMax *float64
	Category      *uint
	Subcategory   *uint
	Food          *uint
	Search        string
	Ordering      string
}

type MenuItem struct {
	ID          uint             `json:"id"`
	Description string           `json:"description"`
	Photo       string           `json:"photo"`
	Dish        uint             `json:"dish"`
	DishName    string           `json:"dish_name"`
	Price       float64          `json:"price"`
	FinalPrice  float64          `json:"final_price"`
	Discount    *models.Discount `json:"discount"`
}

type DishOrdersCount struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	OrdersCount int    `json:"orders_count"`
}

type DishService struct {
	db    *gorm.DB
	media *MediaStore
	now   func() time.Time
}

func NewDishService(db *gorm.DB, media *MediaStore, now func() time.Time) *DishService {
	if now == nil {
		now = time.Now
	}
	return &DishService{db: db, media: media, now: now}
}

func (s *DishService) CreateDish(ctx context.Context, in DishInput) (*models.Dish, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newValidation("name", "must not be empty")
	}

	db := s.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Food{}, in.Food).Error; err != nil {
		return nil, notFound(err, "food", in.Food)
	}
	if err := db.Select("id").First(&models.DishSubcategory{}, in.Subcategory).Error; err != nil {
		return nil, notFound(err, "dish subcategory", in.Subcategory)
	}

	dish := models.Dish{Name: name, FoodID: in.Food, SubcategoryID: in.Subcategory}
	if err := db.Create(&dish).Error; err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}
	return &dish, nil
}

func (s *DishService) Names(ctx context.Context, ids []uint) ([]DishName, error) {
	out := []DishName{}
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).Model(&models.Dish{}).Select("id", "name").
		Where("id IN ?", ids).Order("id").Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load dish names: %w", err)
	}
	return out, nil
}

// RelatedData returns what a menu editor needs: dish names, categories with their
// subcategories and foods.
func (s *DishService) RelatedData(ctx context.Context) (*DishRelatedData, error) {
	db := s.db.WithContext(ctx)
	data := &DishRelatedData{DishesNames: []DishName{}}

	if err := db.Model(&models.Dish{}).Select("id", "name").Order("name").Scan(&data.DishesNames).Error; err != nil {
		return nil, fmt.Errorf("failed to load dish names: %w", err)
	}
	if err := db.Preload("Subcategories").Order("id").Find(&data.Categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load dish categories: %w", err)
	}
	if err := db.Order("id").Find(&data.Foods).Error; err != nil {
		return nil, fmt.Errorf("failed to load foods: %w", err)
	}
	return data, nil
}

// Menu lists dish offerings with their final price at the current instant.
func (s *DishService) Menu(ctx context.Context, f MenuFilter) ([]MenuItem, error) {
	q := s.db.WithContext(ctx).Preload("Dish.Subcategory").Preload("Discount")
	if f.Establishment != nil {
		q = q.Where("establishment_id = ?", *f.Establishment)
	}

	var offerings []models.EstablishmentDish
	if err := q.Order("id").Find(&offerings).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	at := s.now()
	items := make([]MenuItem, 0, len(offerings))
	for _, o := range offerings {
		if !f.matches(o, at) {
			continue
		}
		price, err := EffectivePrice(o.Price, o.Discount, at)
		if err != nil {
			return nil, err
		}
		if f.FinalPriceMin != nil && price < *f.FinalPriceMin {
			continue
		}
		if f.FinalPriceMax != nil && price > *f.FinalPriceMax {
			continue
		}

		item := MenuItem{
			ID:          o.ID,
			Description: o.Description,
			Photo:       s.media.URL(o.Photo),
			Dish:        o.DishID,
			Price:       o.Price,
			FinalPrice:  price,
			Discount:    o.Discount,
		}
		if o.Dish != nil {
			item.DishName = o.Dish.Name
		}
		items = append(items, item)
	}

	sortMenu(items, f.Ordering)
	return items, nil
}

// matches applies every filter except the final price bounds.
func (f MenuFilter) matches(o models.EstablishmentDish, at time.Time) bool {
	if f.HasDiscount != nil && DiscountActive(o.Discount, at) != *f.HasDiscount {
		return false
	}
	if f.Search != "" && (o.Dish == nil || !strings.Contains(strings.ToLower(o.Dish.Name), strings.ToLower(f.Search))) {
		return false
	}
	if f.Food != nil && (o.Dish == nil || o.Dish.FoodID != *f.Food) {
		return false
	}
	if f.Subcategory != nil && (o.Dish == nil || o.Dish.SubcategoryID != *f.Subcategory) {
		return false
	}
	if f.Category != nil && (o.Dish == nil || o.Dish.Subcategory == nil || o.Dish.Subcategory.CategoryID != *f.Category) {
		return false
	}
	return true
}

func sortMenu(items []MenuItem, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	var less func(a, b MenuItem) bool
	switch strings.TrimPrefix(ordering, "-") {
	case "dish__name":
		less = func(a, b MenuItem) bool { return a.DishName < b.DishName }
	case "final_price":
		less = func(a, b MenuItem) bool { return a.FinalPrice < b.FinalPrice }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// OrderingStatistics counts how many times each catalog dish was ordered across all
// establishments, most ordered first.
func (s *DishService) OrderingStatistics(ctx context.Context) ([]DishOrdersCount, error) {
	out := []DishOrdersCount{}
	err := s.db.WithContext(ctx).Model(&models.Dish{}).
		Select("dishes.id AS id, dishes.name AS name, COUNT(ordered_dishes.id) AS orders_count").
		Joins("LEFT JOIN establishment_dishes ON establishment_dishes.dish_id = dishes.id").
		Joins("LEFT JOIN ordered_dishes ON ordered_dishes.establishment_dish_id = establishment_dishes.id").
		Group("dishes.id, dishes.name").
		Order("orders_count DESC").Order("dishes.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count dish orders: %w", err)
	}
	return out, nil
}
