package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/catering-app/database"
	"github.com/yeremiapane/catering-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPhoto = "data:image/png;base64,iVBORw0KGgo="

var testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recordedEvent struct {
	UserID uint
	Event  string
	Data   interface{}
}

type recordingNotifier struct {
	events []recordedEvent
}

func (n *recordingNotifier) Notify(userID uint, event string, data interface{}) {
	n.events = append(n.events, recordedEvent{UserID: userID, Event: event, Data: data})
}

// fixture holds the reference rows most tests need.
type fixture struct {
	db         *gorm.DB
	media      *MediaStore
	owner      models.User
	visitor    models.User
	settlement models.Settlement
	region     models.Region
	dishes     []models.Dish
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db, media: NewMediaStore(t.TempDir(), "http://test")}

	f.owner = models.User{Username: "owner", FirstName: "O", LastName: "W", Password: "x"}
	f.visitor = models.User{Username: "visitor", FirstName: "V", LastName: "S", Password: "x"}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.visitor).Error)

	country := models.Country{Name: "Belarus"}
	require.NoError(t, db.Create(&country).Error)
	f.region = models.Region{Name: "Minsk Region", CountryID: country.ID}
	require.NoError(t, db.Create(&f.region).Error)
	f.settlement = models.Settlement{Name: "Minsk", RegionID: f.region.ID}
	require.NoError(t, db.Create(&f.settlement).Error)

	category := models.DishCategory{Name: "Soups"}
	require.NoError(t, db.Create(&category).Error)
	sub := models.DishSubcategory{Name: "Hot soups", CategoryID: category.ID}
	require.NoError(t, db.Create(&sub).Error)
	food := models.Food{Name: "Meat"}
	require.NoError(t, db.Create(&food).Error)

	for _, name := range []string{"Borscht", "Solyanka"} {
		d := models.Dish{Name: name, FoodID: food.ID, SubcategoryID: sub.ID}
		require.NoError(t, db.Create(&d).Error)
		f.dishes = append(f.dishes, d)
	}
	return f
}

func (f *fixture) input(name string) EstablishmentInput {
	return EstablishmentInput{
		Name:        name,
		Description: "Traditional cuisine",
		Address:     AddressInput{Name: "Nezavisimosti 11", Settlement: f.settlement.ID},
		WorkHours:   WorkHoursInput{StartTime: "09:00", EndTime: "23:00"},
		Photos:      []string{testPhoto},
		Tables: []TableInput{
			{Number: 1, ServingClientsNumber: 2},
			{Number: 2, ServingClientsNumber: 4},
		},
		Dishes: []DishOfferingInput{
			{Dish: f.dishes[0].ID, Description: "Beet soup", Photo: testPhoto, Price: 100},
			{Dish: f.dishes[1].ID, Description: "Meat soup", Photo: testPhoto, Price: 80},
		},
	}
}

func (f *fixture) establishment(t *testing.T, name string) *models.Establishment {
	t.Helper()
	e, err := NewEstablishmentService(f.db, f.media).Create(context.Background(), f.owner.ID, f.input(name))
	require.NoError(t, err)
	return e
}

func (f *fixture) tables(t *testing.T, establishmentID uint) []models.EstablishmentTable {
	t.Helper()
	var tables []models.EstablishmentTable
	require.NoError(t, f.db.Where("establishment_id = ?", establishmentID).Order("number").Find(&tables).Error)
	return tables
}

func (f *fixture) offerings(t *testing.T, establishmentID uint) []models.EstablishmentDish {
	t.Helper()
	var offerings []models.EstablishmentDish
	require.NoError(t, f.db.Where("establishment_id = ?", establishmentID).Order("id").Find(&offerings).Error)
	return offerings
}

func (f *fixture) booking(t *testing.T, tableID uint, start, end time.Time) models.Booking {
	t.Helper()
	b := models.Booking{ClientID: f.visitor.ID, TableID: tableID, StartAt: start, EndAt: end}
	require.NoError(t, f.db.Create(&b).Error)
	return b
}
