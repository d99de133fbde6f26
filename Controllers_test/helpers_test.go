package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/catering-app/config"
	"github.com/yeremiapane/catering-app/database"
	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPhoto = "data:image/png;base64,iVBORw0KGgo="

var testNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db     *gorm.DB
	app    *router.App
	router *gin.Engine

	settlement models.Settlement
	dishes     []models.Dish
}

// envelope mirrors utils.JSONResponse with the payload left raw.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

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

// newTestEnv builds the full router over an in-memory database with reference data.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	cfg := &config.Config{
		GinMode:        gin.TestMode,
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		BaseURL:        "http://localhost:8080",
		MediaRoot:      t.TempDir(),
		AllowedOrigins: []string{"*"},
	}
	app := router.NewApp(db, cfg)
	app.Now = func() time.Time { return testNow }

	env := &testEnv{db: db, app: app, router: router.SetupRouter(app)}

	require.NoError(t, database.Seed(db, &database.SeedFile{
		Countries: []database.CountrySeed{{
			Name: "Russia",
			Regions: []database.RegionSeed{{
				Name: "Moscow Oblast",
				Settlements: []database.SettlementSeed{{
					Name:      "Moscow",
					Addresses: []string{"Tverskaya 1"},
				}},
			}},
		}},
		DishCategories: []database.CategorySeed{{Name: "Soups", Subcategories: []string{"Hot soups"}}},
		Foods:          []string{"Russian"},
		Dishes: []database.DishSeed{
			{Name: "Borscht", Food: "Russian", Subcategory: "Hot soups"},
			{Name: "Solyanka", Food: "Russian", Subcategory: "Hot soups"},
		},
	}))
	require.NoError(t, db.First(&env.settlement, "name = ?", "Moscow").Error)
	require.NoError(t, db.Order("id").Find(&env.dishes).Error)
	return env
}

// user stores a user and returns it with a signed access token.
func (e *testEnv) user(t *testing.T, username string) (models.User, string) {
	t.Helper()
	u := models.User{Username: username, FirstName: username, LastName: "Test", Password: "x"}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := e.app.Tokens.GenerateToken(u.ID, u.Username)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode checks the status code and unmarshals the envelope payload into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, status int, out interface{}) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func (e *testEnv) establishmentPayload(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"description": "Dumplings all day long",
		"address":     map[string]interface{}{"name": "Arbat 10", "settlement": e.settlement.ID},
		"work_hours":  map[string]interface{}{"start_time": "09:00", "end_time": "23:00"},
		"photos":      []string{testPhoto},
		"tables": []map[string]interface{}{
			{"number": 1, "serving_clients_number": 2},
			{"number": 2, "serving_clients_number": 4},
		},
		"dishes": []map[string]interface{}{
			{
				"dish": e.dishes[0].ID, "description": "Classic", "photo": testPhoto, "price": 100,
				"discount": map[string]interface{}{
					"type": "percent", "amount": 20,
					"start_datetime": "2024-01-01T00:00:00Z", "end_datetime": "2024-01-31T23:59:59Z",
				},
			},
			{"dish": e.dishes[1].ID, "description": "Meaty", "photo": testPhoto, "price": 80},
		},
	}
}

// createEstablishment posts create_new as the token's user and returns the new id.
func (e *testEnv) createEstablishment(t *testing.T, token, name string) uint {
	t.Helper()
	var created struct {
		ID uint `json:"id"`
	}
	decode(t, e.do(t, http.MethodPost, "/api/catering_establishment/create_new", e.establishmentPayload(name), token), http.StatusCreated, &created)
	require.NotZero(t, created.ID)
	return created.ID
}

func (e *testEnv) tables(t *testing.T, establishmentID uint) []models.EstablishmentTable {
	t.Helper()
	var tables []models.EstablishmentTable
	require.NoError(t, e.db.Where("establishment_id = ?", establishmentID).Order("number").Find(&tables).Error)
	return tables
}

func (e *testEnv) offerings(t *testing.T, establishmentID uint) []models.EstablishmentDish {
	t.Helper()
	var offerings []models.EstablishmentDish
	require.NoError(t, e.db.Where("establishment_id = ?", establishmentID).Order("id").Find(&offerings).Error)
	return offerings
}

func (e *testEnv) book(t *testing.T, token string, tableID uint) uint {
	t.Helper()
	var booking struct {
		ID uint `json:"id"`
	}
	decode(t, e.do(t, http.MethodPost, "/api/catering_establishment/booking", map[string]interface{}{
		"catering_establishment_table": tableID,
		"start_datetime":               "2024-01-20T18:00:00Z",
		"end_datetime":                 "2024-01-20T20:00:00Z",
	}, token), http.StatusCreated, &booking)
	return booking.ID
}
