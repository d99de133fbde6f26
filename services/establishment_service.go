package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/utils"
	"gorm.io/gorm"
)

type EstablishmentService struct {
	db    *gorm.DB
	media *MediaStore
}

func NewEstablishmentService(db *gorm.DB, media *MediaStore) *EstablishmentService {
	return &EstablishmentService{db: db, media: media}
}

// savedMedia tracks files written for a request so they can be removed if the
// transaction does not commit.
type savedMedia struct {
	store *MediaStore
	paths []string
}

func (s *savedMedia) save(encoded, dir string) (string, error) {
	p, err := s.store.SaveEncoded(encoded, dir)
	if err != nil {
		return "", err
	}
	s.paths = append(s.paths, p)
	return p, nil
}

func (s *savedMedia) discard() { s.store.Remove(s.paths...) }

// Create stores the establishment with its address, work hours, photos, tables and
// dish offerings in one transaction.
func (s *EstablishmentService) Create(ctx context.Context, ownerID uint, in EstablishmentInput) (*models.Establishment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	saved := &savedMedia{store: s.media}
	var establishment models.Establishment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, in); err != nil {
			return err
		}

		workHours, _ := in.WorkHours.model()
		establishment = models.Establishment{
			OwnerID:     ownerID,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			IsVisible:   in.IsVisible == nil || *in.IsVisible,
			Address:     models.Address{Name: in.Address.Name, SettlementID: in.Address.Settlement},
			WorkHours:   workHours,
		}
		if err := tx.Create(&establishment).Error; err != nil {
			return fmt.Errorf("failed to create catering establishment: %w", err)
		}

		if err := createTables(tx, establishment.ID, in.Tables); err != nil {
			return err
		}
		return s.createMedia(tx, establishment.ID, in, saved)
	})
	if err != nil {
		saved.discard()
		return nil, err
	}

	utils.InfoLogger.Infof("Catering establishment %d created by user %d", establishment.ID, ownerID)
	return &establishment, nil
}

// Update replaces the editable state of an establishment. Photos and dish offerings are
// replaced as a whole, tables are matched by number so existing bookings survive.
// Files of removed photos and offerings are deleted after commit.
func (s *EstablishmentService) Update(ctx context.Context, id uint, in EstablishmentInput) (*models.Establishment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	saved := &savedMedia{store: s.media}
	var (
		establishment models.Establishment
		obsolete      []string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Photos").Preload("Dishes").Preload("Tables").
			First(&establishment, id).Error; err != nil {
			return notFound(err, "catering establishment", id)
		}
		if err := checkReferences(tx, in); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":        strings.TrimSpace(in.Name),
			"description": in.Description,
		}
		if in.IsVisible != nil {
			updates["is_visible"] = *in.IsVisible
		}
		if err := tx.Model(&establishment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update catering establishment: %w", err)
		}

		if err := tx.Model(&models.Address{ID: establishment.AddressID}).Updates(map[string]interface{}{
			"name":          in.Address.Name,
			"settlement_id": in.Address.Settlement,
		}).Error; err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		workHours, _ := in.WorkHours.model()
		if err := tx.Model(&models.WorkHours{ID: establishment.WorkHoursID}).Updates(map[string]interface{}{
			"start_time": workHours.StartTime,
			"end_time":   workHours.EndTime,
		}).Error; err != nil {
			return fmt.Errorf("failed to update work hours: %w", err)
		}

		removed, err := deleteMedia(tx, &establishment)
		if err != nil {
			return err
		}
		obsolete = removed

		if err := reconcileTables(tx, establishment.ID, establishment.Tables, in.Tables); err != nil {
			return err
		}
		return s.createMedia(tx, establishment.ID, in, saved)
	})
	if err != nil {
		saved.discard()
		return nil, err
	}

	s.media.Remove(obsolete...)
	utils.InfoLogger.Infof("Catering establishment %d updated", id)
	return &establishment, nil
}

func (s *EstablishmentService) createMedia(tx *gorm.DB, establishmentID uint, in EstablishmentInput, saved *savedMedia) error {
	for _, encoded := range in.Photos {
		p, err := saved.save(encoded, EstablishmentPhotosDir)
		if err != nil {
			return err
		}
		if err := tx.Create(&models.EstablishmentPhoto{EstablishmentID: establishmentID, Photo: p}).Error; err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}
	}

	for _, d := range in.Dishes {
		p, err := saved.save(d.Photo, DishPhotosDir)
		if err != nil {
			return err
		}
		offering := models.EstablishmentDish{
			EstablishmentID: establishmentID,
			DishID:          d.Dish,
			Description:     d.Description,
			Photo:           p,
			Price:           d.Price,
		}
		if d.Discount != nil {
			discount := d.Discount.model()
			offering.Discount = &discount
		}
		if err := tx.Create(&offering).Error; err != nil {
			return fmt.Errorf("failed to create dish offering: %w", err)
		}
	}
	return nil
}

// deleteMedia removes photos and dish offerings with everything that hangs off them and
// returns the media paths that are no longer referenced.
func deleteMedia(tx *gorm.DB, establishment *models.Establishment) ([]string, error) {
	var removed []string
	for _, p := range establishment.Photos {
		removed = append(removed, p.Photo)
	}
	if err := tx.Where("establishment_id = ?", establishment.ID).Delete(&models.EstablishmentPhoto{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete photos: %w", err)
	}

	if len(establishment.Dishes) == 0 {
		return removed, nil
	}
	ids := make([]uint, 0, len(establishment.Dishes))
	for _, d := range establishment.Dishes {
		ids = append(ids, d.ID)
		removed = append(removed, d.Photo)
	}
	if err := tx.Where("establishment_dish_id IN ?", ids).Delete(&models.Discount{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete discounts: %w", err)
	}
	if err := tx.Where("establishment_dish_id IN ?", ids).Delete(&models.OrderedDish{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete ordered dishes: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.EstablishmentDish{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete dish offerings: %w", err)
	}
	return removed, nil
}

func createTables(tx *gorm.DB, establishmentID uint, tables []TableInput) error {
	for _, t := range tables {
		table := models.EstablishmentTable{
			EstablishmentID:      establishmentID,
			Number:               t.Number,
			ServingClientsNumber: t.ServingClientsNumber,
		}
		if err := tx.Create(&table).Error; err != nil {
			return fmt.Errorf("failed to create table %d: %w", t.Number, err)
		}
	}
	return nil
}

// reconcileTables updates tables whose number is kept, creates new numbers and deletes
// tables that disappeared together with their bookings.
func reconcileTables(tx *gorm.DB, establishmentID uint, current []models.EstablishmentTable, wanted []TableInput) error {
	byNumber := make(map[int]models.EstablishmentTable, len(current))
	for _, t := range current {
		byNumber[t.Number] = t
	}

	var missing []TableInput
	for _, w := range wanted {
		existing, ok := byNumber[w.Number]
		if !ok {
			missing = append(missing, w)
			continue
		}
		delete(byNumber, w.Number)
		if existing.ServingClientsNumber == w.ServingClientsNumber {
			continue
		}
		if err := tx.Model(&existing).Update("serving_clients_number", w.ServingClientsNumber).Error; err != nil {
			return fmt.Errorf("failed to update table %d: %w", w.Number, err)
		}
	}

	if len(byNumber) > 0 {
		ids := make([]uint, 0, len(byNumber))
		for _, t := range byNumber {
			ids = append(ids, t.ID)
		}
		if err := deleteTables(tx, ids); err != nil {
			return err
		}
	}
	return createTables(tx, establishmentID, missing)
}

func deleteTables(tx *gorm.DB, tableIDs []uint) error {
	var bookingIDs []uint
	if err := tx.Model(&models.Booking{}).Where("table_id IN ?", tableIDs).Pluck("id", &bookingIDs).Error; err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	if len(bookingIDs) > 0 {
		if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&models.OrderedDish{}).Error; err != nil {
			return fmt.Errorf("failed to delete ordered dishes: %w", err)
		}
		if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&models.BookingPayment{}).Error; err != nil {
			return fmt.Errorf("failed to delete booking payments: %w", err)
		}
		if err := tx.Where("id IN ?", bookingIDs).Delete(&models.Booking{}).Error; err != nil {
			return fmt.Errorf("failed to delete bookings: %w", err)
		}
	}
	if err := tx.Where("id IN ?", tableIDs).Delete(&models.EstablishmentTable{}).Error; err != nil {
		return fmt.Errorf("failed to delete tables: %w", err)
	}
	return nil
}

// checkReferences verifies that the settlement and catalog dishes exist.
func checkReferences(tx *gorm.DB, in EstablishmentInput) error {
	var count int64
	if err := tx.Model(&models.Settlement{}).Where("id = ?", in.Address.Settlement).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return newValidation("address.settlement", "settlement %d does not exist", in.Address.Settlement)
	}

	if len(in.Dishes) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(in.Dishes))
	for _, d := range in.Dishes {
		ids = append(ids, d.Dish)
	}
	var found []uint
	if err := tx.Model(&models.Dish{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for i, id := range ids {
		if !known[id] {
			return newValidation(fmt.Sprintf("dishes[%d].dish", i), "dish %d does not exist", id)
		}
	}
	return nil
}

type AddressView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Settlement uint   `json:"settlement"`
}

type WorkHoursView struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func workHoursView(w models.WorkHours) WorkHoursView {
	return WorkHoursView{StartTime: w.StartTime.String(), EndTime: w.EndTime.String()}
}

type TableView struct {
	Number               int `json:"number"`
	ServingClientsNumber int `json:"serving_clients_number"`
}

type DishOfferingView struct {
	Dish        uint           `json:"dish"`
	Description string         `json:"description"`
	Photo       string         `json:"photo"`
	Price       float64        `json:"price"`
	Discount    *DiscountInput `json:"discount,omitempty"`
}

// EstablishmentView is the editable representation returned by update_info.
type EstablishmentView struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsVisible   bool               `json:"is_visible"`
	Address     AddressView        `json:"address"`
	WorkHours   WorkHoursView      `json:"work_hours"`
	Photos      []string           `json:"photos"`
	Tables      []TableView        `json:"tables"`
	Dishes      []DishOfferingView `json:"dishes"`
}

func (s *EstablishmentService) UpdateInfo(ctx context.Context, id uint) (*EstablishmentView, error) {
	var e models.Establishment
	err := s.db.WithContext(ctx).
		Preload("Address").Preload("WorkHours").Preload("Photos").
		Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Preload("Dishes.Discount").
		First(&e, id).Error
	if err != nil {
		return nil, notFound(err, "catering establishment", id)
	}

	view := &EstablishmentView{
		Name:        e.Name,
		Description: e.Description,
		IsVisible:   e.IsVisible,
		Address:     AddressView{ID: e.Address.ID, Name: e.Address.Name, Settlement: e.Address.SettlementID},
		WorkHours:   workHoursView(e.WorkHours),
		Photos:      make([]string, 0, len(e.Photos)),
		Tables:      make([]TableView, 0, len(e.Tables)),
		Dishes:      make([]DishOfferingView, 0, len(e.Dishes)),
	}
	for _, p := range e.Photos {
		view.Photos = append(view.Photos, s.media.URL(p.Photo))
	}
	for _, t := range e.Tables {
		view.Tables = append(view.Tables, TableView{Number: t.Number, ServingClientsNumber: t.ServingClientsNumber})
	}
	for _, d := range e.Dishes {
		offering := DishOfferingView{
			Dish:        d.DishID,
			Description: d.Description,
			Photo:       s.media.URL(d.Photo),
			Price:       d.Price,
		}
		if d.Discount != nil {
			offering.Discount = &DiscountInput{
				Kind:    d.Discount.Kind,
				Amount:  d.Discount.Amount,
				StartAt: d.Discount.ValidFrom,
				EndAt:   d.Discount.ValidTo,
			}
		}
		view.Dishes = append(view.Dishes, offering)
	}
	return view, nil
}

type MainInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	Photos      []string `json:"photos"`
	Address     string   `json:"address"`
}

func (s *EstablishmentService) MainInfo(ctx context.Context, id uint) (*MainInfo, error) {
	db := s.db.WithContext(ctx)
	var e models.Establishment
	err := db.Preload("Address.Settlement.Region.Country").Preload("Photos").First(&e, id).Error
	if err != nil {
		return nil, notFound(err, "catering establishment", id)
	}

	rating, err := averageFor(db, e.ID)
	if err != nil {
		return nil, err
	}

	photos := make([]string, 0, len(e.Photos))
	for _, p := range e.Photos {
		photos = append(photos, s.media.URL(p.Photo))
	}
	return &MainInfo{
		Name:        e.Name,
		Description: e.Description,
		Rating:      rating,
		Photos:      photos,
		Address:     e.Address.String(),
	}, nil
}

// Representation is the short form used by lists: id, name and the first photo.
type Representation struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

func (s *EstablishmentService) OwnedBy(ctx context.Context, ownerID uint) ([]Representation, error) {
	return s.representations(s.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

// Representations returns the short form of the given establishments; no ids means all.
func (s *EstablishmentService) Representations(ctx context.Context, ids []uint) ([]Representation, error) {
	db := s.db.WithContext(ctx)
	if len(ids) > 0 {
		db = db.Where("id IN ?", ids)
	}
	return s.representations(db)
}

func (s *EstablishmentService) representations(db *gorm.DB) ([]Representation, error) {
	var establishments []models.Establishment
	err := db.Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").Find(&establishments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catering establishments: %w", err)
	}

	out := make([]Representation, 0, len(establishments))
	for _, e := range establishments {
		out = append(out, Representation{ID: e.ID, Name: e.Name, Photo: s.firstPhoto(e)})
	}
	return out, nil
}

func (s *EstablishmentService) firstPhoto(e models.Establishment) string {
	if len(e.Photos) == 0 {
		return ""
	}
	return s.media.URL(e.Photos[0].Photo)
}

type CatalogFilter struct {
	RatingMin   *float64
	RatingMax   *float64
	AddressName string
	Settlement  *uint
	Region      *uint
	Country     *uint
	Search      string
	Ordering    string
}

type CatalogItem struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Photo       string  `json:"photo,omitempty"`
	Rating      float64 `json:"rating"`
	Settlement  uint    `json:"settlement"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
}

// Catalog lists visible establishments with their average rating.
func (s *EstablishmentService) Catalog(ctx context.Context, f CatalogFilter) ([]CatalogItem, error) {
	db := s.db.WithContext(ctx)
	q := db.Where("is_visible = ?", true)
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}

	var establishments []models.Establishment
	err := q.Preload("Address.Settlement.Region").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").Find(&establishments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	ids := make([]uint, 0, len(establishments))
	for _, e := range establishments {
		ids = append(ids, e.ID)
	}
	ratings, err := averagesFor(db, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(establishments))
	for _, e := range establishments {
		rating := ratings[e.ID]
		if !f.matches(e, rating) {
			continue
		}
		items = append(items, CatalogItem{
			ID:          e.ID,
			Name:        e.Name,
			Photo:       s.firstPhoto(e),
			Rating:      rating,
			Settlement:  e.Address.SettlementID,
			Address:     e.Address.Name,
			Description: cut(e.Description, CatalogDescriptionLength),
		})
	}

	sortCatalog(items, f.Ordering)
	return items, nil
}

func (f CatalogFilter) matches(e models.Establishment, rating float64) bool {
	if f.RatingMin != nil && rating < *f.RatingMin {
		return false
	}
	if f.RatingMax != nil && rating > *f.RatingMax {
		return false
	}
	if f.AddressName != "" && !strings.Contains(strings.ToLower(e.Address.Name), strings.ToLower(f.AddressName)) {
		return false
	}
	if f.Settlement != nil && e.Address.SettlementID != *f.Settlement {
		return false
	}

	var region *models.Region
	if e.Address.Settlement != nil {
		region = e.Address.Settlement.Region
	}
	if f.Region != nil && (region == nil || region.ID != *f.Region) {
		return false
	}
	if f.Country != nil && (region == nil || region.CountryID != *f.Country) {
		return false
	}
	return true
}

// sortCatalog orders by "name" or "rating", "-" prefix for descending. Unknown fields
// keep the id order.
func sortCatalog(items []CatalogItem, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")

	var less func(a, b CatalogItem) bool
	switch field {
	case "name":
		less = func(a, b CatalogItem) bool { return a.Name < b.Name }
	case "rating":
		less = func(a, b CatalogItem) bool { return a.Rating < b.Rating }
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

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *EstablishmentService) TablesList(ctx context.Context, establishmentID uint) ([]models.EstablishmentTable, error) {
	var tables []models.EstablishmentTable
	err := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID).Order("number").Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	return tables, nil
}

// TablesByEstablishment groups the tables of the requested establishments by establishment id.
func (s *EstablishmentService) TablesByEstablishment(ctx context.Context, ids []uint) (map[uint][]models.EstablishmentTable, error) {
	out := make(map[uint][]models.EstablishmentTable, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var establishments []models.Establishment
	err := s.db.WithContext(ctx).
		Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Where("id IN ?", ids).Find(&establishments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	for _, e := range establishments {
		tables := e.Tables
		if tables == nil {
			tables = []models.EstablishmentTable{}
		}
		out[e.ID] = tables
	}
	return out, nil
}

func (s *EstablishmentService) WorkHoursByEstablishment(ctx context.Context, ids []uint) (map[uint]WorkHoursView, error) {
	out := make(map[uint]WorkHoursView, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var establishments []models.Establishment
	if err := s.db.WithContext(ctx).Preload("WorkHours").Where("id IN ?", ids).Find(&establishments).Error; err != nil {
		return nil, fmt.Errorf("failed to load work hours: %w", err)
	}
	for _, e := range establishments {
		out[e.ID] = workHoursView(e.WorkHours)
	}
	return out, nil
}
