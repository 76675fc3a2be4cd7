// Package catalog holds the marketplace service/category listing that
// activities and leads reference but do not own.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// ServiceNotFoundError represents an error when a catalog service is not found
type ServiceNotFoundError struct {
	ServiceID uint
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service not found for id: %d", e.ServiceID)
}

// NewServiceNotFoundError creates a new ServiceNotFoundError
func NewServiceNotFoundError(serviceID uint) *ServiceNotFoundError {
	return &ServiceNotFoundError{ServiceID: serviceID}
}

// CategoryNotFoundError represents an error when a catalog category is not found
type CategoryNotFoundError struct {
	CategoryID uint
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category not found for id: %d", e.CategoryID)
}

// NewCategoryNotFoundError creates a new CategoryNotFoundError
func NewCategoryNotFoundError(categoryID uint) *CategoryNotFoundError {
	return &CategoryNotFoundError{CategoryID: categoryID}
}

// Category represents a service category in the marketplace catalog
type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Service represents an offered agency service in the marketplace catalog
type Service struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  uint      `gorm:"index;not null" json:"category_id"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ServiceExists reports whether a service with the given id exists in the catalog
func ServiceExists(db *gorm.DB, serviceID uint) (bool, error) {
	var count int64
	if err := db.Model(&Service{}).Where("id = ?", serviceID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check service existence: %w", err)
	}
	return count > 0, nil
}

// CategoryExists reports whether a category with the given id exists in the catalog
func CategoryExists(db *gorm.DB, categoryID uint) (bool, error) {
	var count int64
	if err := db.Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}
	return count > 0, nil
}

// GetServiceDisplayName returns the display name of a service.
// Returns ServiceNotFoundError when the id does not resolve.
func GetServiceDisplayName(db *gorm.DB, serviceID uint) (string, error) {
	var service Service
	if err := db.Where("id = ?", serviceID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NewServiceNotFoundError(serviceID)
		}
		return "", fmt.Errorf("unexpected error querying service: %w", err)
	}
	return service.Name, nil
}

// GetServiceByID retrieves a service by its id
func GetServiceByID(db *gorm.DB, serviceID uint) (*Service, error) {
	var service Service
	if err := db.Where("id = ?", serviceID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewServiceNotFoundError(serviceID)
		}
		return nil, err
	}
	return &service, nil
}

// ListServices retrieves all catalog services
func ListServices(db *gorm.DB) ([]Service, error) {
	var services []Service
	if err := db.Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// ListCategories retrieves all catalog categories
func ListCategories(db *gorm.DB) ([]Category, error) {
	var categories []Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateService inserts a service into the catalog
func CreateService(db *gorm.DB, service *Service) error {
	if service.CreatedAt.IsZero() {
		service.CreatedAt = time.Now().UTC()
	}
	return db.Create(service).Error
}

// CreateCategory inserts a category into the catalog
func CreateCategory(db *gorm.DB, category *Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	return db.Create(category).Error
}

// seedCategory pairs a category with the services it offers for seeding
type seedCategory struct {
	slug     string
	name     string
	services []seedService
}

type seedService struct {
	slug        string
	name        string
	description string
}

// SetupDefaultCatalog loads the marketplace's static catalog snapshot.
// Idempotent: existing rows are left untouched.
func SetupDefaultCatalog(dbConn *gorm.DB) error {
	seed := []seedCategory{
		{
			slug: "development", name: "Development",
			services: []seedService{
				{"web-development", "Web Development", "Custom websites and web applications"},
				{"mobile-apps", "Mobile App Development", "iOS and Android applications"},
				{"ecommerce", "E-Commerce Solutions", "Online stores and payment integrations"},
			},
		},
		{
			slug: "marketing", name: "Digital Marketing",
			services: []seedService{
				{"seo", "Search Engine Optimization", "Organic search visibility and ranking"},
				{"ppc", "Paid Advertising", "Search and social advertising campaigns"},
				{"social-media", "Social Media Management", "Content planning and community management"},
			},
		},
		{
			slug: "design", name: "Design & Branding",
			services: []seedService{
				{"branding", "Brand Identity", "Logos, style guides and brand strategy"},
				{"ui-ux", "UI/UX Design", "Product and interface design"},
			},
		},
	}

	now := time.Now().UTC()
	return sqlite.PerformWrite(slog.Default(), dbConn, func(tx *gorm.DB) error {
		for _, cat := range seed {
			err := tx.Exec(`
                INSERT INTO categories (slug, name, created_at)
                VALUES (?, ?, ?)
                ON CONFLICT(slug) DO NOTHING
            `, cat.slug, cat.name, now).Error
			if err != nil {
				return fmt.Errorf("failed to upsert category %s: %w", cat.slug, err)
			}

			var category Category
			if err := tx.Where("slug = ?", cat.slug).First(&category).Error; err != nil {
				return fmt.Errorf("failed to load seeded category %s: %w", cat.slug, err)
			}

			for _, svc := range cat.services {
				err := tx.Exec(`
                    INSERT INTO services (category_id, slug, name, description, created_at)
                    VALUES (?, ?, ?, ?, ?)
                    ON CONFLICT(slug) DO NOTHING
                `, category.ID, svc.slug, svc.name, svc.description, now).Error
				if err != nil {
					return fmt.Errorf("failed to upsert service %s: %w", svc.slug, err)
				}
			}
		}
		return nil
	})
}
