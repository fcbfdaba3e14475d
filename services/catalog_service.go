// services/catalog_service.go
package services

import (
	"context"
	"fmt"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DeleteActionDeleted     = "deleted"
	DeleteActionDeactivated = "deactivated"
)

// DeleteResult tells the caller whether a catalog item was removed or, being
// referenced by bookings, only deactivated.
type DeleteResult struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required,min=2"`
	Description string  `json:"description" binding:"required,min=10"`
	BasePrice   float64 `json:"basePrice" binding:"gte=0"`
	PriceUnit   string  `json:"priceUnit"`
	Duration    int     `json:"duration" binding:"required,gte=15"`
	Image       string  `json:"image"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateServiceInput struct {
	Name        *string  `json:"name" binding:"omitempty,min=2"`
	Description *string  `json:"description" binding:"omitempty,min=10"`
	BasePrice   *float64 `json:"basePrice" binding:"omitempty,gte=0"`
	PriceUnit   *string  `json:"priceUnit"`
	Duration    *int     `json:"duration" binding:"omitempty,gte=15"`
	Image       *string  `json:"image"`
	IsActive    *bool    `json:"isActive"`
}

type CreatePropertyTypeInput struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"isActive"`
}

type UpdatePropertyTypeInput struct {
	Name        *string `json:"name" binding:"omitempty,min=2"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"isActive"`
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// canSeeInactive only lets admins through; everyone else silently gets the
// active catalog.
func canSeeInactive(actor policy.Actor) bool {
	return policy.Authorize(actor, policy.ActionViewInactive, nil) == nil
}

func (s *CatalogService) ListServices(ctx context.Context, actor policy.Actor, includeInactive bool) ([]models.Service, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive || !canSeeInactive(actor) {
		query = query.Where("is_active = ?", true)
	}
	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}
	return services, nil
}

func (s *CatalogService) GetService(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, utils.FromDBError(err, "Service not found")
	}
	if !service.IsActive && !canSeeInactive(actor) {
		return nil, utils.NewNotFoundError("Service not found")
	}
	return &service, nil
}

func (s *CatalogService) CreateService(ctx context.Context, actor policy.Actor, in CreateServiceInput) (*models.Service, error) {
	if err := policy.Authorize(actor, policy.ActionManageCatalog, nil); err != nil {
		return nil, err
	}

	service := models.Service{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		BasePrice:   in.BasePrice,
		PriceUnit:   strings.TrimSpace(in.PriceUnit),
		Duration:    in.Duration,
		Image:       in.Image,
		IsActive:    true,
	}
	if service.PriceUnit == "" {
		service.PriceUnit = "flat rate"
	}
	if in.IsActive != nil {
		service.IsActive = *in.IsActive
	}

	// Select("*") so an explicit isActive=false is not swapped for the column default.
	if err := s.db.WithContext(ctx).Select("*").Create(&service).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}
	utils.Logger.Infof("Service %q created", service.Name)
	return &service, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateServiceInput) (*models.Service, error) {
	if err := policy.Authorize(actor, policy.ActionManageCatalog, nil); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.BasePrice != nil {
		updates["base_price"] = *in.BasePrice
	}
	if in.PriceUnit != nil {
		updates["price_unit"] = strings.TrimSpace(*in.PriceUnit)
	}
	if in.Duration != nil {
		updates["duration"] = *in.Duration
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	var service models.Service
	if err := s.updateCatalogItem(ctx, &service, id, updates, "Service not found"); err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, actor policy.Actor, id uuid.UUID) (*DeleteResult, error) {
	if err := policy.Authorize(actor, policy.ActionManageCatalog, nil); err != nil {
		return nil, err
	}
	return deleteOrDeactivate[models.Service](ctx, s.db, id, "service_id", "Service")
}

func (s *CatalogService) ListPropertyTypes(ctx context.Context, actor policy.Actor, includeInactive bool) ([]models.PropertyType, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive || !canSeeInactive(actor) {
		query = query.Where("is_active = ?", true)
	}
	var propertyTypes []models.PropertyType
	if err := query.Find(&propertyTypes).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}
	return propertyTypes, nil
}

func (s *CatalogService) GetPropertyType(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.PropertyType, error) {
	var propertyType models.PropertyType
	if err := s.db.WithContext(ctx).First(&propertyType, "id = ?", id).Error; err != nil {
		return nil, utils.FromDBError(err, "Property type not found")
	}
	if !propertyType.IsActive && !canSeeInactive(actor) {
		return nil, utils.NewNotFoundError("Property type not found")
	}
	return &propertyType, nil
}

func (s *CatalogService) CreatePropertyType(ctx context.Context, actor policy.Actor, in CreatePropertyTypeInput) (*models.PropertyType, error) {
	if err := policy.Authorize(actor, policy.ActionManageCatalog, nil); err != nil {
		return nil, err
	}

	propertyType := models.PropertyType{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Icon:        in.Icon,
		IsActive:    true,
	}
	if in.IsActive != nil {
		propertyType.IsActive = *in.IsActive
	}

	if err := s.db.WithContext(ctx).Select("*").Create(&propertyType).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}
	utils.Logger.Infof("Property type %q created", propertyType.Name)
	return &propertyType, nil
}

func (s *CatalogService) UpdatePropertyType(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdatePropertyTypeInput) (*models.PropertyType, error) {
	if err := policy.Authorize(actor, policy.ActionManageCatalog, nil); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Icon != nil {
		updates["icon"] = *in.Icon
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	var propertyType models.PropertyType
	if err := s.updateCatalogItem(ctx, &propertyType, id, updates, "Property type not found"); err != nil {
		return nil, err
	}
	return &propertyType, nil
}

func (s *CatalogService) DeletePropertyType(ctx context.Context, actor policy.Actor, id uuid.UUID) (*DeleteResult, error) {
	if err := policy.Authorize(actor, policy.ActionManageCatalog, nil); err != nil {
		return nil, err
	}
	return deleteOrDeactivate[models.PropertyType](ctx, s.db, id, "property_type_id", "Property type")
}

// updateCatalogItem loads the row into dest, applies updates and reloads it.
func (s *CatalogService) updateCatalogItem(ctx context.Context, dest any, id uuid.UUID, updates map[string]any, notFound string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(dest, "id = ?", id).Error; err != nil {
			return utils.FromDBError(err, notFound)
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now()
		if err := tx.Model(dest).Updates(updates).Error; err != nil {
			return utils.FromDBError(err, notFound)
		}
		return utils.FromDBError(tx.First(dest, "id = ?", id).Error, notFound)
	})
}

// deleteOrDeactivate removes a catalog row unless bookings still reference it
// through fkColumn, in which case the row is only deactivated.
func deleteOrDeactivate[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, fkColumn, label string) (*DeleteResult, error) {
	var result DeleteResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item T
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return utils.FromDBError(err, label+" not found")
		}

		var references int64
		if err := tx.Model(&models.Booking{}).Where(fkColumn+" = ?", id).Count(&references).Error; err != nil {
			return utils.FromDBError(err, "")
		}

		if references > 0 {
			if err := tx.Model(&item).Updates(map[string]any{"is_active": false, "updated_at": time.Now()}).Error; err != nil {
				return utils.FromDBError(err, "")
			}
			result = DeleteResult{
				Action:  DeleteActionDeactivated,
				Message: fmt.Sprintf("%s is used by %d booking(s) and was deactivated instead of deleted", label, references),
			}
			return nil
		}

		if err := tx.Delete(&item).Error; err != nil {
			return utils.FromDBError(err, "")
		}
		result = DeleteResult{Action: DeleteActionDeleted, Message: label + " deleted successfully"}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.Logger.Infof("%s %s %s", label, id, result.Action)
	return &result, nil
}
