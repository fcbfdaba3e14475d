// services/staff_service.go
package services

import (
	"context"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateStaffInput struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Role     string `json:"role" binding:"omitempty,oneof=STAFF ADMIN"`
}

type UpdateStaffInput struct {
	Name     *string `json:"name" binding:"omitempty,min=2"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	Role     *string `json:"role" binding:"omitempty,oneof=STAFF ADMIN"`
}

// StaffService manages the company's own accounts: STAFF and ADMIN users.
type StaffService struct {
	db *gorm.DB
}

func NewStaffService(db *gorm.DB) *StaffService {
	return &StaffService{db: db}
}

func (s *StaffService) List(ctx context.Context, actor policy.Actor) ([]models.User, error) {
	if err := policy.Authorize(actor, policy.ActionManageStaff, nil); err != nil {
		return nil, err
	}
	var staff []models.User
	err := s.db.WithContext(ctx).
		Where("role IN ?", []models.Role{models.RoleStaff, models.RoleAdmin}).
		Order("created_at DESC").
		Find(&staff).Error
	if err != nil {
		return nil, utils.FromDBError(err, "")
	}
	return staff, nil
}

func (s *StaffService) Create(ctx context.Context, actor policy.Actor, in CreateStaffInput) (*models.User, error) {
	if err := policy.Authorize(actor, policy.ActionManageStaff, nil); err != nil {
		return nil, err
	}

	role := models.RoleStaff
	if in.Role != "" {
		role = models.Role(strings.ToUpper(in.Role))
	}
	if !role.IsTeamMember() {
		return nil, utils.NewValidationError("Role must be STAFF or ADMIN")
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Password: in.Password,
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if conflict := emailConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, utils.FromDBError(err, "")
	}
	utils.Logger.Infof("Staff member %s created with role %s", user.Email, user.Role)
	return &user, nil
}

func (s *StaffService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateStaffInput) (*models.User, error) {
	if err := policy.Authorize(actor, policy.ActionManageStaff, nil); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		updates["email"] = normalizeEmail(*in.Email)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		role := models.Role(strings.ToUpper(*in.Role))
		if !role.IsTeamMember() {
			return nil, utils.NewValidationError("Role must be STAFF or ADMIN")
		}
		updates["role"] = role
	}
	if in.Password != nil {
		hashed, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, utils.NewInternalError("Failed to hash password", err)
		}
		updates["password"] = hashed
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.findTeamMember(tx, &user, id); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now()
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			if conflict := emailConflict(err); conflict != nil {
				return conflict
			}
			return utils.FromDBError(err, "Staff member not found")
		}
		return utils.FromDBError(tx.First(&user, "id = ?", id).Error, "Staff member not found")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a team member after unassigning their bookings. Admins
// cannot delete themselves.
func (s *StaffService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if err := policy.Authorize(actor, policy.ActionManageStaff, nil); err != nil {
		return err
	}
	if actor.Subject == id {
		return utils.NewValidationError("You cannot delete your own account")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := s.findTeamMember(tx, &user, id); err != nil {
			return err
		}
		err := tx.Model(&models.Booking{}).
			Where("assigned_staff_id = ?", id).
			Updates(map[string]any{"assigned_staff_id": nil, "row_version": gorm.Expr("row_version + 1")}).Error
		if err != nil {
			return utils.FromDBError(err, "")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return utils.FromDBError(err, "")
		}
		utils.Logger.Infof("Staff member %s deleted", user.Email)
		return nil
	})
}

func (s *StaffService) findTeamMember(tx *gorm.DB, user *models.User, id uuid.UUID) error {
	err := tx.Where("role IN ?", []models.Role{models.RoleStaff, models.RoleAdmin}).First(user, "id = ?", id).Error
	return utils.FromDBError(err, "Staff member not found")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailConflict(err error) error {
	if utils.IsDuplicateKey(err) {
		return utils.NewConflictError("Email already in use")
	}
	return nil
}
