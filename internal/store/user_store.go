package store

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pasar/internal/apperrors"
	"pasar/internal/models"
)

func userSnapshot(u *models.User) *UserSnapshot {
	return &UserSnapshot{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		CreatedBy: u.CreatedBy,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateUser creates a new user. Uniqueness of username and email is enforced
// by the database constraints and translated to a validation error.
func (m *Manager) CreateUser(username, email, password, actor string) (*UserSnapshot, error) {
	var snap *UserSnapshot
	err := m.run("create_user", func(tx *gorm.DB) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		user.Stamp(actor)
		if err := user.Validate(); err != nil {
			return err
		}

		if err := tx.Create(&user).Error; err != nil {
			return apperrors.TranslateIntegrity(err, "user")
		}
		snap = userSnapshot(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("user_id", snap.ID).Str("username", username).Msg("user created")
	return snap, nil
}

// GetUser returns a user snapshot, or nil without error when absent.
func (m *Manager) GetUser(id uint) (*UserSnapshot, error) {
	var snap *UserSnapshot
	err := m.run("get_user", func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				m.log.Debug().Uint("user_id", id).Msg("user not found")
				return nil
			}
			return fmt.Errorf("failed to get user %d: %w", id, err)
		}
		snap = userSnapshot(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// GetUserCredentials looks a user up by username for authentication. Absent
// users yield nil without error so login failures stay indistinguishable.
func (m *Manager) GetUserCredentials(username string) (*Credentials, error) {
	var creds *Credentials
	err := m.run("get_user_credentials", func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "username = ?", username).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("failed to get user by username %s: %w", username, err)
		}
		creds = &Credentials{
			ID:           user.ID,
			Username:     user.Username,
			PasswordHash: user.PasswordHash,
			IsActive:     user.IsActive,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// ListUsers returns a page of users, optionally filtered by a
// case-insensitive substring match on username or email.
func (m *Manager) ListUsers(page, pageSize int, search string) (*Page[UserSnapshot], error) {
	page, pageSize = normalizePage(page, pageSize)

	var result *Page[UserSnapshot]
	err := m.run("list_users", func(tx *gorm.DB) error {
		query := tx.Model(&models.User{})
		if search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}

		var users []models.User
		if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Find(&users).Error; err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		items := make([]UserSnapshot, 0, len(users))
		for i := range users {
			items = append(items, *userSnapshot(&users[i]))
		}
		result = &Page[UserSnapshot]{Total: total, Page: page, PageSize: pageSize, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateUser applies a partial update; only non-nil fields are touched.
func (m *Manager) UpdateUser(id uint, upd UserUpdate, actor string) (*UserSnapshot, error) {
	var snap *UserSnapshot
	err := m.run("update_user", func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return wrapNotFound(err, "user with ID %d not found", id)
		}

		if upd.Username != nil {
			user.Username = *upd.Username
		}
		if upd.Email != nil {
			user.Email = *upd.Email
		}
		if upd.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = string(hash)
		}
		user.Touch(actor)

		if err := user.Validate(); err != nil {
			return err
		}
		if err := tx.Save(&user).Error; err != nil {
			return apperrors.TranslateIntegrity(err, "user")
		}
		snap = userSnapshot(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("user_id", id).Str("actor", actor).Msg("user updated")
	return snap, nil
}

// DeleteUser removes a user. When the user still has orders the deletion is
// rejected unless cascade is set, in which case the orders and their items
// are removed in the same transaction.
func (m *Manager) DeleteUser(id uint, cascade bool, actor string) error {
	err := m.run("delete_user", func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return wrapNotFound(err, "user with ID %d not found", id)
		}

		var ordersCount int64
		if err := tx.Model(&models.Order{}).Where("user_id = ?", id).Count(&ordersCount).Error; err != nil {
			return fmt.Errorf("failed to count orders for user %d: %w", id, err)
		}
		if ordersCount > 0 && !cascade {
			return apperrors.NewValidation("user has %d orders; enable cascade to delete them too", ordersCount)
		}

		if ordersCount > 0 {
			orderIDs := tx.Model(&models.Order{}).Select("id").Where("user_id = ?", id)
			if err := tx.Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
				return fmt.Errorf("failed to delete order items for user %d: %w", id, err)
			}
			if err := tx.Where("user_id = ?", id).Delete(&models.Order{}).Error; err != nil {
				return fmt.Errorf("failed to delete orders for user %d: %w", id, err)
			}
		}

		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}

		m.log.Info().Uint("user_id", id).Str("username", user.Username).Str("actor", actor).Msg("user deleted")
		return nil
	})
	return err
}

// SoftDeleteUser marks a user inactive instead of removing the row. The
// username and email are prefixed so they become free for reuse.
func (m *Manager) SoftDeleteUser(id uint, actor string) (*UserSnapshot, error) {
	var snap *UserSnapshot
	err := m.run("soft_delete_user", func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return wrapNotFound(err, "user with ID %d not found", id)
		}

		user.IsActive = false
		user.Email = "deleted_" + user.Email
		user.Username = "deleted_" + user.Username
		user.Touch(actor)

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to soft delete user %d: %w", id, err)
		}
		snap = userSnapshot(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("user_id", id).Str("actor", actor).Msg("user soft deleted")
	return snap, nil
}
