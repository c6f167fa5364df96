package repositories

import (
	"context"
	"fmt"

	"gamedominate/auth"
	"gamedominate/models"

	"gorm.io/gorm"
)

type ownerRow struct {
	OwnerID uint
}

type ownerRepository struct {
	db *gorm.DB
}

var _ auth.OwnerLookup = (*ownerRepository)(nil)

// NewOwnerRepository returns an auth.OwnerLookup that reads only the owner
// column of a resource row.
func NewOwnerRepository(db *gorm.DB) auth.OwnerLookup {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) FindOwnerID(ctx context.Context, resource models.Resource, id uint) (uint, error) {
	col, ok := resource.Owner()
	if !ok {
		return 0, fmt.Errorf("no owner column for resource %q", resource)
	}

	var row ownerRow
	err := r.db.WithContext(ctx).
		Table(col.Table).
		Select(col.Column+" AS owner_id").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return 0, translate(err)
	}
	return row.OwnerID, nil
}
