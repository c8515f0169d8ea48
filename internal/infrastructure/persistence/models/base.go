package models

import (
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and audit timestamps. Both timestamps are written
// from the domain clock; GORM's own time tracking is switched off.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	*m = BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// TenantAggregateModel adds the tenant scope, creator and the version column
// that version-checked saves compare against.
type TenantAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (m *TenantAggregateModel) root() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseEntity: m.entity(),
		TenantID:   m.TenantID,
		CreatedBy:  m.CreatedBy,
		Version:    m.Version,
	}
}

func (m *TenantAggregateModel) setRoot(r shared.TenantAggregateRoot) {
	m.setEntity(r.BaseEntity)
	m.Version = r.Version
	m.TenantID = r.TenantID
	m.CreatedBy = r.CreatedBy
}
