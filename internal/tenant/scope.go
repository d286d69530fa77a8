package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForAgent returns a GORM scope that filters rows owned by one agent.
func ForAgent(agentID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("agent_id = ?", agentID)
	}
}
