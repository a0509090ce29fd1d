package settingsdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Setting is one tunable value. Values are stored as text and parsed by the
// typed accessors in the application layer.
type Setting struct {
	bun.BaseModel `bun:"table:app_settings,alias:s"`

	Key         string    `bun:"key,pk"`
	Value       string    `bun:"value,notnull"`
	Description string    `bun:"description,nullzero"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
