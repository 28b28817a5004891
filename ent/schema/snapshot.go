package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Snapshot is the saved progress of an unfinished exam, one row per bank.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("test_type").
			Unique().
			Comment("Bank slug; the primary key"),
		field.String("session_id"),
		field.Int64("sequence").
			Comment("Global sequence at save time"),
		field.Time("timestamp").
			Default(time.Now),
		field.JSON("data", map[string]any{}).
			Comment("Versioned exam state"),
	}
}
