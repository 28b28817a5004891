package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records exam lifecycle transitions.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID of the attempt; kept across restarts"),
		field.String("test_type").
			NotEmpty().
			Comment("Bank slug"),
		field.Enum("action").
			Values("start", "resume", "restart", "submit", "expire", "abandon"),
		field.Int("attempt").
			Default(1),
		field.Int("answered").
			Default(0),
		field.Int("score").
			Default(0).
			Comment("Set on submit and expire"),
		field.Int("total").
			Default(0),
		field.Int("remaining_secs").
			Default(0),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("test_type", "action"),
	}
}
