package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ResultEvent records one attempt to deliver a finished exam's result,
// successful or not.
type ResultEvent struct {
	ent.Schema
}

func (ResultEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ResultEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.String("test_type").
			NotEmpty(),
		field.String("name").
			NotEmpty(),
		field.String("email").
			NotEmpty(),
		field.Int("score"),
		field.Int("total"),
		field.Int("time_taken").
			Comment("Seconds"),
		field.String("reporter").
			Comment("api, local or email"),
		field.Bool("success"),
		field.String("message").
			Default("").
			Comment("Receipt message or error text"),
	}
}

func (ResultEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("test_type"),
	}
}
