// internal/stores/interfaces.go
package stores

import (
	"context"

	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

// MetaobjectAPI is the slice of the Admin API the stores need. The
// concrete client satisfies it; tests substitute an in-memory fake. A
// future backend with native filtering can implement it without
// touching store callers.
type MetaobjectAPI interface {
	EnsureMetaobjectDefinition(ctx context.Context, def shopify.MetaobjectDefinition) error
	CreateMetaobject(ctx context.Context, mtype string, fields []shopify.MetaobjectField) (*shopify.Metaobject, []shopify.UserError, error)
	UpdateMetaobject(ctx context.Context, id string, fields []shopify.MetaobjectField) (*shopify.Metaobject, []shopify.UserError, error)
	DeleteMetaobject(ctx context.Context, id string) (bool, []shopify.UserError, error)
	GetMetaobject(ctx context.Context, id string) (*shopify.Metaobject, error)
	ListMetaobjects(ctx context.Context, mtype string, first int, after string) ([]shopify.Metaobject, bool, string, error)
}
