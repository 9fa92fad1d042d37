package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos resolve Tx first and fall back to their own handle when it is nil.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
