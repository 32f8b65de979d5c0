// Package categorizer provides the optional AI category suggestion used for
// records the rule table leaves without a category.
package categorizer

import (
	"context"

	"fjacquet/statement-csv/internal/models"
)

// AIClient suggests a category for a classified record.
type AIClient interface {
	SuggestCategory(ctx context.Context, rec models.Record) (string, error)
}
