package repository

import (
	"context"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
)

// RuleLoader reads a keyword rule set from a file
type RuleLoader interface {
	// LoadRules returns the rules in declared order
	LoadRules(ctx context.Context, path string) ([]entity.KeywordRule, error)
}
