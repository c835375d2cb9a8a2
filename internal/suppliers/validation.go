package suppliers

import (
	"fmt"
	"strings"

	"github.com/prime-apparel/backend/internal/shared"
)

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	if sup.Category != "" && !sup.Category.Valid() {
		return fmt.Errorf("%w: unknown supplier category %q", shared.ErrValidation, sup.Category)
	}
	return nil
}
