package client

import (
	"context"

	"smartcite/models"
)

// CategoryProvider publishes the read-only category reference data.
// Categories are role-independent: everyone fetches the full list.
type CategoryProvider struct {
	*Provider[models.Category]
}

func NewCategoryProvider(ctx context.Context, session *Session, cache Cache, gw Gateway) *CategoryProvider {
	return &CategoryProvider{
		Provider: newProvider(ctx, CategoriesKey, session, cache, gw.ListCategories),
	}
}

// Find resolves a category by ID from the published collection.
func (p *CategoryProvider) Find(id string) (models.Category, bool) {
	for _, category := range p.Items() {
		if category.ID.Hex() == id {
			return category, true
		}
	}
	return models.Category{}, false
}
