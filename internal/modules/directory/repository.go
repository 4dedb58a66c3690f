package directory

import "context"

// Repository persists the directory. Provider order is the directory order:
// InsertProvider and InsertPhoto put the new record first.
type Repository interface {
	ListProviders(ctx context.Context) ([]*Provider, error)
	InsertProvider(ctx context.Context, p *Provider) error
	UpdateProvider(ctx context.Context, p *Provider) error
	DeleteProvider(ctx context.Context, id string) error

	InsertPhoto(ctx context.Context, providerID string, photo *Photo) error
	UpdatePhoto(ctx context.Context, providerID string, photo *Photo) error
	DeletePhoto(ctx context.Context, providerID, photoID string) error

	// ListTags returns nil when the catalog was never saved.
	ListTags(ctx context.Context, kind TagKind) ([]string, error)
	SaveTags(ctx context.Context, kind TagKind, tags []string) error

	// ReplaceAll swaps the whole directory in one transaction.
	ReplaceAll(ctx context.Context, providers []*Provider, zoneTags, productTags []string) error
}
