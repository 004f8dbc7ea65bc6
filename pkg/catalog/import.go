package catalog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/models"
	"gitlab.connectwisedev.com/catalog-service/pkg/cache"
)

// ImportRow is one parsed create payload and the source line it came from.
type ImportRow struct {
	Line    int
	Product models.NewProduct
}

// ImportFailure records a row that was not created.
type ImportFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Created []models.Product
	Failed  []ImportFailure
}

// ImportProducts creates each row independently; a bad row is recorded and
// skipped. The collection key is dropped once at the end if anything was created.
func (s *Service) ImportProducts(ctx context.Context, rows []ImportRow) ImportResult {
	ctx, span := s.tracer.Start(ctx, "catalog.ImportProducts")
	defer span.End()

	res := ImportResult{Created: []models.Product{}}
	for _, row := range rows {
		if err := s.validateNewProduct(row.Product); err != nil {
			res.Failed = append(res.Failed, ImportFailure{Line: row.Line, Reason: Message(err)})
			continue
		}
		np := row.Product
		p, err := observe(s, "create_product", func() (models.Product, error) {
			return s.store.CreateProduct(ctx, np)
		})
		if err != nil {
			s.logger.Error("failed to import product",
				zap.Int("line", row.Line),
				zap.String("name", np.Name),
				zap.Error(err),
			)
			res.Failed = append(res.Failed, ImportFailure{Line: row.Line, Reason: "failed to create product"})
			continue
		}
		res.Created = append(res.Created, p)
	}

	span.SetAttributes(
		attribute.Int("import.created", len(res.Created)),
		attribute.Int("import.failed", len(res.Failed)),
	)
	if len(res.Created) > 0 {
		s.invalidate(ctx, "import_products", cache.CollectionKey())
	}
	return res
}
