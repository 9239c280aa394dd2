package receipt

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/gymshop/internal/domain/cart"
	"github.com/xenking/gymshop/internal/domain/product"
)

const instrumentationName = "github.com/xenking/gymshop/internal/domain/receipt"

// Catalog resolves product ids.
type Catalog interface {
	FindByID(id int) (product.Product, error)
}

// Options holds optional Service collaborators.
type Options struct {
	Notifier       Notifier
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.TracerProvider == nil {
		o.TracerProvider = tracenoop.NewTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = metricnoop.NewMeterProvider()
	}
}

// Service implements checkout and receipt lookup.
type Service struct {
	catalog  Catalog
	receipts Repository
	notifier Notifier
	now      func() time.Time

	tracer trace.Tracer
	issued metric.Int64Counter
}

// NewService creates a receipt Service.
func NewService(catalog Catalog, receipts Repository, opts Options) (*Service, error) {
	opts.setDefaults()

	issued, err := opts.MeterProvider.Meter(instrumentationName).Int64Counter(
		"storefront.receipts.issued",
		metric.WithDescription("Number of receipts issued by checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create receipts counter")
	}

	return &Service{
		catalog:  catalog,
		receipts: receipts,
		notifier: opts.Notifier,
		now:      time.Now,
		tracer:   opts.TracerProvider.Tracer(instrumentationName),
		issued:   issued,
	}, nil
}

// Checkout turns the ledger into a persisted receipt and clears the ledger.
//
// Unlike cart.Compute, every entry must resolve to a catalog product: an
// unknown id yields *ProductNotFoundError, nothing is stored and the ledger
// is left as it was.
func (s *Service) Checkout(ctx context.Context, l *cart.Ledger) (_ *Receipt, rerr error) {
	ctx, span := s.tracer.Start(ctx, "receipt.Checkout")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if l.Empty() {
		return nil, ErrEmptyCart
	}

	entries := l.Entries()
	items := make([]LineItem, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		p, err := s.catalog.FindByID(e.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: e.ProductID}
			}
			return nil, errors.Wrapf(err, "find product %d", e.ProductID)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  e.Quantity,
			UnitPrice: p.Price.Round(2),
		})
	}

	r := &Receipt{
		TotalPrice: total.Round(2),
		Date:       s.now().UTC(),
		Items:      items,
	}
	if err := s.receipts.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create receipt")
	}
	l.Clear()

	span.SetAttributes(
		attribute.Int64("receipt.id", r.ID),
		attribute.Int("receipt.items", len(r.Items)),
	)
	s.issued.Add(ctx, 1)

	lg := zctx.From(ctx)
	lg.Info("Receipt issued",
		zap.Int64("receipt_id", r.ID),
		zap.Stringer("total", r.TotalPrice),
		zap.Int("items", len(r.Items)),
	)

	if s.notifier != nil {
		if err := s.notifier.ReceiptIssued(ctx, r); err != nil {
			lg.Warn("Receipt notification failed", zap.Int64("receipt_id", r.ID), zap.Error(err))
		}
	}

	return r, nil
}

// Lookup returns a previously persisted receipt or ErrNotFound.
func (s *Service) Lookup(ctx context.Context, id int64) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "receipt.Lookup",
		trace.WithAttributes(attribute.Int64("receipt.id", id)),
	)
	defer span.End()

	r, err := s.receipts.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, errors.Wrapf(err, "find receipt %d", id)
	}
	return r, nil
}
