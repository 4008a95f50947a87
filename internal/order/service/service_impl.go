package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/spinmill/milltrack/internal/order/domain"
	"github.com/spinmill/milltrack/pkg/repository"
	"github.com/spinmill/milltrack/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	orderrepo repository.Repository[orderdomain.Order]
}

func NewService(p ServiceParam) orderdomain.Service {
	return &Service{
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		orderrepo: repository.ProvideStore[orderdomain.Order](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (*orderdomain.Order, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, orderdomain.ErrInvalidOrganization
	}

	orderNumber := strings.TrimSpace(req.OrderNumber)
	if orderNumber == "" {
		return nil, orderdomain.ErrInvalidOrderNumber
	}
	if req.Realisation < 0 {
		return nil, orderdomain.ErrInvalidRealisation
	}

	order := &orderdomain.Order{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		OrderNumber: orderNumber,
		ShadeName:   strings.TrimSpace(req.ShadeName),
		Realisation: req.Realisation,
		Count:       strings.TrimSpace(req.Count),
		Hank:        strings.TrimSpace(req.Hank),
		Status:      orderdomain.StatusOpen,
	}
	if err := s.orderrepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
	)
	return order, nil
}

// ListWithRealisation returns the open orders of the tenant in the shape
// the entry flow consumes for its order picker and default specs.
func (s *Service) ListWithRealisation(ctx context.Context) ([]orderdomain.OrderWithRealisation, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, orderdomain.ErrInvalidOrganization
	}

	orders, err := s.orderrepo.Find(ctx,
		&orderdomain.Order{OrgID: orgID, Status: orderdomain.StatusOpen},
		repository.OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]orderdomain.OrderWithRealisation, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderdomain.OrderWithRealisation{
			ID:          order.ID.String(),
			OrderNumber: order.OrderNumber,
			Shade:       orderdomain.Shade{ShadeName: order.ShadeName},
			Realisation: order.Realisation,
			Count:       order.Count,
			Hank:        order.Hank,
		})
	}
	return out, nil
}
