package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	proddomain "github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/pkg/db"
	"github.com/spinmill/milltrack/pkg/repository"
	"github.com/spinmill/milltrack/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	dayrepo repository.Repository[proddomain.ProductionDay]
	rowrepo repository.Repository[proddomain.ProductionRow]
}

func NewService(p ServiceParam) proddomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("production.service"),
		genID:   p.GenID,
		dayrepo: repository.ProvideStore[proddomain.ProductionDay](p.DB),
		rowrepo: repository.ProvideStore[proddomain.ProductionRow](p.DB),
	}
}

// GetByDate reads a stored day back in wire form. A missing day is a
// valid non-error state: the caller starts a fresh entry.
func (s *Service) GetByDate(ctx context.Context, date string) (*proddomain.DayProduction, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, proddomain.ErrInvalidOrganization
	}
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	day, err := s.dayrepo.FindOne(ctx, &proddomain.ProductionDay{OrgID: orgID, Date: normalized})
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, nil
	}

	rows, err := s.rowrepo.Find(ctx, &proddomain.ProductionRow{OrgID: orgID, DayID: day.ID})
	if err != nil {
		return nil, err
	}

	sections := make(map[proddomain.SectionID][]proddomain.FlatRecord)
	for _, row := range rows {
		sections[row.Section] = append(sections[row.Section], row.Flat())
	}

	return &proddomain.DayProduction{
		Date:           day.Date,
		SelectedOrders: day.SelectedOrders,
		Sections:       sections,
		Total:          day.TotalKG,
	}, nil
}

// Create persists the day header and every section row in one
// transaction. A second submit for the same (org, date) is a conflict.
func (s *Service) Create(ctx context.Context, req proddomain.SubmitRequest) (*proddomain.ProductionDay, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, proddomain.ErrInvalidOrganization
	}
	normalized, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	day := &proddomain.ProductionDay{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		Date:           normalized,
		SelectedOrders: datatypes.NewJSONSlice(req.SelectedOrders),
		TotalKG:        req.Total,
	}

	rows := make([]*proddomain.ProductionRow, 0)
	for _, section := range req.Sections() {
		for _, flat := range section.Rows {
			rows = append(rows, &proddomain.ProductionRow{
				ID:           s.genID.Generate(),
				OrgID:        orgID,
				DayID:        day.ID,
				Section:      section.Section,
				Machine:      flat.Machine,
				Shift:        flat.Shift,
				OrderID:      flat.OrderID,
				ProductionKG: flat.ProductionKG,
				Count:        flat.Count,
				Hank:         flat.Hank,
			})
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.dayrepo.WithTrx(tx).Create(ctx, day); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return proddomain.ErrDayExists
			}
			return err
		}
		return s.rowrepo.WithTrx(tx).BatchCreate(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("production day persisted",
		zap.String("day_id", day.ID.String()),
		zap.String("date", day.Date),
		zap.Float64("total_kg", day.TotalKG),
		zap.Int("rows", len(rows)),
	)
	return day, nil
}

// ListDays returns recent day headers, newest first.
func (s *Service) ListDays(ctx context.Context, req proddomain.ListDaysRequest) ([]proddomain.DaySummary, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, proddomain.ErrInvalidOrganization
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	days, err := s.dayrepo.Find(ctx,
		&proddomain.ProductionDay{OrgID: orgID},
		repository.OrderBy("date DESC"),
		repository.Limit(limit),
	)
	if err != nil {
		return nil, err
	}

	out := make([]proddomain.DaySummary, 0, len(days))
	for _, day := range days {
		out = append(out, proddomain.DaySummary{
			ID:        day.ID.String(),
			Date:      day.Date,
			TotalKG:   day.TotalKG,
			CreatedAt: day.CreatedAt,
		})
	}
	return out, nil
}

func normalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", proddomain.ErrInvalidDate
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return "", proddomain.ErrInvalidDate
	}
	return parsed.Format(dateLayout), nil
}
