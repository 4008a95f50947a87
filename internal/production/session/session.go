// Package session holds open production-entry sessions: one per tenant
// and date, mutated through section-scoped operations and finalized by a
// submit that re-validates everything before touching persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/spinmill/milltrack/internal/clock"
	"github.com/spinmill/milltrack/internal/metrics"
	"github.com/spinmill/milltrack/internal/millconfig"
	"github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var (
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrMissingDate         = errors.New("missing_date")
	ErrFutureDate          = errors.New("future_date")
	ErrNoSelectedOrders    = errors.New("no_selected_orders")
	ErrInvalidOrganization = errors.New("invalid_organization")
)

// UnsavedSectionsError blocks submit while sections are pending commit.
type UnsavedSectionsError struct {
	Sections []domain.SectionID `json:"sections"`
}

func (e *UnsavedSectionsError) Error() string {
	names := make([]string, 0, len(e.Sections))
	for _, id := range e.Sections {
		names = append(names, string(id))
	}
	return "unsaved_sections: " + strings.Join(names, ", ")
}

// EntrySession is one open entry flow for a (tenant, date) pair.
type EntrySession struct {
	ID        string            `json:"id"`
	OrgID     snowflake.ID      `json:"org_id"`
	CreatedAt time.Time         `json:"created_at"`
	Aggregate *domain.Aggregate `json:"aggregate"`
}

// Snapshot is the read view handed to callers: a deep copy plus the
// recomputed running total.
type Snapshot struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Aggregate *domain.Aggregate `json:"aggregate"`
	Total     float64           `json:"total"`
	AllSaved  bool              `json:"allSaved"`
}

type OpenRequest struct {
	Date           string   `json:"date"`
	SelectedOrders []string `json:"selectedOrders"`
}

// SubmitAck acknowledges a persisted day.
type SubmitAck struct {
	DayID string  `json:"day_id"`
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type ManagerParam struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Mill    *millconfig.Holder
	Prod    domain.Service
	Mirror  *Mirror
	Metrics *metrics.Metrics `optional:"true"`
}

// Manager owns every open session. HTTP handlers run concurrently, so all
// access goes through one lock; sessions are few (one per tenant-date)
// and operations are in-memory.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*EntrySession
	byDate   map[string]string // org:date -> session id

	log     *zap.Logger
	clock   clock.Clock
	mill    *millconfig.Holder
	prod    domain.Service
	mirror  *Mirror
	metrics *metrics.Metrics
}

func NewManager(p ManagerParam) *Manager {
	return &Manager{
		sessions: make(map[string]*EntrySession),
		byDate:   make(map[string]string),
		log:      p.Log.Named("production.session"),
		clock:    p.Clock,
		mill:     p.Mill,
		prod:     p.Prod,
		mirror:   p.Mirror,
		metrics:  p.Metrics,
	}
}

// Open starts (or resumes) the entry session for a date. If the date has
// already been submitted, the stored day hydrates the fresh aggregate for
// review.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*Snapshot, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, ErrInvalidOrganization
	}
	date, err := m.checkDate(req.Date)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := dateKey(orgID, date)
	if id, ok := m.byDate[key]; ok {
		if sess, ok := m.sessions[id]; ok {
			return m.snapshot(sess), nil
		}
	}

	agg := domain.NewAggregate(date, m.mill.Counts())
	agg.SetSelectedOrders(req.SelectedOrders)

	day, err := m.prod.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	agg.Hydrate(day)

	sess := &EntrySession{
		ID:        ulid.Make().String(),
		OrgID:     orgID,
		CreatedAt: m.clock.Now(),
		Aggregate: agg,
	}
	m.sessions[sess.ID] = sess
	m.byDate[key] = sess.ID
	m.mirrorStore(ctx, sess)

	if m.metrics != nil {
		m.metrics.SessionsOpenedTotal.Inc()
	}
	m.log.Info("entry session opened",
		zap.String("session_id", sess.ID),
		zap.String("date", date),
		zap.Bool("hydrated", day != nil),
	)
	return m.snapshot(sess), nil
}

// Get returns the current session state, restoring from the mirror when
// the in-memory copy was lost to a restart.
func (m *Manager) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.snapshot(sess), nil
}

// UpdateSection replaces a non-spinning section's entries wholesale.
func (m *Manager) UpdateSection(ctx context.Context, id string, section domain.SectionID, entries []domain.MachineShiftEntry) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Aggregate.SetSection(section, entries); err != nil {
		return nil, err
	}
	m.mirrorStore(ctx, sess)
	return m.snapshot(sess), nil
}

// UpdateSpinning replaces the spinning section's entries wholesale.
func (m *Manager) UpdateSpinning(ctx context.Context, id string, entries []domain.SpinningEntry) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Aggregate.SetSpinning(entries)
	m.mirrorStore(ctx, sess)
	return m.snapshot(sess), nil
}

// SetOrders replaces the set of sales orders the day is logged against.
func (m *Manager) SetOrders(ctx context.Context, id string, orders []string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Aggregate.SetSelectedOrders(orders)
	m.mirrorStore(ctx, sess)
	return m.snapshot(sess), nil
}

// SaveSection validates and commits one section.
func (m *Manager) SaveSection(ctx context.Context, id string, section domain.SectionID) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Aggregate.SaveSection(section); err != nil {
		return nil, err
	}
	if m.metrics != nil {
		m.metrics.SectionSavesTotal.WithLabelValues(string(section)).Inc()
	}
	m.mirrorStore(ctx, sess)
	return m.snapshot(sess), nil
}

// ResetSection rolls one section back to its empty default.
func (m *Manager) ResetSection(ctx context.Context, id string, section domain.SectionID) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Aggregate.ResetSection(section); err != nil {
		return nil, err
	}
	m.mirrorStore(ctx, sess)
	return m.snapshot(sess), nil
}

// ResetAll resets every section's flag and contents.
func (m *Manager) ResetAll(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Aggregate.ResetAll()
	m.mirrorStore(ctx, sess)
	return m.snapshot(sess), nil
}

// Submit re-checks every precondition, flattens the aggregate into one
// write payload and hands it to persistence. A persistence failure leaves
// the session untouched so the operator can retry; success resets it.
func (m *Manager) Submit(ctx context.Context, id string) (*SubmitAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	agg := sess.Aggregate

	if err := m.checkPreconditions(agg); err != nil {
		m.countSubmitFailure()
		return nil, err
	}

	req := agg.Flatten()
	day, err := m.prod.Create(ctx, req)
	if err != nil {
		m.countSubmitFailure()
		return nil, err
	}

	agg.ResetAll()
	agg.SetSelectedOrders(nil)
	m.mirrorDelete(ctx, sess)
	delete(m.sessions, sess.ID)
	delete(m.byDate, dateKey(sess.OrgID, req.Date))

	if m.metrics != nil {
		m.metrics.SubmitsTotal.Inc()
	}
	m.log.Info("production day submitted",
		zap.String("session_id", sess.ID),
		zap.String("date", req.Date),
		zap.Float64("total_kg", req.Total),
	)
	return &SubmitAck{DayID: day.ID.String(), Date: req.Date, Total: req.Total}, nil
}

func (m *Manager) checkPreconditions(agg *domain.Aggregate) error {
	if _, err := m.checkDate(agg.Date); err != nil {
		return err
	}
	if len(agg.SelectedOrders) == 0 {
		return ErrNoSelectedOrders
	}
	if pending := agg.UnsavedSections(); len(pending) > 0 {
		return &UnsavedSectionsError{Sections: pending}
	}
	// saved flags can drift from contents; re-validate everything
	return agg.ValidateAll()
}

func (m *Manager) checkDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrMissingDate
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return "", domain.ErrInvalidDate
	}
	today := m.clock.Now().UTC().Truncate(24 * time.Hour)
	if parsed.After(today) {
		return "", ErrFutureDate
	}
	return parsed.Format(dateLayout), nil
}

func (m *Manager) lookup(ctx context.Context, id string) (*EntrySession, error) {
	orgID, ok := tenantctx.OrgID(ctx)
	if !ok {
		return nil, ErrInvalidOrganization
	}

	sess, ok := m.sessions[id]
	if !ok {
		restored := m.mirrorLoad(ctx, orgID, id)
		if restored == nil {
			return nil, ErrSessionNotFound
		}
		m.sessions[restored.ID] = restored
		m.byDate[dateKey(restored.OrgID, restored.Aggregate.Date)] = restored.ID
		sess = restored
	}
	if sess.OrgID != orgID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (m *Manager) snapshot(sess *EntrySession) *Snapshot {
	agg := sess.Aggregate.Clone()
	return &Snapshot{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Aggregate: agg,
		Total:     agg.Total(),
		AllSaved:  agg.AllSaved(),
	}
}

func (m *Manager) countSubmitFailure() {
	if m.metrics != nil {
		m.metrics.SubmitFailuresTotal.Inc()
	}
}

func (m *Manager) mirrorStore(ctx context.Context, sess *EntrySession) {
	if err := m.mirror.Store(ctx, sess); err != nil {
		m.log.Warn("session mirror write failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

func (m *Manager) mirrorDelete(ctx context.Context, sess *EntrySession) {
	if err := m.mirror.Delete(ctx, sess.OrgID, sess.ID); err != nil {
		m.log.Warn("session mirror delete failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

func (m *Manager) mirrorLoad(ctx context.Context, orgID snowflake.ID, id string) *EntrySession {
	sess, err := m.mirror.Load(ctx, orgID, id)
	if err != nil {
		m.log.Warn("session mirror read failed", zap.String("session_id", id), zap.Error(err))
		return nil
	}
	return sess
}

func dateKey(orgID snowflake.ID, date string) string {
	return fmt.Sprintf("%d:%s", orgID, date)
}
