package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spinmill/milltrack/internal/clock"
	"github.com/spinmill/milltrack/internal/millconfig"
	"github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Mocks --

type prodMock struct {
	mock.Mock
}

func (m *prodMock) GetByDate(ctx context.Context, date string) (*domain.DayProduction, error) {
	args := m.Called(ctx, date)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*domain.DayProduction), args.Error(1)
}

func (m *prodMock) Create(ctx context.Context, req domain.SubmitRequest) (*domain.ProductionDay, error) {
	args := m.Called(ctx, req)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*domain.ProductionDay), args.Error(1)
}

func (m *prodMock) ListDays(context.Context, domain.ListDaysRequest) ([]domain.DaySummary, error) {
	return nil, nil
}

func newTestManager(prod domain.Service) (*Manager, *clock.FakeClock) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	return NewManager(ManagerParam{
		Log:    zap.NewNop(),
		Clock:  fake,
		Mill:   millconfig.NewStaticHolder(domain.DefaultMachineCounts()),
		Prod:   prod,
		Mirror: &Mirror{},
	}), fake
}

// A single shared node keeps sequential Generate calls unique even
// within the same millisecond, so every context gets a distinct org.
var orgNode, orgNodeErr = snowflake.NewNode(1)

func orgContext(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, orgNodeErr)
	return tenantctx.WithOrgID(context.Background(), orgNode.Generate())
}

func saveAll(t *testing.T, m *Manager, ctx context.Context, id string) {
	t.Helper()
	for _, section := range domain.SectionOrder {
		_, err := m.SaveSection(ctx, id, section)
		require.NoError(t, err, "saving %s", section)
	}
}

// -- Tests --

func TestOpen_DatePreconditions(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr error
	}{
		{name: "missing date", date: "", wantErr: ErrMissingDate},
		{name: "malformed date", date: "03/01/2024", wantErr: domain.ErrInvalidDate},
		{name: "future date", date: "2024-03-05", wantErr: ErrFutureDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prod := new(prodMock)
			m, _ := newTestManager(prod)

			_, err := m.Open(orgContext(t), OpenRequest{Date: tt.date})
			assert.ErrorIs(t, err, tt.wantErr)
			prod.AssertNotCalled(t, "GetByDate")
		})
	}
}

func TestOpen_FreshAndIdempotent(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil).Once()
	m, _ := newTestManager(prod)
	ctx := orgContext(t)

	snap, err := m.Open(ctx, OpenRequest{Date: "2024-03-01", SelectedOrders: []string{"O1"}})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Len(t, snap.Aggregate.Carding, 8)
	assert.Len(t, snap.Aggregate.Spinning, 13)
	assert.Zero(t, snap.Total)
	assert.False(t, snap.AllSaved)

	// reopening the same date resumes the session instead of creating one
	again, err := m.Open(ctx, OpenRequest{Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, snap.ID, again.ID)
	prod.AssertExpectations(t)
}

func TestOpen_HydratesStoredDay(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(&domain.DayProduction{
		Date:           "2024-03-01",
		SelectedOrders: []string{"O7"},
		Sections: map[domain.SectionID][]domain.FlatRecord{
			domain.SectionBlowRoom: {{Machine: "blowroom", Shift: "A", OrderID: "O7", ProductionKG: 80}},
		},
	}, nil)
	m, _ := newTestManager(prod)

	snap, err := m.Open(orgContext(t), OpenRequest{Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"O7"}, snap.Aggregate.SelectedOrders)
	assert.Equal(t, 80.0, snap.Aggregate.BlowRoom.Shift1)
	assert.Equal(t, 80.0, snap.Total)
}

func TestSubmit_HappyPath(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil)
	m, _ := newTestManager(prod)
	ctx := orgContext(t)

	snap, err := m.Open(ctx, OpenRequest{Date: "2024-03-01", SelectedOrders: []string{"O1"}})
	require.NoError(t, err)

	_, err = m.UpdateSection(ctx, snap.ID, domain.SectionBlowRoom, []domain.MachineShiftEntry{
		{Shift1: 100, Shift1OrderID: "O1"},
	})
	require.NoError(t, err)
	saveAll(t, m, ctx, snap.ID)

	node, _ := snowflake.NewNode(2)
	dayID := node.Generate()
	prod.On("Create", mock.Anything, mock.MatchedBy(func(req domain.SubmitRequest) bool {
		return req.Date == "2024-03-01" &&
			len(req.SelectedOrders) == 1 && req.SelectedOrders[0] == "O1" &&
			len(req.BlowRoom) == 1 &&
			req.BlowRoom[0].Shift == "A" &&
			req.BlowRoom[0].ProductionKG == 100 &&
			req.BlowRoom[0].OrderID == "O1" &&
			req.Total == 100
	})).Return(&domain.ProductionDay{ID: dayID}, nil).Once()

	ack, err := m.Submit(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, dayID.String(), ack.DayID)
	assert.Equal(t, 100.0, ack.Total)

	// the session is discarded after a successful submit
	_, err = m.Get(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	prod.AssertExpectations(t)
}

func TestSubmit_BlockedByMissingOrder(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil)
	m, _ := newTestManager(prod)
	ctx := orgContext(t)

	snap, err := m.Open(ctx, OpenRequest{Date: "2024-03-01", SelectedOrders: []string{"O1"}})
	require.NoError(t, err)
	saveAll(t, m, ctx, snap.ID)

	// desync the saved flag: mutate carding after its save
	entries := make([]domain.MachineShiftEntry, 8)
	entries[0].Shift2 = 50
	_, err = m.UpdateSection(ctx, snap.ID, domain.SectionCarding, entries)
	require.NoError(t, err)

	_, err = m.Submit(ctx, snap.ID)
	var missing *domain.MissingOrderError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, &domain.MissingOrderError{
		Section:      domain.SectionCarding,
		MachineIndex: 0,
		Shift:        domain.Shift2,
	}, missing)
	prod.AssertNotCalled(t, "Create")
}

func TestSubmit_BlockedByPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(t *testing.T, m *Manager, ctx context.Context, id string)
		check   func(t *testing.T, err error)
	}{
		{
			name:    "unsaved sections",
			arrange: func(t *testing.T, m *Manager, ctx context.Context, id string) {},
			check: func(t *testing.T, err error) {
				var unsaved *UnsavedSectionsError
				require.ErrorAs(t, err, &unsaved)
				assert.Len(t, unsaved.Sections, len(domain.SectionOrder))
			},
		},
		{
			name: "no selected orders",
			arrange: func(t *testing.T, m *Manager, ctx context.Context, id string) {
				_, err := m.SetOrders(ctx, id, nil)
				require.NoError(t, err)
				saveAll(t, m, ctx, id)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoSelectedOrders)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prod := new(prodMock)
			prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil)
			m, _ := newTestManager(prod)
			ctx := orgContext(t)

			snap, err := m.Open(ctx, OpenRequest{Date: "2024-03-01", SelectedOrders: []string{"O1"}})
			require.NoError(t, err)
			tt.arrange(t, m, ctx, snap.ID)

			_, err = m.Submit(ctx, snap.ID)
			tt.check(t, err)
			prod.AssertNotCalled(t, "Create")
		})
	}
}

func TestSubmit_PersistenceFailureKeepsState(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil)
	m, _ := newTestManager(prod)
	ctx := orgContext(t)

	snap, err := m.Open(ctx, OpenRequest{Date: "2024-03-01", SelectedOrders: []string{"O1"}})
	require.NoError(t, err)
	_, err = m.UpdateSection(ctx, snap.ID, domain.SectionBlowRoom, []domain.MachineShiftEntry{
		{Shift1: 100, Shift1OrderID: "O1"},
	})
	require.NoError(t, err)
	saveAll(t, m, ctx, snap.ID)

	boom := errors.New("db down")
	prod.On("Create", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err = m.Submit(ctx, snap.ID)
	assert.ErrorIs(t, err, boom)

	// state preserved for retry
	got, err := m.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Total)
	assert.True(t, got.AllSaved)

	// retry succeeds
	node, _ := snowflake.NewNode(3)
	prod.On("Create", mock.Anything, mock.Anything).Return(&domain.ProductionDay{ID: node.Generate()}, nil).Once()
	_, err = m.Submit(ctx, snap.ID)
	assert.NoError(t, err)
	prod.AssertExpectations(t)
}

func TestResetSection_ViaManager(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil)
	m, _ := newTestManager(prod)
	ctx := orgContext(t)

	snap, err := m.Open(ctx, OpenRequest{Date: "2024-03-01", SelectedOrders: []string{"O1"}})
	require.NoError(t, err)

	_, err = m.UpdateSection(ctx, snap.ID, domain.SectionFraming, []domain.MachineShiftEntry{
		{Shift1: 10, Shift1OrderID: "O1"},
	})
	require.NoError(t, err)
	_, err = m.SaveSection(ctx, snap.ID, domain.SectionFraming)
	require.NoError(t, err)

	got, err := m.ResetSection(ctx, snap.ID, domain.SectionFraming)
	require.NoError(t, err)
	assert.False(t, got.Aggregate.Saved(domain.SectionFraming))
	assert.Zero(t, got.Total)
	assert.Len(t, got.Aggregate.Framing, domain.DefaultMachineCounts().Framing)
}

func TestLookup_TenantIsolation(t *testing.T) {
	prod := new(prodMock)
	prod.On("GetByDate", mock.Anything, "2024-03-01").Return(nil, nil)
	m, _ := newTestManager(prod)

	snap, err := m.Open(orgContext(t), OpenRequest{Date: "2024-03-01"})
	require.NoError(t, err)

	// another tenant cannot see the session
	_, err = m.Get(orgContext(t), snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// no tenant at all is rejected outright
	_, err = m.Get(context.Background(), snap.ID)
	assert.ErrorIs(t, err, ErrInvalidOrganization)
}
