package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	proddomain "github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) proddomain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&proddomain.ProductionDay{}, &proddomain.ProductionRow{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParam{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
	})
}

// A single shared node keeps sequential Generate calls unique even
// within the same millisecond, so every context gets a distinct org.
var testOrgNode, testOrgNodeErr = snowflake.NewNode(2)

func testOrgContext(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, testOrgNodeErr)
	return tenantctx.WithOrgID(context.Background(), testOrgNode.Generate())
}

func sampleRequest() proddomain.SubmitRequest {
	return proddomain.SubmitRequest{
		Date:           "2024-03-01",
		SelectedOrders: []string{"O1"},
		BlowRoom: []proddomain.FlatRecord{
			{Machine: "blowroom", Shift: "A", OrderID: "O1", ProductionKG: 100},
		},
		Spinning: []proddomain.FlatRecord{
			{Machine: "1", Shift: "A", OrderID: "O1", ProductionKG: 20, Count: "30s", Hank: "4.2"},
			{Machine: "1", Shift: "B", ProductionKG: 0, Count: "30s", Hank: "4.2"},
		},
		Total: 120,
	}
}

func TestCreateAndGetByDate(t *testing.T) {
	svc := newTestService(t)
	ctx := testOrgContext(t)

	day, err := svc.Create(ctx, sampleRequest())
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, "2024-03-01", day.Date)
	assert.Equal(t, 120.0, day.TotalKG)

	got, err := svc.GetByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"O1"}, got.SelectedOrders)
	assert.Equal(t, 120.0, got.Total)

	require.Len(t, got.Sections[proddomain.SectionBlowRoom], 1)
	assert.Equal(t, 100.0, got.Sections[proddomain.SectionBlowRoom][0].ProductionKG)

	spinning := got.Sections[proddomain.SectionSpinning]
	require.Len(t, spinning, 2)
	// zero-quantity metadata rows survive the round trip
	assert.Equal(t, "30s", spinning[1].Count)
	assert.Zero(t, spinning[1].ProductionKG)
}

func TestGetByDate_AbsenceIsNotAnError(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GetByDate(testOrgContext(t), "2024-03-01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreate_DuplicateDayConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := testOrgContext(t)

	_, err := svc.Create(ctx, sampleRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, sampleRequest())
	assert.ErrorIs(t, err, proddomain.ErrDayExists)
}

func TestCreate_InvalidDate(t *testing.T) {
	svc := newTestService(t)

	req := sampleRequest()
	req.Date = "01-03-2024"
	_, err := svc.Create(testOrgContext(t), req)
	assert.ErrorIs(t, err, proddomain.ErrInvalidDate)
}

func TestCreate_RequiresOrganization(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, proddomain.ErrInvalidOrganization)
}

func TestTenantIsolation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(testOrgContext(t), sampleRequest())
	require.NoError(t, err)

	// a different org sees nothing for the same date
	got, err := svc.GetByDate(testOrgContext(t), "2024-03-01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListDays(t *testing.T) {
	svc := newTestService(t)
	ctx := testOrgContext(t)

	first := sampleRequest()
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := sampleRequest()
	second.Date = "2024-03-02"
	second.Total = 80
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	days, err := svc.ListDays(ctx, proddomain.ListDaysRequest{})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-02", days[0].Date)
	assert.Equal(t, 80.0, days[0].TotalKG)
	assert.Equal(t, "2024-03-01", days[1].Date)
}
