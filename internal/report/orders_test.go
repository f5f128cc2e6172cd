package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func TestWriteOrders(t *testing.T) {
	created := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: "order_1", UserID: "u1", Customer: "Sarah Johnson", Amount: decimal.RequireFromString("45.99"), Status: models.OrderStatusPending, Date: datatypes.Date(created), Items: 3},
		{ID: "order_2", UserID: "u1", Customer: "Mike Chen", Amount: decimal.RequireFromString("128.5"), Status: models.OrderStatusCompleted, Date: datatypes.Date(created), Items: 1},
	}
	for i := range orders {
		orders[i].Stamp(created)
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteOrders(&buf, orders))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.OrdersSheet}, f.GetSheetList())

	rows, err := f.GetRows(report.OrdersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Order", "Customer", "Amount", "Status", "Date", "Items", "Created"}, rows[0])
	assert.Equal(t, []string{"order_1", "Sarah Johnson", "45.99", "Pending", "2026-01-15", "3", "2026-01-15T09:30:00Z"}, rows[1])
	assert.Equal(t, "Mike Chen", rows[2][1])
	assert.Equal(t, "Total", rows[3][0])

	formula, err := f.GetCellFormula(report.OrdersSheet, "C4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(C2:C3)", formula)
}

func TestWriteOrdersEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteOrders(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.OrdersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][0])
}
