package api

import (
	"bytes"

	"github.com/jimdaga/vendorhub/internal/models"
)

// SetOrdersWorkbook swaps the workbook renderer and returns a restore func
func SetOrdersWorkbook(fn func([]models.Order) (*bytes.Buffer, error)) (restore func()) {
	prev := buildOrdersWorkbook
	buildOrdersWorkbook = fn
	return func() { buildOrdersWorkbook = prev }
}
