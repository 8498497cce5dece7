package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part representa un repuesto (SKU). Datos maestros inmutables, cargados externamente.
type Part struct {
	ID           string
	Code         string
	Description  string
	Cost         decimal.Decimal // costo promedio ponderado
	ReorderPoint int64           // 0 = sin punto de reorden
	CreatedAt    time.Time
}
