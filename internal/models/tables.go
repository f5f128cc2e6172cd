// Package models defines the vendor records persisted in the local store.
package models

// Table names
const (
	TableUsers     = "users"
	TableOrders    = "orders"
	TableProducts  = "products"
	TableAnalytics = "analytics"
	TableTodos     = "todos"
)

// AllTables lists every table in declaration order
var AllTables = []string{TableUsers, TableOrders, TableProducts, TableAnalytics, TableTodos}
