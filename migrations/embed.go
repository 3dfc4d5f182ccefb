// Package migrations holds the schema for the tables owned by the admin
// service. Order, plastic and profile tables belong to the storefront.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
