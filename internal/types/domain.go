// Package types holds the domain model and the cross-cutting value types
// shared by the data-access layer, the service layer and the HTTP handlers.
package types

import "strings"

// ProvisionalIDPrefix marks a Duty that has not been persisted yet. Clients
// mint ids with this prefix for rows they want inserted; the store never
// holds such an id.
const ProvisionalIDPrefix = "temp-"

// Duty is a named duty record. ID is a store-assigned UUID once persisted.
type Duty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IsProvisional reports whether the duty carries a client-minted id and must
// be inserted rather than updated.
func (d Duty) IsProvisional() bool {
	return strings.HasPrefix(d.ID, ProvisionalIDPrefix)
}
