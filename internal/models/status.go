package models

import "fmt"

type PropertyStatus string

const (
	PropertyStatusOpen             PropertyStatus = "open"
	PropertyStatusReserved         PropertyStatus = "reserved"
	PropertyStatusClosed           PropertyStatus = "closed"
	PropertyStatusUnderMaintenance PropertyStatus = "under_maintenance"
	PropertyStatusLeased           PropertyStatus = "leased"
	PropertyStatusSold             PropertyStatus = "sold"
)

var propertyStatuses = []PropertyStatus{
	PropertyStatusOpen,
	PropertyStatusReserved,
	PropertyStatusClosed,
	PropertyStatusUnderMaintenance,
	PropertyStatusLeased,
	PropertyStatusSold,
}

// Valid reports whether s is one of the known property statuses.
func (s PropertyStatus) Valid() bool {
	for _, known := range propertyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParsePropertyStatus converts a raw string into a PropertyStatus.
func ParsePropertyStatus(raw string) (PropertyStatus, error) {
	s := PropertyStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid property status: %q", raw)
	}
	return s, nil
}

type TenantStatus string

const (
	// TenantStatusNone is the status of a freshly registered tenant.
	TenantStatusNone     TenantStatus = ""
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
	TenantStatusPending  TenantStatus = "pending"
)

func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusNone, TenantStatusActive, TenantStatusInactive, TenantStatusPending:
		return true
	}
	return false
}

type LeaseStatus string

const (
	LeaseStatusActive  LeaseStatus = "active"
	LeaseStatusExpired LeaseStatus = "expired"
)

// TransitionTable lists, per current state, the states it may move to.
// A nil table allows every transition.
type TransitionTable[S ~string] map[S][]S

// Allows reports whether the table permits from -> to.
func (t TransitionTable[S]) Allows(from, to S) bool {
	if t == nil {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Permissive tables keep the historical behaviour where callers decide legality.
var (
	PermissivePropertyTransitions TransitionTable[PropertyStatus]
	PermissiveTenantTransitions   TransitionTable[TenantStatus]
)

// StrictPropertyTransitions encodes the moves the lifecycle workflows actually make.
var StrictPropertyTransitions = TransitionTable[PropertyStatus]{
	PropertyStatusOpen: {
		PropertyStatusReserved,
		PropertyStatusUnderMaintenance,
		PropertyStatusClosed,
		PropertyStatusSold,
		PropertyStatusOpen,
	},
	PropertyStatusReserved: {
		PropertyStatusLeased,
		PropertyStatusUnderMaintenance,
		PropertyStatusOpen,
		PropertyStatusReserved,
	},
	PropertyStatusLeased: {
		PropertyStatusUnderMaintenance,
		PropertyStatusOpen,
		PropertyStatusLeased,
	},
	PropertyStatusClosed: {
		PropertyStatusOpen,
		PropertyStatusUnderMaintenance,
		PropertyStatusSold,
		PropertyStatusClosed,
	},
	PropertyStatusUnderMaintenance: {
		PropertyStatusOpen,
		PropertyStatusReserved,
		PropertyStatusLeased,
		PropertyStatusClosed,
		PropertyStatusSold,
		PropertyStatusUnderMaintenance,
	},
	PropertyStatusSold: {
		PropertyStatusOpen,
		PropertyStatusSold,
	},
}

var StrictTenantTransitions = TransitionTable[TenantStatus]{
	TenantStatusNone:     {TenantStatusActive, TenantStatusPending, TenantStatusInactive},
	TenantStatusActive:   {TenantStatusActive, TenantStatusPending, TenantStatusInactive},
	TenantStatusPending:  {TenantStatusActive, TenantStatusPending, TenantStatusInactive},
	TenantStatusInactive: {TenantStatusActive, TenantStatusInactive, TenantStatusPending},
}

// LeaseTransitions is always enforced: an expired lease never becomes active again.
var LeaseTransitions = TransitionTable[LeaseStatus]{
	LeaseStatusActive:  {LeaseStatusActive, LeaseStatusExpired},
	LeaseStatusExpired: {LeaseStatusExpired},
}
