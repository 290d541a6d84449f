package domain

import "strings"

// NotificationType is the QM notification sub-type code.
type NotificationType string

const (
	TypeQ1 NotificationType = "Q1"
	TypeQ2 NotificationType = "Q2"
	TypeQ3 NotificationType = "Q3"
	TypeD1 NotificationType = "D1"
	TypeD2 NotificationType = "D2"
	TypeD3 NotificationType = "D3"
	TypeP1 NotificationType = "P1"
	TypeP2 NotificationType = "P2"
	TypeP3 NotificationType = "P3"
)

// Category groups notification types for reporting.
type Category string

const (
	CategoryCustomer  Category = "customer"
	CategorySupplier  Category = "supplier"
	CategoryInternal  Category = "internal"
	CategoryDeviation Category = "deviation"
	CategoryPPAP      Category = "ppap"
)

// Family is the leading letter of a notification type (Q, D or P).
type Family byte

const (
	FamilyComplaint Family = 'Q'
	FamilyDeviation Family = 'D'
	FamilyPPAP      Family = 'P'
)

var notificationCategories = map[NotificationType]Category{
	TypeQ1: CategoryCustomer,
	TypeQ2: CategorySupplier,
	TypeQ3: CategoryInternal,
	TypeD1: CategoryDeviation,
	TypeD2: CategoryDeviation,
	TypeD3: CategoryDeviation,
	TypeP1: CategoryPPAP,
	TypeP2: CategoryPPAP,
	TypeP3: CategoryPPAP,
}

// AllNotificationTypes lists the nine valid codes in display order.
var AllNotificationTypes = []NotificationType{
	TypeQ1, TypeQ2, TypeQ3,
	TypeD1, TypeD2, TypeD3,
	TypeP1, TypeP2, TypeP3,
}

// Valid reports whether t is one of the nine defined codes.
func (t NotificationType) Valid() bool {
	_, ok := notificationCategories[t]
	return ok
}

// Category returns the fixed category of the type, or "" for an invalid type.
func (t NotificationType) Category() Category {
	return notificationCategories[t]
}

// Family returns the type family letter.
func (t NotificationType) Family() Family {
	if len(t) == 0 {
		return 0
	}
	return Family(t[0])
}

// ParseNotificationType accepts an exact code such as "q2" or " Q2 ".
func ParseNotificationType(s string) (NotificationType, bool) {
	t := NotificationType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Default returns the documented fallback sub-type of a family (sub-type 1).
func (f Family) Default() NotificationType {
	switch f {
	case FamilyComplaint:
		return TypeQ1
	case FamilyDeviation:
		return TypeD1
	case FamilyPPAP:
		return TypeP1
	}
	return ""
}

func (f Family) String() string {
	return string(rune(f))
}
