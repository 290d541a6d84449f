package domain

import (
	"strings"
	"time"
)

// Deviation is a D1–D3 notification.
type Deviation struct {
	ID                 string           `json:"id"`
	NotificationNumber string           `json:"notificationNumber"`
	NotificationType   NotificationType `json:"notificationType"`
	PlantCode          string           `json:"plantCode"`
	SiteName           string           `json:"siteName,omitempty"`
	CreatedOn          time.Time        `json:"createdOn"`
	Status             string           `json:"status,omitempty"`
	Description        string           `json:"description,omitempty"`
	MaterialNumber     string           `json:"materialNumber,omitempty"`
}

// PPAPStatus is the approval progress of a PPAP notification.
type PPAPStatus string

const (
	PPAPInProgress PPAPStatus = "in_progress"
	PPAPCompleted  PPAPStatus = "completed"
)

// PPAPNotification is a P1–P3 notification.
type PPAPNotification struct {
	ID                 string           `json:"id"`
	NotificationNumber string           `json:"notificationNumber"`
	NotificationType   NotificationType `json:"notificationType"`
	PlantCode          string           `json:"plantCode"`
	SiteName           string           `json:"siteName,omitempty"`
	CreatedOn          time.Time        `json:"createdOn"`
	Status             PPAPStatus       `json:"status"`
	MaterialNumber     string           `json:"materialNumber,omitempty"`
	Supplier           string           `json:"supplier,omitempty"`
}

var completedStatuses = []string{"noco", "completed", "complete", "closed", "abgeschlossen", "approved", "freigegeben", "erledigt", "done"}

// ParsePPAPStatus classifies a PPAP notification. A completion date or a
// closing status ("NOCO", "Completed", "Approved", ...) means completed;
// everything else is in progress.
func ParsePPAPStatus(status string, hasCompletionDate bool) PPAPStatus {
	if hasCompletionDate {
		return PPAPCompleted
	}
	s := strings.ToLower(status)
	// "not completed", "nicht freigegeben"
	if strings.Contains(s, "not ") || strings.Contains(s, "nicht") || strings.Contains(s, "open") {
		return PPAPInProgress
	}
	for _, w := range completedStatuses {
		if strings.Contains(s, w) {
			return PPAPCompleted
		}
	}
	return PPAPInProgress
}
