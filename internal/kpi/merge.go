package kpi

import "github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"

// Merge combines KPI sets keyed by (month, site). An incoming record replaces
// the existing one as a whole; existing keys without an incoming record are
// kept. Within incoming, the later record of a duplicated key wins.
func Merge(existing, incoming []domain.MonthlySiteKpi) []domain.MonthlySiteKpi {
	byKey := make(map[domain.KpiKey]domain.MonthlySiteKpi, len(existing)+len(incoming))
	for _, k := range existing {
		byKey[k.Key()] = k
	}
	for _, k := range incoming {
		byKey[k.Key()] = k
	}
	out := make([]domain.MonthlySiteKpi, 0, len(byKey))
	for _, k := range byKey {
		out = append(out, k)
	}
	Sort(out)
	return out
}

// ApplyCorrections replaces complaints by id with their corrected copies.
// Corrections with an unknown id are appended; corrections carrying an invalid
// notification type are rejected. The category of every accepted correction is
// re-derived from its type.
func ApplyCorrections(complaints, corrections []domain.Complaint) (merged, rejected []domain.Complaint) {
	index := make(map[string]int, len(complaints))
	merged = make([]domain.Complaint, len(complaints))
	copy(merged, complaints)
	for i, c := range merged {
		if c.ID != "" {
			index[c.ID] = i
		}
	}

	for _, fix := range corrections {
		if fix.ID == "" || !fix.NotificationType.Valid() {
			rejected = append(rejected, fix)
			continue
		}
		fix.Category = fix.NotificationType.Category()
		if i, ok := index[fix.ID]; ok {
			merged[i] = fix
			continue
		}
		index[fix.ID] = len(merged)
		merged = append(merged, fix)
	}
	return merged, rejected
}
