package kpi

import "github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"

// CalculateGlobalPPM computes customer and supplier PPM over the whole input
// set from summed defects and summed deliveries.
func CalculateGlobalPPM(complaints []domain.Complaint, deliveries []domain.Delivery) domain.GlobalPpm {
	var custDefects, suppDefects, custDeliveries, suppDeliveries float64
	for _, c := range complaints {
		switch c.NotificationType {
		case domain.TypeQ1:
			custDefects += c.DefectiveParts
		case domain.TypeQ2:
			suppDefects += c.DefectiveParts
		}
	}
	for _, d := range deliveries {
		switch d.Kind {
		case domain.DeliveryCustomer:
			custDeliveries += d.Quantity
		case domain.DeliverySupplier:
			suppDeliveries += d.Quantity
		}
	}
	return domain.GlobalPpm{
		CustomerPpm: PPM(custDefects, custDeliveries),
		SupplierPpm: PPM(suppDefects, suppDeliveries),
	}
}

// GlobalPPMFromKpis is CalculateGlobalPPM over already aggregated records. It
// sums numerators and denominators; per-site PPMs are never averaged.
func GlobalPPMFromKpis(kpis []domain.MonthlySiteKpi) domain.GlobalPpm {
	var custDefects, suppDefects, custDeliveries, suppDeliveries float64
	for _, k := range kpis {
		custDefects += k.CustomerDefectiveParts
		suppDefects += k.SupplierDefectiveParts
		custDeliveries += k.CustomerDeliveries
		suppDeliveries += k.SupplierDeliveries
	}
	return domain.GlobalPpm{
		CustomerPpm: PPM(custDefects, custDeliveries),
		SupplierPpm: PPM(suppDefects, suppDeliveries),
	}
}
