package domain

import "time"

// ConversionStatus describes the outcome of a unit conversion for review workflows.
type ConversionStatus string

const (
	ConversionNotApplicable  ConversionStatus = "not_applicable"
	ConversionConverted      ConversionStatus = "converted"
	ConversionNeedsAttention ConversionStatus = "needs_attention"
	ConversionFailed         ConversionStatus = "failed"
)

// ConversionResult records how a non-piece quantity was turned into pieces.
// ConvertedValue is nil when the conversion failed.
type ConversionResult struct {
	OriginalValue       float64          `json:"originalValue"`
	OriginalUnit        string           `json:"originalUnit"`
	ConvertedValue      *float64         `json:"convertedValue,omitempty"`
	WasConverted        bool             `json:"wasConverted"`
	MaterialDescription string           `json:"materialDescription,omitempty"`
	Status              ConversionStatus `json:"status"`
	Factor              float64          `json:"factor,omitempty"`
	Reason              string           `json:"reason,omitempty"`
}

// Complaint is one Q/D/P notification row from a complaints export.
type Complaint struct {
	ID                  string            `json:"id"`
	NotificationNumber  string            `json:"notificationNumber"`
	NotificationType    NotificationType  `json:"notificationType"`
	Category            Category          `json:"category"`
	PlantCode           string            `json:"plantCode"`
	SiteName            string            `json:"siteName,omitempty"`
	CreatedOn           time.Time         `json:"createdOn"`
	DefectiveParts      float64           `json:"defectiveParts"`
	UnitOfMeasure       string            `json:"unitOfMeasure,omitempty"`
	MaterialDescription string            `json:"materialDescription,omitempty"`
	MaterialNumber      string            `json:"materialNumber,omitempty"`
	Status              string            `json:"status,omitempty"`
	Conversion          *ConversionResult `json:"conversion,omitempty"`
	SourceFile          string            `json:"sourceFile,omitempty"`
}

// ConversionStatus reports the review state of the complaint's quantity.
func (c Complaint) ConversionStatus() ConversionStatus {
	if c.Conversion == nil {
		return ConversionNotApplicable
	}
	return c.Conversion.Status
}

// NeedsReview is true when a human should look at the defective-part quantity.
func (c Complaint) NeedsReview() bool {
	s := c.ConversionStatus()
	return s == ConversionFailed || s == ConversionNeedsAttention
}
