package ingest

import "github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"

// Canonical field names shared by the schemas.
const (
	FieldNotificationNumber  = "notificationNumber"
	FieldNotificationType    = "notificationType"
	FieldPlant               = "plant"
	FieldSiteName            = "siteName"
	FieldCreatedOn           = "createdOn"
	FieldDefectiveParts      = "defectiveParts"
	FieldUnitOfMeasure       = "unitOfMeasure"
	FieldMaterialDescription = "materialDescription"
	FieldMaterialNumber      = "materialNumber"
	FieldStatus              = "status"
	FieldDescription         = "description"
	FieldCompletedOn         = "completedOn"
	FieldSupplier            = "supplier"
	FieldDate                = "date"
	FieldQuantity            = "quantity"
	FieldKind                = "kind"
	FieldGoodsIssueDate      = "actualGoodsIssueDate"
	FieldGoodsReceiptDate    = "actualGoodsReceiptDate"
	FieldSiteCode            = "siteCode"
	FieldName                = "name"
	FieldCity                = "city"
	FieldCountry             = "country"
)

func notificationNumberField() columns.Field {
	return columns.Field{
		Name:     FieldNotificationNumber,
		Exact:    []string{"Notification", "Notification Number", "Notification No", "Notification Nr", "Meldung", "Meldungsnummer", "QM Notification"},
		Contains: []string{"notification number", "notification no", "notification nr", "meldungsnummer", "notif no"},
		Exclude:  []string{"type", "art", "date", "datum", "status", "text", "description"},
		Fallback: columns.ContainsAny("notification", "meldung"),
		Required: true,
	}
}

func notificationTypeField(required bool) columns.Field {
	return columns.Field{
		Name:     FieldNotificationType,
		Exact:    []string{"Notification Type", "Notif Type", "Notification Category", "Meldungsart", "Type", "Art"},
		Contains: []string{"notification type", "notif type", "meldungsart", "type"},
		Exclude:  []string{"material type", "delivery type", "unit"},
		Required: required,
	}
}

func plantField(required bool) columns.Field {
	return columns.Field{
		Name:     FieldPlant,
		Exact:    []string{"Plant", "Plant Code", "Plnt", "Werk", "Site Code", "Site"},
		Contains: []string{"plant code", "plant", "werk"},
		Exclude:  []string{"name", "description", "bezeichnung", "country", "city"},
		Required: required,
	}
}

func siteNameField() columns.Field {
	return columns.Field{
		Name:     FieldSiteName,
		Exact:    []string{"Plant Name", "Site Name", "Name 1", "Werksname", "Werk Bezeichnung"},
		Contains: []string{"plant name", "site name", "werksname"},
	}
}

func createdOnField(required bool) columns.Field {
	return columns.Field{
		Name:     FieldCreatedOn,
		Exact:    []string{"Created On", "Created on", "Creation Date", "Notification Date", "Date", "Erstellt am", "Angelegt am", "Meldungsdatum"},
		Contains: []string{"created on", "creation date", "notification date", "erstellt", "angelegt"},
		Exclude:  []string{"by", "von", "completion", "closed", "abschluss", "required", "changed"},
		Fallback: columns.ContainsAny("date", "datum"),
		Required: required,
	}
}

func materialNumberField() columns.Field {
	return columns.Field{
		Name:     FieldMaterialNumber,
		Exact:    []string{"Material", "Material Number", "Material No", "Materialnummer"},
		Contains: []string{"material number", "material no", "materialnummer"},
		Exclude:  []string{"description", "text", "kurztext", "bezeichnung", "type"},
	}
}

func statusField() columns.Field {
	return columns.Field{
		Name:     FieldStatus,
		Exact:    []string{"Status", "System Status", "User Status", "Notification Status"},
		Contains: []string{"status"},
	}
}

// ComplaintSchema is the column table of complaint (Q/D/P notification) exports.
var ComplaintSchema = columns.Schema{
	Name: "complaints",
	Fields: []columns.Field{
		notificationNumberField(),
		notificationTypeField(true),
		plantField(true),
		createdOnField(true),
		{
			Name:     FieldDefectiveParts,
			Exact:    []string{"Defective Parts", "Quantity Defective", "Defective Quantity", "Qty Defective", "Complaint Quantity", "Reklamationsmenge", "Fehlmenge"},
			Contains: []string{"defective", "complaint qty", "complaint quantity", "reklamationsmenge", "fehlerhaft"},
			Exclude:  []string{"unit", "uom", "einheit"},
			Fallback: columns.ContainsAny("quantity", "qty", "menge"),
		},
		{
			Name:     FieldUnitOfMeasure,
			Exact:    []string{"Unit of Measure", "UoM", "Unit", "Base Unit of Measure", "BUn", "ME", "Mengeneinheit"},
			Contains: []string{"unit of measure", "uom", "mengeneinheit", "einheit"},
		},
		{
			Name:     FieldMaterialDescription,
			Exact:    []string{"Material Description", "Material Text", "Materialkurztext", "Description"},
			Contains: []string{"material description", "material text", "materialkurztext", "kurztext"},
		},
		materialNumberField(),
		statusField(),
		siteNameField(),
	},
}

// DeliverySchema is the column table of outbound/inbound delivery exports. The
// goods issue/receipt fields come first so the generic date field cannot claim
// them through a substring.
var DeliverySchema = columns.Schema{
	Name: "deliveries",
	Fields: []columns.Field{
		{
			Name:     FieldGoodsIssueDate,
			Exact:    []string{"Actual Goods Issue Date", "Actual Goods Movement Date", "Act Gds Issue Date", "Actual GI Date", "Ist-WA-Datum", "WA-Datum ist"},
			Contains: []string{"actual goods issue", "act gds issue", "actual gi", "goods issue date", "ist-wa", "warenausgang"},
		},
		{
			Name:     FieldGoodsReceiptDate,
			Exact:    []string{"Actual Goods Receipt Date", "Act Gds Receipt Date", "Actual GR Date", "Ist-WE-Datum", "WE-Datum ist"},
			Contains: []string{"actual goods receipt", "act gds receipt", "actual gr", "goods receipt date", "ist-we", "wareneingang"},
		},
		plantField(false),
		{
			Name:     FieldDate,
			Exact:    []string{"Date", "Delivery Date", "Posting Date", "Document Date", "Lieferdatum", "Buchungsdatum", "Month", "Monat"},
			Contains: []string{"delivery date", "posting date", "document date", "lieferdatum", "buchungsdatum"},
			Exclude:  []string{"goods issue", "goods receipt", "gds issue", "gds receipt", "created", "planned"},
			Fallback: columns.ContainsAny("date", "datum", "month", "monat"),
		},
		{
			Name:     FieldQuantity,
			Exact:    []string{"Quantity", "Delivered Quantity", "Delivery Quantity", "Qty", "Menge", "Liefermenge", "Quantity Delivered"},
			Contains: []string{"delivered quantity", "delivery quantity", "quantity", "qty", "liefermenge", "menge"},
			Exclude:  []string{"unit", "uom", "einheit", "defective", "open"},
			Required: true,
		},
		{
			Name:     FieldKind,
			Exact:    []string{"Kind", "Delivery Kind", "Delivery Type", "Direction", "Flow", "Type"},
			Contains: []string{"delivery type", "delivery kind", "direction"},
		},
		siteNameField(),
	},
}

// DeviationSchema is the column table of deviation (D1–D3) notification exports.
var DeviationSchema = columns.Schema{
	Name: "deviations",
	Fields: []columns.Field{
		notificationNumberField(),
		notificationTypeField(false),
		plantField(true),
		createdOnField(true),
		statusField(),
		{
			Name:     FieldDescription,
			Exact:    []string{"Description", "Short Text", "Kurztext", "Beschreibung", "Deviation Description"},
			Contains: []string{"description", "short text", "kurztext", "beschreibung"},
			Exclude:  []string{"material", "plant"},
		},
		materialNumberField(),
		siteNameField(),
	},
}

// PPAPSchema is the column table of PPAP (P1–P3) notification exports.
var PPAPSchema = columns.Schema{
	Name: "ppap",
	Fields: []columns.Field{
		notificationNumberField(),
		notificationTypeField(false),
		plantField(true),
		createdOnField(true),
		statusField(),
		{
			Name:     FieldCompletedOn,
			Exact:    []string{"Completed On", "Completion Date", "Closed On", "Completion", "Abgeschlossen am", "Abschlussdatum"},
			Contains: []string{"completed on", "completion", "closed on", "abgeschlossen", "abschluss"},
		},
		materialNumberField(),
		{
			Name:     FieldSupplier,
			Exact:    []string{"Supplier", "Vendor", "Supplier Name", "Lieferant", "Kreditor"},
			Contains: []string{"supplier", "vendor", "lieferant"},
		},
		siteNameField(),
	},
}

// PlantSchema is the column table of the plant master data.
var PlantSchema = columns.Schema{
	Name: "plants",
	Fields: []columns.Field{
		{
			Name:     FieldPlant,
			Exact:    []string{"Plant", "Plant Code", "Plnt", "Werk", "Code"},
			Contains: []string{"plant code", "plant", "werk"},
			Exclude:  []string{"name", "description", "bezeichnung", "site", "country", "city"},
			Required: true,
		},
		{
			Name:     FieldName,
			Exact:    []string{"Name", "Plant Name", "Name 1", "Werksname", "Description", "Bezeichnung"},
			Contains: []string{"plant name", "name", "bezeichnung"},
			Exclude:  []string{"city", "country", "site"},
			Required: true,
		},
		{
			Name:     FieldSiteCode,
			Exact:    []string{"Site", "Site Code", "Standort", "Reporting Site"},
			Contains: []string{"site code", "site", "standort"},
			Exclude:  []string{"name"},
		},
		{
			Name:     FieldCity,
			Exact:    []string{"City", "Ort", "Stadt", "Location"},
			Contains: []string{"city"},
		},
		{
			Name:     FieldCountry,
			Exact:    []string{"Country", "Land", "Country Key"},
			Contains: []string{"country"},
		},
	},
}

// Schemas lists every parser schema for sheet-kind detection.
var Schemas = []columns.Schema{ComplaintSchema, DeliverySchema, DeviationSchema, PPAPSchema, PlantSchema}
