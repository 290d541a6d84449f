package domain

// Plant is a row of the plant master data.
type Plant struct {
	Code     string `json:"code" db:"code"`
	SiteCode string `json:"siteCode" db:"site_code"`
	Name     string `json:"name" db:"name"`
	City     string `json:"city,omitempty" db:"city"`
	Country  string `json:"country,omitempty" db:"country"`
}
