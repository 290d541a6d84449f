package ingest

import (
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/columns"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// PlantDirectory is read-only plant master data used while parsing. A nil or
// empty directory resolves numeric codes only.
type PlantDirectory struct {
	byCode map[string]domain.Plant
	byName map[string]domain.Plant
	names  []string
}

func NewPlantDirectory(plants []domain.Plant) *PlantDirectory {
	d := &PlantDirectory{
		byCode: make(map[string]domain.Plant, len(plants)),
		byName: make(map[string]domain.Plant, len(plants)),
	}
	for _, p := range plants {
		if p.Code == "" {
			continue
		}
		if _, dup := d.byCode[p.Code]; dup {
			continue
		}
		d.byCode[p.Code] = p
		if n := columns.Normalize(p.Name); n != "" {
			if _, dup := d.byName[n]; !dup {
				d.byName[n] = p
				d.names = append(d.names, n)
			}
		}
	}
	// longest names first so "berlin sud" beats "berlin"
	sort.Slice(d.names, func(i, j int) bool {
		if len(d.names[i]) != len(d.names[j]) {
			return len(d.names[i]) > len(d.names[j])
		}
		return d.names[i] < d.names[j]
	})
	return d
}

// Len returns the number of plants in the directory.
func (d *PlantDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byCode)
}

// Plants returns the directory content ordered by code.
func (d *PlantDirectory) Plants() []domain.Plant {
	if d == nil {
		return nil
	}
	out := make([]domain.Plant, 0, len(d.byCode))
	for _, p := range d.byCode {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup returns the plant with the given code.
func (d *PlantDirectory) Lookup(code string) (domain.Plant, bool) {
	if d == nil {
		return domain.Plant{}, false
	}
	p, ok := d.byCode[code]
	return p, ok
}

// SiteCode maps a plant code to its reporting site; plants without master data
// report under their own code.
func (d *PlantDirectory) SiteCode(plantCode string) string {
	if p, ok := d.Lookup(plantCode); ok && p.SiteCode != "" {
		return p.SiteCode
	}
	return plantCode
}

// SiteName returns the master-data name of a plant, or "".
func (d *PlantDirectory) SiteName(plantCode string) string {
	if p, ok := d.Lookup(plantCode); ok {
		return p.Name
	}
	return ""
}

// FindByName resolves a free-text plant name. The text must equal or contain a
// known plant name.
func (d *PlantDirectory) FindByName(text string) (domain.Plant, bool) {
	if d == nil || len(d.byName) == 0 {
		return domain.Plant{}, false
	}
	n := columns.Normalize(text)
	if n == "" {
		return domain.Plant{}, false
	}
	if p, ok := d.byName[n]; ok {
		return p, true
	}
	for _, name := range d.names {
		if strings.Contains(n, name) {
			return d.byName[name], true
		}
	}
	return domain.Plant{}, false
}

var (
	leadingCode = regexp.MustCompile(`^\s*(\d{2,6})(?:\s*$|\s*[-–:/|]|\s+\D)`)
	labelCode   = regexp.MustCompile(`(?i)\b(?:plant|werk|site|standort)\s*(?:code|nr|no)?\.?\s*[:#-]?\s*(\d{2,6})\b`)
)

// PlantCode extracts a plant code from a cell: numeric values, "235 - Berlin",
// "Plant 235", or a plant name known to the directory.
func (d *PlantDirectory) PlantCode(c sheet.Cell) (string, bool) {
	switch c.Kind {
	case sheet.KindNumber:
		if c.Num > 0 && c.Num == math.Trunc(c.Num) {
			return strconv.FormatInt(int64(c.Num), 10), true
		}
		return "", false
	case sheet.KindString:
		return d.plantCodeFromText(c.Str)
	}
	return "", false
}

func (d *PlantDirectory) plantCodeFromText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if m := leadingCode.FindStringSubmatch(s); m != nil {
		return trimCode(m[1]), true
	}
	if m := labelCode.FindStringSubmatch(s); m != nil {
		return trimCode(m[1]), true
	}
	if p, ok := d.FindByName(s); ok {
		return p.Code, true
	}
	return "", false
}

// trimCode drops leading zeros so "0235" and 235 are the same plant.
func trimCode(code string) string {
	t := strings.TrimLeft(code, "0")
	if t == "" {
		return "0"
	}
	return t
}

// FileRole is the flow direction encoded in a delivery export's file name.
type FileRole int

const (
	RoleUnknown FileRole = iota
	RoleOutbound
	RoleInbound
)

func (r FileRole) String() string {
	switch r {
	case RoleOutbound:
		return "outbound"
	case RoleInbound:
		return "inbound"
	}
	return "unknown"
}

// Kind returns the delivery kind of the role: Outbound ships to customers,
// Inbound receives from suppliers.
func (r FileRole) Kind() (domain.DeliveryKind, bool) {
	switch r {
	case RoleOutbound:
		return domain.DeliveryCustomer, true
	case RoleInbound:
		return domain.DeliverySupplier, true
	}
	return "", false
}

var (
	roleName      = regexp.MustCompile(`(?i)(?:^|[^a-z])(outbound|inbound)(?:[\s_\-]*(\d{2,6}))?(?:[^0-9]|$)`)
	namePlantCode = regexp.MustCompile(`(?:^|[^0-9A-Za-z])(\d{3})(?:[^0-9]|$)`)
)

// FileNameInfo is what a delivery export's name says about its content.
type FileNameInfo struct {
	Role      FileRole
	PlantCode string
}

// ParseFileName reads the file role and plant code from names such as
// "Outbound 235_PS4.xlsx" or "inbound-145.csv". Without a role keyword a
// standalone 3-digit token is taken as the plant code.
func ParseFileName(name string) FileNameInfo {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var info FileNameInfo
	if m := roleName.FindStringSubmatchIndex(base); m != nil {
		if strings.EqualFold(base[m[2]:m[3]], "outbound") {
			info.Role = RoleOutbound
		} else {
			info.Role = RoleInbound
		}
		if m[4] >= 0 && !startsDate(base[m[4]:]) {
			info.PlantCode = trimCode(base[m[4]:m[5]])
			return info
		}
	}
	for _, m := range namePlantCode.FindAllStringSubmatchIndex(base, -1) {
		if !startsDate(base[m[2]:]) {
			info.PlantCode = trimCode(base[m[2]:m[3]])
			break
		}
	}
	return info
}

var datePrefix = regexp.MustCompile(`^(?:\d{4}[-_.]\d{1,2}(?:\D|$)|\d{8}(?:\D|$))`)

// startsDate reports whether s begins with a date such as "2025-03" or
// "20250301" rather than a plant code.
func startsDate(s string) bool {
	return datePrefix.MatchString(s)
}
