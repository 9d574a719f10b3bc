package types

import "encoding/json"

// Theme is the UI color scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of the supported themes
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the other theme. Anything that is not dark becomes dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// NotificationType classifies a toast notification
type NotificationType string

const (
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
	NotificationNull    NotificationType = "null"
)

// Valid reports whether the type is one the UI knows how to show
func (n NotificationType) Valid() bool {
	switch n {
	case NotificationError, NotificationSuccess, NotificationNull:
		return true
	}
	return false
}

// Notification is a toast shown to the user.
// ID is either a message id from the catalog or a literal message built
// from an API error body. Key is unique per emitted notification so the
// same message can be shown twice in a row.
type Notification struct {
	ID   string           `json:"id" yaml:"id"`
	Type NotificationType `json:"type" yaml:"type"`
	Key  string           `json:"-" yaml:"-"`
}

// SortOrder is the user facing sort choice for unit listings
type SortOrder string

const (
	SortAscending  SortOrder = "Ascending"
	SortDescending SortOrder = "Descending"
)

// QueryValue maps the sort order to the backend `order` parameter
func (s SortOrder) QueryValue() (string, bool) {
	switch s {
	case SortAscending:
		return "ASC", true
	case SortDescending:
		return "DESC", true
	}
	return "", false
}

// UnitsType selects which state slice a list of units is written to
type UnitsType string

const (
	UnitsUntokenized UnitsType = "untokenized"
	UnitsTokens      UnitsType = "tokens"
)

// Issuance describes the issuance a unit belongs to
type Issuance struct {
	ID                 string `json:"id,omitempty" yaml:"id,omitempty"`
	OrgUID             string `json:"orgUid,omitempty" yaml:"orgUid,omitempty"`
	WarehouseProjectID string `json:"warehouseProjectId,omitempty" yaml:"warehouseProjectId,omitempty"`
	StartDate          string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate            string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	VerificationBody   string `json:"verificationBody,omitempty" yaml:"verificationBody,omitempty"`
	VerificationReport string `json:"verificationReportDate,omitempty" yaml:"verificationReportDate,omitempty"`
}

// Unit is a quantity of an environmental asset as returned by the backend.
// ProjectName, ProjectLink and RegistryProjectID are filled in client side
// from the projects lookup.
type Unit struct {
	WarehouseUnitID              string    `json:"warehouseUnitId" yaml:"warehouseUnitId"`
	IssuanceID                   string    `json:"issuanceId,omitempty" yaml:"issuanceId,omitempty"`
	ProjectLocationID            string    `json:"projectLocationId,omitempty" yaml:"projectLocationId,omitempty"`
	OrgUID                       string    `json:"orgUid,omitempty" yaml:"orgUid,omitempty"`
	UnitOwner                    string    `json:"unitOwner,omitempty" yaml:"unitOwner,omitempty"`
	CountryJurisdictionOfOwner   string    `json:"countryJurisdictionOfOwner,omitempty" yaml:"countryJurisdictionOfOwner,omitempty"`
	InCountryJurisdictionOfOwner string    `json:"inCountryJurisdictionOfOwner,omitempty" yaml:"inCountryJurisdictionOfOwner,omitempty"`
	SerialNumberBlock            string    `json:"serialNumberBlock,omitempty" yaml:"serialNumberBlock,omitempty"`
	UnitBlockStart               string    `json:"unitBlockStart,omitempty" yaml:"unitBlockStart,omitempty"`
	UnitBlockEnd                 string    `json:"unitBlockEnd,omitempty" yaml:"unitBlockEnd,omitempty"`
	UnitCount                    int       `json:"unitCount,omitempty" yaml:"unitCount,omitempty"`
	VintageYear                  int       `json:"vintageYear,omitempty" yaml:"vintageYear,omitempty"`
	UnitType                     string    `json:"unitType,omitempty" yaml:"unitType,omitempty"`
	UnitStatus                   string    `json:"unitStatus,omitempty" yaml:"unitStatus,omitempty"`
	Marketplace                  string    `json:"marketplace,omitempty" yaml:"marketplace,omitempty"`
	MarketplaceIdentifier        string    `json:"marketplaceIdentifier,omitempty" yaml:"marketplaceIdentifier,omitempty"`
	MarketplaceLink              string    `json:"marketplaceLink,omitempty" yaml:"marketplaceLink,omitempty"`
	Issuance                     *Issuance `json:"issuance,omitempty" yaml:"issuance,omitempty"`

	ProjectName       string `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	ProjectLink       string `json:"projectLink,omitempty" yaml:"projectLink,omitempty"`
	RegistryProjectID string `json:"registryProjectId,omitempty" yaml:"registryProjectId,omitempty"`

	// Extra holds backend fields not declared above, keyed by JSON name
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// WarehouseProjectID returns the project referenced by the unit's issuance, if any
func (u Unit) WarehouseProjectID() string {
	if u.Issuance == nil {
		return ""
	}
	return u.Issuance.WarehouseProjectID
}

// Project is the subset of project metadata joined onto units
type Project struct {
	WarehouseProjectID string `json:"warehouseProjectId" yaml:"warehouseProjectId"`
	ProjectID          string `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	ProjectName        string `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	ProjectLink        string `json:"projectLink,omitempty" yaml:"projectLink,omitempty"`
	CurrentRegistry    string `json:"currentRegistry,omitempty" yaml:"currentRegistry,omitempty"`
	OrgUID             string `json:"orgUid,omitempty" yaml:"orgUid,omitempty"`
}

// Page is the paginated listing envelope returned by the backend
type Page[T any] struct {
	Data      []T `json:"data"`
	PageCount int `json:"pageCount"`
}

// APIError is the error body returned on non-2xx responses
type APIError struct {
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// TokenizeRequest is the body of POST /tokenize
type TokenizeRequest struct {
	OrgUID             string `json:"org_uid" yaml:"org_uid"`
	WarehouseProjectID string `json:"warehouse_project_id" yaml:"warehouse_project_id"`
	VintageYear        int    `json:"vintage_year" yaml:"vintage_year"`
	SequenceNum        int    `json:"sequence_num" yaml:"sequence_num"`
	WarehouseUnitID    string `json:"warehouse_unit_id" yaml:"warehouse_unit_id"`
	ToAddress          string `json:"to_address" yaml:"to_address"`
	Amount             int    `json:"amount" yaml:"amount"`
}

// DetokenizationResult is the parsed detokenization descriptor.
// The backend shape is passed through untouched.
type DetokenizationResult map[string]json.RawMessage

// Field decodes a single field of the result into v
func (d DetokenizationResult) Field(name string, v any) error {
	raw, ok := d[name]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// TokenizeRequestFor builds the request that tokenizes all of u to toAddress
func TokenizeRequestFor(u Unit, toAddress string) TokenizeRequest {
	return TokenizeRequest{
		OrgUID:             u.OrgUID,
		WarehouseProjectID: u.WarehouseProjectID(),
		VintageYear:        u.VintageYear,
		WarehouseUnitID:    u.WarehouseUnitID,
		ToAddress:          toAddress,
		Amount:             u.UnitCount,
	}
}
