// Package hl7v2 holds the parsed HL7v2 message shapes produced by the upstream
// tokenizer. Every field is optional unless noted; builders must tolerate any
// subset being absent.
package hl7v2

import (
	"strings"

	"github.com/goccy/go-json"
)

// Message is the envelope for one inbound parsed message. ORU_R01 carries the
// order/specimen groups; VXU_V04 carries the immunization group and may omit
// the visit entirely.
type Message struct {
	Src             string             `json:"src,omitempty"`
	ControlID       string             `json:"control_id,omitempty"`
	SourcePatientID string             `json:"source_patient_id,omitempty"`
	PatientGroup    *PatientGroup      `json:"patient_group,omitempty" validate:"required"`
	OrderGroup      OrderGroupList     `json:"order_group,omitempty"`
	Visit           *Visit             `json:"visit,omitempty"`
	Specimens       []SpecimenGroup    `json:"specimens,omitempty"`
	Immunization    *ImmunizationGroup `json:"immunization,omitempty"`
}

type PatientGroup struct {
	Patient    *PatientData   `json:"patient,omitempty" validate:"required"`
	OrderGroup OrderGroupList `json:"order_group,omitempty"`
	Visit      *Visit         `json:"visit,omitempty"`
}

type PatientData struct {
	Name          []NameData        `json:"name,omitempty"`
	BirthDate     string            `json:"birthDate,omitempty"`
	Gender        string            `json:"gender,omitempty"`
	Address       []AddressData     `json:"address,omitempty"`
	Telecom       []TelecomData     `json:"telecom,omitempty"`
	Identifier    []IdentifierEntry `json:"identifier,omitempty"`
	MaritalStatus string            `json:"marital_status,omitempty"`
	Language      string            `json:"language,omitempty"`
	Race          []CodedValue      `json:"race,omitempty"`
	Ethnicity     []CodedValue      `json:"ethnicity,omitempty"`
}

// FirstName and LastName expose the natural-key parts used for identity.
func (p *PatientData) FirstName() string {
	if len(p.Name) == 0 || len(p.Name[0].Given) == 0 {
		return ""
	}
	return p.Name[0].Given[0]
}

func (p *PatientData) LastName() string {
	if len(p.Name) == 0 {
		return ""
	}
	return p.Name[0].Family
}

type NameData struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
	Suffix []string `json:"suffix,omitempty"`
}

type AddressData struct {
	Use        string   `json:"use,omitempty"`
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty"`
}

// TelecomData mirrors the tokenizer output where the value sits under a key
// named after the system ("phone" or "email").
type TelecomData struct {
	Use    string `json:"use,omitempty"`
	System string `json:"system,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
}

func (t TelecomData) Value() string {
	switch t.System {
	case "email":
		return t.Email
	case "phone":
		return t.Phone
	}
	return ""
}

type IdentifierEntry struct {
	Use    string `json:"use,omitempty"`
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// CodedValue is the tokenizer's flat coding: primary code/system/display plus
// an optional alternate coding alongside it.
type CodedValue struct {
	Code             string `json:"code,omitempty"`
	System           string `json:"system,omitempty"`
	Display          string `json:"display,omitempty"`
	Version          string `json:"version,omitempty"`
	AlternateCode    string `json:"alternate_code,omitempty"`
	AlternateSystem  string `json:"alternate_system,omitempty"`
	AlternateDisplay string `json:"alternate_display,omitempty"`
	AlternateVersion string `json:"alternate_version,omitempty"`
}

func (c *CodedValue) HasAlternate() bool {
	if c == nil {
		return false
	}
	return c.AlternateCode != "" || c.AlternateSystem != "" || c.AlternateDisplay != "" || c.AlternateVersion != ""
}

type Visit struct {
	VisitNumber      string             `json:"visit_number,omitempty"`
	Class            *CodedValue        `json:"class,omitempty"`
	Period           *PeriodData        `json:"period,omitempty"`
	Locations        []LocationData     `json:"locations,omitempty"`
	AttendingDoctors []PractitionerData `json:"attending_doctors,omitempty"`
	ReferringDoctors []PractitionerData `json:"referring_doctors,omitempty"`
}

type PeriodData struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type LocationData struct {
	Name       string           `json:"name,omitempty"`
	Identifier *IdentifierEntry `json:"identifier,omitempty"`
	Address    *AddressData     `json:"address,omitempty"`
}

type PractitionerData struct {
	Identifier *IdentifierEntry `json:"identifier,omitempty"`
	Family     string           `json:"family,omitempty"`
	Given      []string         `json:"given,omitempty"`
	Prefix     []string         `json:"prefix,omitempty"`
	Suffix     []string         `json:"suffix,omitempty"`
}

type SpecimenGroup struct {
	Specimen     *SpecimenData     `json:"specimen,omitempty"`
	Observations []ObservationData `json:"observations,omitempty"`
}

type SpecimenData struct {
	Identifier   *IdentifierEntry `json:"identifier,omitempty"`
	Type         *CodedValue      `json:"type,omitempty"`
	ReceivedTime string           `json:"received_time,omitempty"`
}

// OrderGroupList tolerates the tokenizer emitting either a single order group
// object or a list of them.
type OrderGroupList []OrderGroup

func (l *OrderGroupList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var groups []OrderGroup
		if err := json.Unmarshal(data, &groups); err != nil {
			return err
		}
		*l = groups
		return nil
	}
	var group OrderGroup
	if err := json.Unmarshal(data, &group); err != nil {
		return err
	}
	*l = OrderGroupList{group}
	return nil
}

type OrderGroup struct {
	Order               *OrderData        `json:"order,omitempty"`
	Observations        []ObservationData `json:"observations,omitempty"`
	ObservationRequests []OrderData       `json:"observation_requests,omitempty"`
}

// OrderData feeds a diagnostic report: the order itself for the primary
// report, or one nested observation request for a child report.
type OrderData struct {
	Status              string                  `json:"status,omitempty"`
	Code                *CodedValue             `json:"code,omitempty"`
	Identifier          *ObservationIdentifiers `json:"identifier,omitempty"`
	Effective           *EffectiveData          `json:"effective,omitempty"`
	Issued              string                  `json:"issued,omitempty"`
	Performer           *PerformerData          `json:"performer,omitempty"`
	Observations        []ObservationData       `json:"observations,omitempty"`
	ObservationRequests []OrderData             `json:"observation_requests,omitempty"`
}

type ObservationData struct {
	Status         string                  `json:"status,omitempty"`
	Code           *CodedValue             `json:"code,omitempty"`
	Identifier     *ObservationIdentifiers `json:"identifier,omitempty"`
	Effective      *EffectiveData          `json:"effective,omitempty"`
	Issued         string                  `json:"issued,omitempty"`
	Value          *ValueData              `json:"value,omitempty"`
	Performer      *PerformerData          `json:"performer,omitempty"`
	ReferenceRange *ReferenceRangeData     `json:"referenceRange,omitempty"`
	Interpretation *InterpretationData     `json:"interpretation,omitempty"`
	AccessChecks   string                  `json:"access_checks,omitempty"`
}

type ObservationIdentifiers struct {
	FillerNumber *NumberIdentifier `json:"filler_number,omitempty"`
	PlacerNumber *NumberIdentifier `json:"placer_number,omitempty"`
}

type NumberIdentifier struct {
	Identifier string `json:"identifier,omitempty"`
}

type EffectiveData struct {
	DateTime string `json:"dateTime,omitempty"`
}

// ValueData holds exactly one of the supported value encodings per message:
// a string array, a numeric quantity, or embedded binary data (type "ED").
type ValueData struct {
	Type   string         `json:"type,omitempty"`
	String []string       `json:"string,omitempty"`
	Number StringList     `json:"number,omitempty"`
	Units  *CodedValue    `json:"units,omitempty"`
	ED     []EmbeddedData `json:"ED,omitempty"`
}

type EmbeddedData struct {
	DataSubtype string `json:"data_subtype,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	Data        string `json:"data,omitempty"`
}

type ReferenceRangeData struct {
	Range string `json:"range,omitempty"`
}

type InterpretationData struct {
	Flag StringList `json:"flag,omitempty"`
}

// StringList accepts a bare string, a bare number, or an array of either;
// upstream tokenizers are not consistent about it.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		values := make([]string, 0, len(raw))
		for _, item := range raw {
			values = append(values, scalarToString(item))
		}
		*s = values
		return nil
	}
	*s = StringList{scalarToString(data)}
	return nil
}

func scalarToString(data []byte) string {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return str
	}
	return strings.TrimSpace(string(data))
}

type PerformerData struct {
	Organization *OrganizationData `json:"organization,omitempty"`
	Address      *AddressData      `json:"address,omitempty"`
	Responsible  []ResponsibleData `json:"responsible,omitempty"`
}

type OrganizationData struct {
	Name       string `json:"name,omitempty"`
	Authority  string `json:"authority,omitempty"`
	Type       string `json:"type,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

type ResponsibleData struct {
	Identifier *IdentifierEntry `json:"identifier,omitempty"`
}

type ImmunizationGroup struct {
	Status         string            `json:"status,omitempty"`
	VaccineCode    *CodedValue       `json:"vaccine_code,omitempty"`
	AdministeredAt string            `json:"administered_at,omitempty"`
	LotNumber      string            `json:"lot_number,omitempty"`
	ExpirationDate string            `json:"expiration_date,omitempty"`
	Route          *CodedValue       `json:"route,omitempty"`
	Site           *CodedValue       `json:"site,omitempty"`
	DoseQuantity   *DoseData         `json:"dose_quantity,omitempty"`
	Administering  *PractitionerData `json:"administering_provider,omitempty"`
	Note           string            `json:"note,omitempty"`
}

type DoseData struct {
	Value float64     `json:"value,omitempty"`
	Units *CodedValue `json:"units,omitempty"`
}
