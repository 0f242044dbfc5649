package fhir_dto

type Specimen struct {
	ResourceType string           `json:"resourceType,omitempty"`
	ID           string           `json:"id,omitempty"`
	Identifier   []Identifier     `json:"identifier,omitempty"`
	Type         *CodeableConcept `json:"type,omitempty"`
	Subject      Reference        `json:"subject,omitempty"`
	ReceivedTime string           `json:"receivedTime,omitempty"`
}

type Observation struct {
	ResourceType      string                      `json:"resourceType,omitempty"`
	ID                string                      `json:"id,omitempty"`
	Status            string                      `json:"status,omitempty"`
	Code              CodeableConcept             `json:"code"`
	Category          []CodeableConcept           `json:"category,omitempty"`
	Subject           Reference                   `json:"subject,omitempty"`
	Encounter         *Reference                  `json:"encounter,omitempty"`
	Identifier        []Identifier                `json:"identifier,omitempty"`
	HasMember         []Reference                 `json:"hasMember,omitempty"`
	Focus             []Reference                 `json:"focus,omitempty"`
	EffectiveDateTime string                      `json:"effectiveDateTime,omitempty"`
	Issued            string                      `json:"issued,omitempty"`
	ValueString       string                      `json:"valueString,omitempty"`
	ValueQuantity     *Quantity                   `json:"valueQuantity,omitempty"`
	Performer         []Reference                 `json:"performer,omitempty"`
	ReferenceRange    []ObservationReferenceRange `json:"referenceRange,omitempty"`
	Interpretation    []CodeableConcept           `json:"interpretation,omitempty"`
	Note              []Annotation                `json:"note,omitempty"`
}

type ObservationReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
	Text string    `json:"text,omitempty"`
}

type DiagnosticReport struct {
	ResourceType      string            `json:"resourceType,omitempty"`
	ID                string            `json:"id,omitempty"`
	Status            string            `json:"status,omitempty"`
	Code              CodeableConcept   `json:"code"`
	Category          []CodeableConcept `json:"category,omitempty"`
	Subject           Reference         `json:"subject,omitempty"`
	Encounter         *Reference        `json:"encounter,omitempty"`
	Identifier        []Identifier      `json:"identifier,omitempty"`
	EffectiveDateTime string            `json:"effectiveDateTime,omitempty"`
	Issued            string            `json:"issued,omitempty"`
	Performer         []Reference       `json:"performer,omitempty"`
	Result            []Reference       `json:"result,omitempty"`
}
