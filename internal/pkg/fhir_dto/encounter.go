package fhir_dto

type Location struct {
	ResourceType string       `json:"resourceType,omitempty"`
	ID           string       `json:"id,omitempty"`
	Status       string       `json:"status,omitempty"`
	Name         string       `json:"name,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Address      *Address     `json:"address,omitempty"`
}

type Practitioner struct {
	ResourceType string       `json:"resourceType,omitempty"`
	ID           string       `json:"id,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
}

type Encounter struct {
	ResourceType string                 `json:"resourceType,omitempty"`
	ID           string                 `json:"id,omitempty"`
	Status       string                 `json:"status,omitempty"`
	Class        *Coding                `json:"class,omitempty"`
	Type         []CodeableConcept      `json:"type,omitempty"`
	Subject      Reference              `json:"subject,omitempty"`
	Participant  []EncounterParticipant `json:"participant,omitempty"`
	Period       *Period                `json:"period,omitempty"`
	Location     []EncounterLocation    `json:"location,omitempty"`
	Identifier   []Identifier           `json:"identifier,omitempty"`
}

type EncounterParticipant struct {
	Type       []CodeableConcept `json:"type,omitempty"`
	Individual Reference         `json:"individual,omitempty"`
}

type EncounterLocation struct {
	Location Reference `json:"location,omitempty"`
}
