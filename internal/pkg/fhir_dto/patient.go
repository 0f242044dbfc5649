package fhir_dto

type Patient struct {
	ResourceType  string                 `json:"resourceType,omitempty"`
	ID            string                 `json:"id,omitempty"`
	Meta          *Meta                  `json:"meta,omitempty"`
	Name          []HumanName            `json:"name,omitempty"`
	BirthDate     string                 `json:"birthDate,omitempty"`
	Gender        string                 `json:"gender,omitempty"`
	Address       []Address              `json:"address,omitempty"`
	Contact       []PatientContact       `json:"contact,omitempty"`
	Identifier    []Identifier           `json:"identifier,omitempty"`
	MaritalStatus *CodeableConcept       `json:"maritalStatus,omitempty"`
	Communication []PatientCommunication `json:"communication,omitempty"`
	Extension     []Extension            `json:"extension,omitempty"`
	Link          []PatientLink          `json:"link,omitempty"`
}

type PatientContact struct {
	Telecom []ContactPoint `json:"telecom,omitempty"`
}

type PatientCommunication struct {
	Language CodeableConcept `json:"language"`
}

type PatientLink struct {
	Type  string    `json:"type,omitempty"`
	Other Reference `json:"other,omitempty"`
}
