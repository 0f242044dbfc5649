package hl7v2

import (
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"
	"medbridge-service/internal/pkg/utils"
)

// buildImmunization populates an immunization from one vaccine group. The id
// keys off the patient, vaccine code, and administration time so resubmitting
// the same record upserts instead of duplicating.
func buildImmunization(data *hl7v2dto.ImmunizationGroup, patientID, encounterID string) *fhir_dto.Immunization {
	vaccineCode := ""
	if data.VaccineCode != nil {
		vaccineCode = data.VaccineCode.Code
	}

	immunization := &fhir_dto.Immunization{
		ResourceType: constvars.ResourceImmunization,
		ID:           DeterministicID(patientID, vaccineCode, data.AdministeredAt),
		Status:       normalizeImmunizationStatus(data.Status),
		Patient:      fhir_dto.Reference{Reference: constvars.ResourcePatient + "/" + patientID},
	}

	if concept := codeableConcept(data.VaccineCode); concept != nil {
		immunization.VaccineCode = *concept
	}

	if encounterID != "" {
		immunization.Encounter = &fhir_dto.Reference{Reference: constvars.ResourceEncounter + "/" + encounterID}
	}

	if data.AdministeredAt != "" {
		immunization.OccurrenceDateTime = utils.ConvertDateTimeToUTC(data.AdministeredAt)
	}
	if data.LotNumber != "" {
		immunization.LotNumber = data.LotNumber
	}
	if data.ExpirationDate != "" {
		immunization.ExpirationDate = utils.FormatDateOnly(data.ExpirationDate)
	}

	immunization.Site = codeableConcept(data.Site)
	immunization.Route = codeableConcept(data.Route)

	if data.DoseQuantity != nil {
		quantity := &fhir_dto.Quantity{Value: data.DoseQuantity.Value}
		if data.DoseQuantity.Units != nil {
			quantity.Unit = data.DoseQuantity.Units.Code
		}
		immunization.DoseQuantity = quantity
	}

	if data.Administering != nil {
		practitioner := buildPractitioner(*data.Administering)
		immunization.Performer = []fhir_dto.ImmunizationPerformer{{
			Actor: fhir_dto.Reference{
				Type:       constvars.ResourcePractitioner,
				Identifier: &fhir_dto.Identifier{Value: practitioner.ID},
			},
		}}
	}

	if data.Note != "" {
		immunization.Note = []fhir_dto.Annotation{{Text: data.Note}}
	}

	return immunization
}
