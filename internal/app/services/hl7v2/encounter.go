package hl7v2

import (
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"
	"medbridge-service/internal/pkg/utils"
)

// buildEncounterContext turns a visit group into its location and practitioner
// entities plus the encounter that references them and the patient. Locations
// and practitioners carry deterministic ids so repeated visits upsert the same
// records; the encounter keys off the visit number when one is present.
func buildEncounterContext(visit *hl7v2dto.Visit, patientID string) ([]fhir_dto.Location, []fhir_dto.Practitioner, *fhir_dto.Encounter) {
	var locations []fhir_dto.Location
	var practitioners []fhir_dto.Practitioner

	encounterID := RandomID()
	if visit.VisitNumber != "" {
		encounterID = DeterministicID(visit.VisitNumber)
	}

	encounter := &fhir_dto.Encounter{
		ResourceType: constvars.ResourceEncounter,
		ID:           encounterID,
		Status:       constvars.FhirEncounterStatusInProgress,
		Class: &fhir_dto.Coding{
			System:  constvars.SystemActCode,
			Code:    constvars.FhirEncounterClassCode,
			Display: constvars.FhirEncounterClassDisplay,
		},
		Subject: fhir_dto.Reference{Reference: constvars.ResourcePatient + "/" + patientID},
	}

	if visit.Class != nil {
		encounter.Class = &fhir_dto.Coding{
			System:  visit.Class.System,
			Code:    visit.Class.Code,
			Display: visit.Class.Display,
		}
	}

	if visit.VisitNumber != "" {
		encounter.Identifier = []fhir_dto.Identifier{{Value: visit.VisitNumber}}
	}

	if visit.Period != nil {
		period := &fhir_dto.Period{}
		if visit.Period.Start != "" {
			period.Start = utils.ConvertDateTimeToUTC(visit.Period.Start)
		}
		if visit.Period.End != "" {
			period.End = utils.ConvertDateTimeToUTC(visit.Period.End)
		}
		encounter.Period = period
	}

	for _, locationData := range visit.Locations {
		location := buildLocation(locationData)
		locations = append(locations, location)
		encounter.Location = append(encounter.Location, fhir_dto.EncounterLocation{
			Location: fhir_dto.Reference{Reference: constvars.ResourceLocation + "/" + location.ID},
		})
	}

	doctors := append(append([]hl7v2dto.PractitionerData{}, visit.AttendingDoctors...), visit.ReferringDoctors...)
	for _, doctorData := range doctors {
		practitioner := buildPractitioner(doctorData)
		practitioners = append(practitioners, practitioner)
		encounter.Participant = append(encounter.Participant, fhir_dto.EncounterParticipant{
			Individual: fhir_dto.Reference{Reference: constvars.ResourcePractitioner + "/" + practitioner.ID},
		})
	}

	return locations, practitioners, encounter
}

func buildLocation(data hl7v2dto.LocationData) fhir_dto.Location {
	naturalKey := data.Name
	if data.Identifier != nil && data.Identifier.Value != "" {
		naturalKey = data.Identifier.Value
	}

	location := fhir_dto.Location{
		ResourceType: constvars.ResourceLocation,
		ID:           DeterministicID(naturalKey),
		Status:       "active",
		Name:         data.Name,
	}
	if data.Identifier != nil {
		location.Identifier = []fhir_dto.Identifier{{
			Use:    data.Identifier.Use,
			System: data.Identifier.System,
			Value:  data.Identifier.Value,
		}}
	}
	if data.Address != nil {
		location.Address = &fhir_dto.Address{
			Use:        data.Address.Use,
			Line:       data.Address.Line,
			City:       data.Address.City,
			State:      data.Address.State,
			PostalCode: data.Address.PostalCode,
			Country:    data.Address.Country,
		}
	}
	return location
}

func buildPractitioner(data hl7v2dto.PractitionerData) fhir_dto.Practitioner {
	var given string
	if len(data.Given) > 0 {
		given = data.Given[0]
	}
	naturalKey := []string{given, data.Family}
	if data.Identifier != nil && data.Identifier.Value != "" {
		naturalKey = []string{data.Identifier.Value}
	}

	practitioner := fhir_dto.Practitioner{
		ResourceType: constvars.ResourcePractitioner,
		ID:           DeterministicID(naturalKey...),
	}
	if data.Identifier != nil {
		practitioner.Identifier = []fhir_dto.Identifier{{
			Use:    data.Identifier.Use,
			System: data.Identifier.System,
			Value:  data.Identifier.Value,
		}}
	}
	if data.Family != "" || len(data.Given) > 0 {
		practitioner.Name = []fhir_dto.HumanName{{
			Family: data.Family,
			Given:  data.Given,
			Prefix: data.Prefix,
			Suffix: data.Suffix,
		}}
	}
	return practitioner
}
