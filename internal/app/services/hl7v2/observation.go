package hl7v2

import (
	"strconv"
	"strings"

	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"
	"medbridge-service/internal/pkg/utils"
)

// builtObservation is one observation plus the secondary entities discovered
// while building it. Secondaries are returned, never embedded; the observation
// references them by id.
type builtObservation struct {
	Observation       *fhir_dto.Observation
	Organizations     []fhir_dto.Organization
	PractitionerRoles []fhir_dto.PractitionerRole

	// value carries the raw reported value so the assembler can offload an
	// embedded binary after the entity is built.
	value *hl7v2dto.ValueData
}

// buildObservation populates an observation from one result group. Each call
// mints a fresh random id; single result instances have no natural key.
// Specimen and encounter references are optional and absent fields stay unset.
func buildObservation(data *hl7v2dto.ObservationData, patientID, specimenID, encounterID string) builtObservation {
	observation := &fhir_dto.Observation{
		ResourceType: constvars.ResourceObservation,
		ID:           RandomID(),
		Status:       normalizeObservationStatus(data.Status),
		Subject:      fhir_dto.Reference{Reference: constvars.ResourcePatient + "/" + patientID},
		Code:         fhir_dto.CodeableConcept{Coding: observationCodings(data.Code)},
		Category: []fhir_dto.CodeableConcept{
			{Coding: []fhir_dto.Coding{observationCategory(data.Code)}},
		},
	}
	built := builtObservation{Observation: observation, value: data.Value}

	if specimenID != "" {
		observation.Focus = []fhir_dto.Reference{
			{Reference: constvars.ResourceSpecimen + "/" + specimenID},
		}
	}

	if encounterID != "" {
		observation.Encounter = &fhir_dto.Reference{Reference: constvars.ResourceEncounter + "/" + encounterID}
	}

	observation.Identifier = orderIdentifiers(data.Identifier)

	if data.Effective != nil && data.Effective.DateTime != "" {
		observation.EffectiveDateTime = utils.ConvertDateTimeToUTC(data.Effective.DateTime)
	}
	if data.Issued != "" {
		observation.Issued = utils.ConvertDateTimeToUTC(data.Issued)
	}

	if data.Value != nil {
		if len(data.Value.String) > 0 {
			observation.ValueString = strings.Join(data.Value.String, " ")
		}
		if quantity := valueQuantity(data.Value); quantity != nil {
			observation.ValueQuantity = quantity
		}
	}

	if data.ReferenceRange != nil && data.ReferenceRange.Range != "" {
		observation.ReferenceRange = []fhir_dto.ObservationReferenceRange{
			{Text: data.ReferenceRange.Range},
		}
	}

	if data.Interpretation != nil && len(data.Interpretation.Flag) > 0 {
		var codings []fhir_dto.Coding
		for _, flag := range data.Interpretation.Flag {
			codings = append(codings, fhir_dto.Coding{
				System: constvars.SystemObservationInterpretation,
				Code:   flag,
			})
		}
		observation.Interpretation = []fhir_dto.CodeableConcept{{Coding: codings}}
	}

	if data.AccessChecks != "" {
		observation.Note = []fhir_dto.Annotation{{Text: data.AccessChecks}}
	}

	if data.Performer != nil {
		if organization := buildPerformingOrganization(data.Performer); organization != nil {
			observation.Performer = append(observation.Performer, fhir_dto.Reference{
				Reference: constvars.ResourceOrganization + "/" + organization.ID,
			})
			built.Organizations = append(built.Organizations, *organization)
		}

		for _, responsible := range data.Performer.Responsible {
			if responsible.Identifier == nil || responsible.Identifier.Value == "" {
				continue
			}
			role := fhir_dto.PractitionerRole{
				ResourceType: constvars.ResourcePractitionerRole,
				ID:           RandomID(),
				Practitioner: &fhir_dto.Reference{
					Type:       constvars.ResourcePractitioner,
					Identifier: &fhir_dto.Identifier{Value: responsible.Identifier.Value},
				},
				Code: []fhir_dto.CodeableConcept{{
					Coding: []fhir_dto.Coding{{
						System: constvars.SystemPractitionerRole,
						Code:   constvars.PractitionerRoleResponsibleObserver,
					}},
				}},
			}
			observation.Performer = append(observation.Performer, fhir_dto.Reference{
				Reference: constvars.ResourcePractitionerRole + "/" + role.ID,
			})
			built.PractitionerRoles = append(built.PractitionerRoles, role)
		}
	}

	return built
}

func orderIdentifiers(identifiers *hl7v2dto.ObservationIdentifiers) []fhir_dto.Identifier {
	if identifiers == nil {
		return nil
	}
	var result []fhir_dto.Identifier
	if identifiers.FillerNumber != nil && identifiers.FillerNumber.Identifier != "" {
		result = append(result, fhir_dto.Identifier{
			System: constvars.IdentifierSystemFillerNumber,
			Value:  identifiers.FillerNumber.Identifier,
		})
	}
	if identifiers.PlacerNumber != nil && identifiers.PlacerNumber.Identifier != "" {
		result = append(result, fhir_dto.Identifier{
			System: constvars.IdentifierSystemPlacerNumber,
			Value:  identifiers.PlacerNumber.Identifier,
		})
	}
	return result
}

// valueQuantity renders a numeric value with its unit code. A first number
// that does not parse yields no quantity at all rather than a zero value.
func valueQuantity(value *hl7v2dto.ValueData) *fhir_dto.Quantity {
	if len(value.Number) == 0 {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value.Number[0]), 64)
	if err != nil {
		return nil
	}
	quantity := &fhir_dto.Quantity{Value: parsed}
	if value.Units != nil {
		quantity.Unit = value.Units.Code
	}
	return quantity
}

func buildPerformingOrganization(performer *hl7v2dto.PerformerData) *fhir_dto.Organization {
	data := performer.Organization
	if data == nil || data.Identifier == "" {
		return nil
	}

	organization := &fhir_dto.Organization{
		ResourceType: constvars.ResourceOrganization,
		ID:           DeterministicID(data.Identifier),
		Name:         data.Name,
		Identifier: []fhir_dto.Identifier{{
			System: data.Authority,
			Type: &fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{Code: data.Type}},
			},
			Value: data.Identifier,
		}},
	}

	if performer.Address != nil {
		organization.Address = []fhir_dto.Address{{
			Line:       performer.Address.Line,
			City:       performer.Address.City,
			State:      performer.Address.State,
			PostalCode: performer.Address.PostalCode,
		}}
	}
	return organization
}

func buildSpecimen(data *hl7v2dto.SpecimenData, patientID string) *fhir_dto.Specimen {
	naturalKey := ""
	if data.Identifier != nil {
		naturalKey = data.Identifier.Value
	}
	id := RandomID()
	if naturalKey != "" {
		id = DeterministicID(naturalKey)
	}

	specimen := &fhir_dto.Specimen{
		ResourceType: constvars.ResourceSpecimen,
		ID:           id,
		Subject:      fhir_dto.Reference{Reference: constvars.ResourcePatient + "/" + patientID},
	}
	if data.Identifier != nil {
		specimen.Identifier = []fhir_dto.Identifier{{
			Use:    data.Identifier.Use,
			System: data.Identifier.System,
			Value:  data.Identifier.Value,
		}}
	}
	if data.Type != nil {
		specimen.Type = codeableConcept(data.Type)
	}
	if data.ReceivedTime != "" {
		specimen.ReceivedTime = utils.ConvertDateTimeToUTC(data.ReceivedTime)
	}
	return specimen
}
