package hl7v2

import (
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"
	"medbridge-service/internal/pkg/utils"
)

// builtReport is one diagnostic report plus everything discovered under it:
// responsible-observer roles and the report's direct observations, each of
// which may carry its own secondaries.
type builtReport struct {
	Report            *fhir_dto.DiagnosticReport
	PractitionerRoles []fhir_dto.PractitionerRole
	Observations      []builtObservation
}

// buildDiagnosticReport populates a report from one order group. The report
// keys off the filler number when one is present so a corrected resubmission
// replaces the original report instead of duplicating it. Direct observations
// are built here and referenced from the report's result list; nested
// observation-request groups are the caller's recursion, not this builder's.
func buildDiagnosticReport(data *hl7v2dto.OrderData, patientID, encounterID string) builtReport {
	reportID := RandomID()
	if data.Identifier != nil && data.Identifier.FillerNumber != nil && data.Identifier.FillerNumber.Identifier != "" {
		reportID = DeterministicID(data.Identifier.FillerNumber.Identifier)
	}

	report := &fhir_dto.DiagnosticReport{
		ResourceType: constvars.ResourceDiagnosticReport,
		ID:           reportID,
		Status:       normalizeObservationStatus(data.Status),
		Subject:      fhir_dto.Reference{Reference: constvars.ResourcePatient + "/" + patientID},
	}
	built := builtReport{Report: report}

	if data.Code != nil {
		if concept := codeableConcept(data.Code); concept != nil {
			report.Code = *concept
		}
	}

	if encounterID != "" {
		report.Encounter = &fhir_dto.Reference{Reference: constvars.ResourceEncounter + "/" + encounterID}
	}

	report.Identifier = orderIdentifiers(data.Identifier)

	if data.Effective != nil && data.Effective.DateTime != "" {
		report.EffectiveDateTime = utils.ConvertDateTimeToUTC(data.Effective.DateTime)
	}
	if data.Issued != "" {
		report.Issued = utils.ConvertDateTimeToUTC(data.Issued)
	}

	if data.Performer != nil {
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
			report.Performer = append(report.Performer, fhir_dto.Reference{
				Reference: constvars.ResourcePractitionerRole + "/" + role.ID,
			})
			built.PractitionerRoles = append(built.PractitionerRoles, role)
		}
	}

	for i := range data.Observations {
		observation := buildObservation(&data.Observations[i], patientID, "", encounterID)
		report.Result = append(report.Result, fhir_dto.Reference{
			Reference: constvars.ResourceObservation + "/" + observation.Observation.ID,
		})
		built.Observations = append(built.Observations, observation)
	}

	return built
}
