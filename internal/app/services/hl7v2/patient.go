package hl7v2

import (
	"context"
	"strings"

	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"
	"medbridge-service/internal/pkg/utils"
)

// buildPatient derives the patient's deterministic identity, probes the store
// to decide the upsert target URL, and populates only the fields the message
// carries so a partial update never clobbers stored data. The returned URL has
// an "/{id}" suffix only when the store already holds that record.
func buildPatient(ctx context.Context, fhirClient contracts.FHIRClient, data *hl7v2dto.PatientData, sourcePatientID string) (*fhir_dto.Patient, string, error) {
	patientID := patientIdentity(data)

	existing, err := fhirClient.FindPatientByID(ctx, patientID)
	if err != nil {
		return nil, "", err
	}

	patientURL := constvars.ResourcePatient
	if existing != nil {
		patientURL += "/" + patientID
	}

	patient := &fhir_dto.Patient{
		ResourceType: constvars.ResourcePatient,
		ID:           patientID,
	}

	for _, name := range data.Name {
		patient.Name = append(patient.Name, fhir_dto.HumanName{
			Use:    name.Use,
			Family: name.Family,
			Given:  name.Given,
			Prefix: name.Prefix,
			Suffix: name.Suffix,
		})
	}

	if data.BirthDate != "" {
		patient.BirthDate = utils.FormatDateOnly(data.BirthDate)
	}

	if data.Gender != "" {
		patient.Gender = normalizeGender(data.Gender)
	}

	for _, address := range data.Address {
		use := address.Use
		if use == "" {
			use = constvars.ContactUseWork
		}
		patient.Address = append(patient.Address, fhir_dto.Address{
			Use:        strings.ToLower(use),
			Line:       address.Line,
			City:       address.City,
			State:      address.State,
			PostalCode: address.PostalCode,
			Country:    address.Country,
		})
	}

	if len(data.Telecom) > 0 {
		var base []fhir_dto.ContactPoint
		if existing != nil && len(existing.Contact) > 0 {
			base = existing.Contact[0].Telecom
		}
		patient.Contact = []fhir_dto.PatientContact{
			{Telecom: mergeTelecom(base, data.Telecom)},
		}
	}

	for _, identifier := range data.Identifier {
		if identifier.System == "" {
			continue
		}
		patient.Identifier = append(patient.Identifier, fhir_dto.Identifier{
			Use:    identifier.Use,
			System: identifier.System,
			Value:  identifier.Value,
		})
	}

	if data.MaritalStatus != "" {
		patient.MaritalStatus = &fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{normalizeMaritalStatus(data.MaritalStatus)},
		}
	}

	if data.Language != "" {
		patient.Communication = []fhir_dto.PatientCommunication{
			{Language: fhir_dto.CodeableConcept{Coding: []fhir_dto.Coding{normalizeLanguage(data.Language)}}},
		}
	}

	if len(data.Race) > 0 || len(data.Ethnicity) > 0 {
		patient.Meta = &fhir_dto.Meta{Profile: []string{constvars.USCorePatientProfile}}
	}
	if len(data.Race) > 0 {
		patient.Extension = append(patient.Extension, codedValueExtension(constvars.USCoreRaceExtension, data.Race))
	}
	if len(data.Ethnicity) > 0 {
		patient.Extension = append(patient.Extension, codedValueExtension(constvars.USCoreEthnicityExtension, data.Ethnicity))
	}

	if sourcePatientID != "" {
		patient.Link = []fhir_dto.PatientLink{{
			Type: constvars.PatientLinkTypeRefer,
			Other: fhir_dto.Reference{
				Identifier: &fhir_dto.Identifier{
					System: constvars.PatientLinkUpstreamIDSystem,
					Value:  sourcePatientID,
				},
			},
		}}
	}

	return patient, patientURL, nil
}

// mergeTelecom is a keyed upsert-merge over the contact list: existing entries
// are indexed by (use, system), email by system alone, and incoming entries
// overlay on the same key. Entries the message does not mention survive.
func mergeTelecom(existing []fhir_dto.ContactPoint, incoming []hl7v2dto.TelecomData) []fhir_dto.ContactPoint {
	type contactKey struct {
		use    string
		system string
	}

	byKey := make(map[contactKey]fhir_dto.ContactPoint)
	var order []contactKey

	upsert := func(key contactKey, point fhir_dto.ContactPoint) {
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = point
	}

	for _, point := range existing {
		key := contactKey{use: point.Use, system: point.System}
		if point.System == constvars.ContactSystemEmail {
			key = contactKey{system: constvars.ContactSystemEmail}
		}
		upsert(key, point)
	}

	for _, item := range incoming {
		value := item.Value()
		switch {
		case item.System == constvars.ContactSystemEmail:
			upsert(contactKey{system: constvars.ContactSystemEmail}, fhir_dto.ContactPoint{
				System: constvars.ContactSystemEmail,
				Value:  value,
			})
		case item.System == constvars.ContactSystemPhone && item.Use == constvars.ContactUseHome:
			upsert(contactKey{use: constvars.ContactUseHome, system: constvars.ContactSystemPhone}, fhir_dto.ContactPoint{
				Use:    constvars.ContactUseHome,
				System: constvars.ContactSystemPhone,
				Value:  value,
			})
		case item.System == constvars.ContactSystemPhone && item.Use == constvars.ContactUseTemp:
			upsert(contactKey{use: constvars.ContactUseTemp, system: constvars.ContactSystemPhone}, fhir_dto.ContactPoint{
				Use:    constvars.ContactUseTemp,
				System: constvars.ContactSystemPhone,
				Value:  value,
			})
		}
	}

	merged := make([]fhir_dto.ContactPoint, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}
	return merged
}

// codedValueExtension renders race or ethnicity values as a nested extension:
// one "detailed" sub-extension per coding plus a trailing "text" entry taken
// from the first coding's display, or its code when no display arrived.
func codedValueExtension(url string, values []hl7v2dto.CodedValue) fhir_dto.Extension {
	extension := fhir_dto.Extension{Url: url}
	for _, value := range values {
		extension.Extension = append(extension.Extension, fhir_dto.Extension{
			Url: constvars.ExtensionURLDetailed,
			ValueCoding: &fhir_dto.Coding{
				System:  value.System,
				Code:    value.Code,
				Display: value.Display,
			},
		})
	}

	text := values[0].Display
	if text == "" {
		text = values[0].Code
	}
	extension.Extension = append(extension.Extension, fhir_dto.Extension{
		Url:         constvars.ExtensionURLText,
		ValueString: text,
	})
	return extension
}
