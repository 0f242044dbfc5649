package hl7v2

import (
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"
)

// Source-vocabulary lookup tables. Every normalizer is total: unrecognized
// input falls through to its defined unknown/default value, never an error.

func normalizeGender(code string) string {
	switch code {
	case "F":
		return constvars.FhirGenderFemale
	case "M":
		return constvars.FhirGenderMale
	default:
		return constvars.FhirGenderUnknown
	}
}

func normalizeMaritalStatus(code string) fhir_dto.Coding {
	switch code {
	case "1":
		return fhir_dto.Coding{System: constvars.SystemMaritalStatus, Code: "A", Display: "Annulled"}
	case "13":
		return fhir_dto.Coding{System: constvars.SystemMaritalStatus, Code: "M", Display: "Married"}
	default:
		return fhir_dto.Coding{System: constvars.SystemMaritalStatus, Code: "UNK", Display: constvars.ResponseUnknown}
	}
}

func normalizeLanguage(code string) fhir_dto.Coding {
	switch code {
	case "13":
		return fhir_dto.Coding{System: constvars.SystemLanguages, Code: "pl-PL", Display: "Polish (Poland)"}
	case "27":
		return fhir_dto.Coding{System: constvars.SystemLanguages, Code: "zh-CN", Display: "Chinese (China)"}
	default:
		return fhir_dto.Coding{System: constvars.SystemLanguages, Code: "en-US", Display: "English (United States)"}
	}
}

func normalizeObservationStatus(code string) string {
	switch code {
	case "F":
		return constvars.FhirObservationStatusFinal
	case "C":
		return constvars.FhirObservationStatusCorrected
	case "X":
		return constvars.FhirObservationStatusCancelled
	default:
		return constvars.FhirObservationStatusRegistered
	}
}

// observationCategory classifies the locally significant vital-sign codes;
// everything else is treated as social history.
func observationCategory(code *hl7v2dto.CodedValue) fhir_dto.Coding {
	if code != nil {
		switch code.Code {
		case "1010.1", "1010.3":
			return fhir_dto.Coding{System: constvars.SystemObservationCategory, Code: constvars.ObservationCategoryVitalSigns}
		}
	}
	return fhir_dto.Coding{System: constvars.SystemObservationCategory, Code: constvars.ObservationCategorySocialHistory}
}

// observationCodings maps the locally significant measurement codes onto their
// standard codings, overriding any display text that arrived with them. The
// default branch passes the primary coding through verbatim, and an alternate
// coding present alongside the primary becomes a second entry rather than a
// replacement.
func observationCodings(code *hl7v2dto.CodedValue) []fhir_dto.Coding {
	if code == nil {
		return nil
	}

	var codings []fhir_dto.Coding
	switch code.Code {
	case "1010.1":
		codings = append(codings, fhir_dto.Coding{System: constvars.SystemLoinc, Code: "3141-9", Display: "Body weight Measured"})
	case "1010.3":
		codings = append(codings, fhir_dto.Coding{System: constvars.SystemLoinc, Code: "3137-7", Display: "Body height Measured"})
	default:
		codings = append(codings, fhir_dto.Coding{
			Code:    code.Code,
			System:  code.System,
			Display: code.Display,
			Version: code.Version,
		})
	}

	if code.HasAlternate() {
		codings = append(codings, fhir_dto.Coding{
			Code:    code.AlternateCode,
			System:  code.AlternateSystem,
			Display: code.AlternateDisplay,
		})
	}
	return codings
}

func normalizeImmunizationStatus(code string) string {
	switch code {
	case "CP", "completed":
		return constvars.FhirImmunizationStatusCompleted
	case "NA", "RE", "not-done":
		return constvars.FhirImmunizationStatusNotDone
	case "ER", "entered-in-error":
		return constvars.FhirImmunizationStatusEnteredErr
	default:
		return constvars.FhirImmunizationStatusCompleted
	}
}

// codeableConcept renders a tokenizer coded value as a concept, carrying the
// alternate coding when one is present. Nil in, nil out.
func codeableConcept(code *hl7v2dto.CodedValue) *fhir_dto.CodeableConcept {
	if code == nil {
		return nil
	}
	concept := &fhir_dto.CodeableConcept{
		Coding: []fhir_dto.Coding{{
			Code:    code.Code,
			System:  code.System,
			Display: code.Display,
			Version: code.Version,
		}},
		Text: code.Display,
	}
	if code.HasAlternate() {
		concept.Coding = append(concept.Coding, fhir_dto.Coding{
			Code:    code.AlternateCode,
			System:  code.AlternateSystem,
			Display: code.AlternateDisplay,
		})
	}
	return concept
}
