package constvars

const (
	ResourcePatient          = "Patient"
	ResourceLocation         = "Location"
	ResourcePractitioner     = "Practitioner"
	ResourcePractitionerRole = "PractitionerRole"
	ResourceOrganization     = "Organization"
	ResourceEncounter        = "Encounter"
	ResourceSpecimen         = "Specimen"
	ResourceObservation      = "Observation"
	ResourceDiagnosticReport = "DiagnosticReport"
	ResourceImmunization     = "Immunization"
	ResourceBundle           = "Bundle"
)

const (
	FhirBundleTypeTransaction = "transaction"
)

const (
	FhirObservationStatusFinal      = "final"
	FhirObservationStatusCorrected  = "corrected"
	FhirObservationStatusCancelled  = "cancelled"
	FhirObservationStatusRegistered = "registered"
)

const (
	FhirGenderFemale  = "female"
	FhirGenderMale    = "male"
	FhirGenderUnknown = "unknown"
)

const (
	FhirEncounterStatusInProgress = "in-progress"
	FhirEncounterClassCode        = "IMP"
	FhirEncounterClassDisplay     = "inpatient encounter"
)

const (
	FhirImmunizationStatusCompleted  = "completed"
	FhirImmunizationStatusNotDone    = "not-done"
	FhirImmunizationStatusEnteredErr = "entered-in-error"
)

const (
	SystemMaritalStatus             = "http://terminology.hl7.org/CodeSystem/v3-MaritalStatus"
	SystemLanguages                 = "http://hl7.org/fhir/ValueSet/languages"
	SystemObservationCategory       = "http://terminology.hl7.org/CodeSystem/observation-category"
	SystemObservationInterpretation = "http://terminology.hl7.org/CodeSystem/v3-ObservationInterpretation"
	SystemPractitionerRole          = "http://terminology.hl7.org/CodeSystem/practitioner-role"
	SystemActCode                   = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	SystemLoinc                     = "http://loinc.org"
)

const (
	ObservationCategoryVitalSigns    = "vital-signs"
	ObservationCategorySocialHistory = "social-history"

	PractitionerRoleResponsibleObserver = "responsibleObserver"
)

const (
	USCorePatientProfile     = "http://hl7.org/fhir/us/core/StructureDefinition/us-core-patient"
	USCoreRaceExtension      = "http://hl7.org/fhir/us/core/StructureDefinition/us-core-race"
	USCoreEthnicityExtension = "http://hl7.org/fhir/us/core/StructureDefinition/us-core-ethnicity"
	ExtensionURLDetailed     = "detailed"
	ExtensionURLText         = "text"
)

const (
	ContactSystemEmail = "email"
	ContactSystemPhone = "phone"
	ContactUseHome     = "home"
	ContactUseTemp     = "temp"
	ContactUseWork     = "work"

	PatientLinkTypeRefer        = "refer"
	PatientLinkUpstreamIDSystem = "source_patient_id"
)

const (
	IdentifierSystemFillerNumber = "filler_number"
	IdentifierSystemPlacerNumber = "placer_number"
)
