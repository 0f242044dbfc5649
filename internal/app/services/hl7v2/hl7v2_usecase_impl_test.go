package hl7v2

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testORUMessage() *hl7v2dto.Message {
	return &hl7v2dto.Message{
		PatientGroup: &hl7v2dto.PatientGroup{Patient: testPatientData()},
	}
}

func testObservationData(code, display string) hl7v2dto.ObservationData {
	return hl7v2dto.ObservationData{
		Status: "F",
		Code:   &hl7v2dto.CodedValue{Code: code, System: "LN", Display: display},
		Value: &hl7v2dto.ValueData{
			String: []string{"105"},
			Number: hl7v2dto.StringList{"105"},
			Units:  &hl7v2dto.CodedValue{Code: "mg/dL"},
		},
	}
}

func TestProcessORUR01Idempotency(t *testing.T) {
	ctx := context.Background()
	message := testORUMessage()
	patientID := patientIdentity(message.PatientGroup.Patient)

	t.Run("first delivery creates", func(t *testing.T) {
		deps := newTestDeps()
		usecase := newTestUsecase(deps)

		result, err := usecase.ProcessORUR01(ctx, message)
		require.NoError(t, err)

		assert.Equal(t, patientID, result.PatientID)
		assert.Equal(t, "Patient", result.PatientURL)

		require.NotNil(t, deps.fhir.lastBundle)
		assert.Equal(t, "Patient", deps.fhir.lastBundle.Entry[0].Request.URL)
		assert.Equal(t, "PUT", deps.fhir.lastBundle.Entry[0].Request.Method)

		require.Len(t, deps.messageLog.logs, 1)
		assert.Equal(t, constvars.MessageLogStatusProcessed, deps.messageLog.logs[0].Status)
		assert.Equal(t, patientID, deps.messageLog.logs[0].PatientID)
		assert.Empty(t, deps.messageLog.logs[0].Error)
	})

	t.Run("redelivery against a stored patient replaces", func(t *testing.T) {
		deps := newTestDeps()
		deps.fhir.patients[patientID] = &fhir_dto.Patient{ResourceType: "Patient", ID: patientID}
		usecase := newTestUsecase(deps)

		result, err := usecase.ProcessORUR01(ctx, message)
		require.NoError(t, err)

		assert.Equal(t, patientID, result.PatientID)
		assert.Equal(t, "Patient/"+patientID, result.PatientURL)
		assert.Equal(t, "Patient/"+patientID, deps.fhir.lastBundle.Entry[0].Request.URL)
	})
}

func TestProcessORUR01DuplicateDeliveryShortCircuits(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	usecase := newTestUsecase(deps)

	message := testORUMessage()
	message.ControlID = "MSG-001"

	first, err := usecase.ProcessORUR01(ctx, message)
	require.NoError(t, err)

	second, err := usecase.ProcessORUR01(ctx, message)
	require.NoError(t, err)

	assert.Equal(t, 1, deps.fhir.postCalls)
	assert.Equal(t, first, second)
}

func TestProcessORUR01MissingPatientGroup(t *testing.T) {
	ctx := context.Background()
	usecase := newTestUsecase(newTestDeps())

	_, err := usecase.ProcessORUR01(ctx, &hl7v2dto.Message{})
	require.Error(t, err)

	_, err = usecase.ProcessORUR01(ctx, &hl7v2dto.Message{PatientGroup: &hl7v2dto.PatientGroup{}})
	require.Error(t, err)
}

// Every relative reference inside a bundle entry must point at a resource
// declared by a strictly earlier entry, so the transaction never forward
// references.
func TestProcessORUR01ReferencedBeforeReferrer(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	usecase := newTestUsecase(deps)

	observation := testObservationData("2345-7", "Glucose")
	observation.Performer = &hl7v2dto.PerformerData{
		Organization: &hl7v2dto.OrganizationData{Name: "Central Lab", Authority: "CLIA", Identifier: "LAB-01"},
		Responsible:  []hl7v2dto.ResponsibleData{{Identifier: &hl7v2dto.IdentifierEntry{Value: "RESP-9"}}},
	}

	message := testORUMessage()
	message.Visit = &hl7v2dto.Visit{
		VisitNumber:      "V-100",
		Locations:        []hl7v2dto.LocationData{{Identifier: &hl7v2dto.IdentifierEntry{Value: "WARD-3"}, Name: "Ward 3"}},
		AttendingDoctors: []hl7v2dto.PractitionerData{{Identifier: &hl7v2dto.IdentifierEntry{Value: "DOC-1"}, Family: "Nowak", Given: []string{"Jan"}}},
	}
	message.Specimens = []hl7v2dto.SpecimenGroup{{
		Specimen:     &hl7v2dto.SpecimenData{Identifier: &hl7v2dto.IdentifierEntry{Value: "SPC-1"}, Type: &hl7v2dto.CodedValue{Code: "BLD"}},
		Observations: []hl7v2dto.ObservationData{observation},
	}}
	message.OrderGroup = hl7v2dto.OrderGroupList{{
		Order: &hl7v2dto.OrderData{
			Code:       &hl7v2dto.CodedValue{Code: "24323-8", Display: "Comprehensive metabolic panel"},
			Identifier: &hl7v2dto.ObservationIdentifiers{FillerNumber: &hl7v2dto.NumberIdentifier{Identifier: "FN-1"}},
		},
		ObservationRequests: []hl7v2dto.OrderData{{
			Code:         &hl7v2dto.CodedValue{Code: "2345-7"},
			Observations: []hl7v2dto.ObservationData{testObservationData("2345-7", "Glucose")},
		}},
	}}

	_, err := usecase.ProcessORUR01(ctx, message)
	require.NoError(t, err)

	bundle := deps.fhir.lastBundle
	require.NotNil(t, bundle)
	require.Equal(t, "transaction", bundle.Type)

	declared := make(map[string]bool)
	for i, entry := range bundle.Entry {
		for _, ref := range referencesOf(t, entry.Resource) {
			assert.Truef(t, declared[ref], "entry %d references %s before it is declared", i, ref)
		}
		declared[resourceKey(t, entry.Resource)] = true
	}

	assert.NotEmpty(t, entriesOfType(t, bundle, "Location"))
	assert.NotEmpty(t, entriesOfType(t, bundle, "Encounter"))
	assert.NotEmpty(t, entriesOfType(t, bundle, "Specimen"))
	assert.NotEmpty(t, entriesOfType(t, bundle, "Organization"))
	assert.NotEmpty(t, entriesOfType(t, bundle, "PractitionerRole"))
	assert.NotEmpty(t, entriesOfType(t, bundle, "DiagnosticReport"))
}

func TestProcessORUR01RecursiveComposition(t *testing.T) {
	ctx := context.Background()

	t.Run("nested requests feed the primary report", func(t *testing.T) {
		deps := newTestDeps()
		usecase := newTestUsecase(deps)

		message := testORUMessage()
		message.OrderGroup = hl7v2dto.OrderGroupList{{
			Order: &hl7v2dto.OrderData{
				Code:       &hl7v2dto.CodedValue{Code: "24323-8"},
				Identifier: &hl7v2dto.ObservationIdentifiers{FillerNumber: &hl7v2dto.NumberIdentifier{Identifier: "FN-1"}},
			},
			ObservationRequests: []hl7v2dto.OrderData{
				{Code: &hl7v2dto.CodedValue{Code: "2345-7"}, Observations: []hl7v2dto.ObservationData{testObservationData("2345-7", "Glucose")}},
				{Code: &hl7v2dto.CodedValue{Code: "2160-0"}, Observations: []hl7v2dto.ObservationData{testObservationData("2160-0", "Creatinine")}},
			},
		}}

		_, err := usecase.ProcessORUR01(ctx, message)
		require.NoError(t, err)

		bundle := deps.fhir.lastBundle
		reports := entriesOfType(t, bundle, "DiagnosticReport")
		require.Len(t, reports, 3)

		observations := entriesOfType(t, bundle, "Observation")
		require.Len(t, observations, 2)

		// The primary report lands last, after every nested request.
		primary, ok := bundle.Entry[len(bundle.Entry)-1].Resource.(*fhir_dto.DiagnosticReport)
		require.True(t, ok)
		assert.Equal(t, DeterministicID("FN-1"), primary.ID)

		require.Len(t, primary.Result, 2)
		firstObservation := observations[0].Resource.(*fhir_dto.Observation)
		secondObservation := observations[1].Resource.(*fhir_dto.Observation)
		assert.Equal(t, "Observation/"+firstObservation.ID, primary.Result[0].Reference)
		assert.Equal(t, "Observation/"+secondObservation.ID, primary.Result[1].Reference)

		// Each child report carries its own observation.
		firstChild := reports[0].Resource.(*fhir_dto.DiagnosticReport)
		require.Len(t, firstChild.Result, 1)
		assert.Equal(t, "Observation/"+firstObservation.ID, firstChild.Result[0].Reference)
	})

	t.Run("direct observations stay ahead of nested ones", func(t *testing.T) {
		deps := newTestDeps()
		usecase := newTestUsecase(deps)

		message := testORUMessage()
		message.OrderGroup = hl7v2dto.OrderGroupList{{
			Order: &hl7v2dto.OrderData{
				Code:         &hl7v2dto.CodedValue{Code: "24323-8"},
				Identifier:   &hl7v2dto.ObservationIdentifiers{FillerNumber: &hl7v2dto.NumberIdentifier{Identifier: "FN-2"}},
				Observations: []hl7v2dto.ObservationData{testObservationData("2345-7", "Glucose")},
			},
			ObservationRequests: []hl7v2dto.OrderData{
				{Code: &hl7v2dto.CodedValue{Code: "2160-0"}, Observations: []hl7v2dto.ObservationData{testObservationData("2160-0", "Creatinine")}},
			},
		}}

		_, err := usecase.ProcessORUR01(ctx, message)
		require.NoError(t, err)

		bundle := deps.fhir.lastBundle
		observations := entriesOfType(t, bundle, "Observation")
		require.Len(t, observations, 2)

		primary, ok := bundle.Entry[len(bundle.Entry)-1].Resource.(*fhir_dto.DiagnosticReport)
		require.True(t, ok)
		require.Len(t, primary.Result, 2)

		direct := observations[0].Resource.(*fhir_dto.Observation)
		nested := observations[1].Resource.(*fhir_dto.Observation)
		assert.Equal(t, "Observation/"+direct.ID, primary.Result[0].Reference)
		assert.Equal(t, "Observation/"+nested.ID, primary.Result[1].Reference)
	})
}

func TestProcessORUR01TransactionFailure(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	deps.fhir.postErr = errors.New("store unavailable")
	usecase := newTestUsecase(deps)

	result, err := usecase.ProcessORUR01(ctx, testORUMessage())
	require.Error(t, err)
	assert.Nil(t, result)

	require.NotEmpty(t, deps.messageLog.logs)
	last := deps.messageLog.logs[len(deps.messageLog.logs)-1]
	assert.Equal(t, constvars.MessageLogStatusFailed, last.Status)
	assert.NotEmpty(t, last.Error)
}

func TestProcessVXUV04(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	usecase := newTestUsecase(deps)

	message := testORUMessage()
	message.SourcePatientID = "upstream-42"
	message.Immunization = &hl7v2dto.ImmunizationGroup{
		Status:         "CP",
		VaccineCode:    &hl7v2dto.CodedValue{Code: "08", System: "CVX", Display: "Hep B, adolescent or pediatric"},
		AdministeredAt: "20240105083000",
		LotNumber:      "A-771",
	}

	result, err := usecase.ProcessVXUV04(ctx, message)
	require.NoError(t, err)

	patientID := patientIdentity(message.PatientGroup.Patient)
	assert.Equal(t, patientID, result.PatientID)

	bundle := deps.fhir.lastBundle
	require.Len(t, bundle.Entry, 2)

	patient := bundle.Entry[0].Resource.(*fhir_dto.Patient)
	require.Len(t, patient.Link, 1)

	immunization := bundle.Entry[1].Resource.(*fhir_dto.Immunization)
	assert.Equal(t, DeterministicID(patientID, "08", "20240105083000"), immunization.ID)
	assert.Equal(t, "completed", immunization.Status)
	assert.Equal(t, "Patient/"+patientID, immunization.Patient.Reference)
	assert.Nil(t, immunization.Encounter)
	assert.Equal(t, "A-771", immunization.LotNumber)
}

func TestProcessORUR01AttachmentOffload(t *testing.T) {
	ctx := context.Background()
	payload := []byte("%PDF-1.4 report body")

	newMessage := func() *hl7v2dto.Message {
		message := testORUMessage()
		message.Specimens = []hl7v2dto.SpecimenGroup{{
			Observations: []hl7v2dto.ObservationData{{
				Status: "F",
				Code:   &hl7v2dto.CodedValue{Code: "11502-2", Display: "Laboratory report"},
				Value: &hl7v2dto.ValueData{
					Type: "ED",
					ED: []hl7v2dto.EmbeddedData{{
						DataSubtype: "PDF",
						Encoding:    "Base64",
						Data:        base64.StdEncoding.EncodeToString(payload),
					}},
				},
			}},
		}}
		return message
	}

	t.Run("embedded value lands under the composed key", func(t *testing.T) {
		deps := newTestDeps()
		usecase := newTestUsecase(deps)

		result, err := usecase.ProcessORUR01(ctx, newMessage())
		require.NoError(t, err)

		observations := entriesOfType(t, deps.fhir.lastBundle, "Observation")
		require.Len(t, observations, 1)
		observationID := observations[0].Resource.(*fhir_dto.Observation).ID

		key := testBucketName + "/" + result.PatientID + "/" + observationID + ".pdf"
		require.Contains(t, deps.storage.uploads, key)
		assert.Equal(t, payload, deps.storage.uploads[key])
	})

	t.Run("upload failure does not fail the run", func(t *testing.T) {
		deps := newTestDeps()
		deps.storage.uploadErr = errors.New("bucket unavailable")
		usecase := newTestUsecase(deps)

		_, err := usecase.ProcessORUR01(ctx, newMessage())
		require.NoError(t, err)
		assert.Equal(t, 1, deps.fhir.postCalls)
		assert.Empty(t, deps.storage.uploads)
	})
}

func TestFindMessageLogsByPatientID(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	usecase := newTestUsecase(deps)

	message := testORUMessage()
	result, err := usecase.ProcessORUR01(ctx, message)
	require.NoError(t, err)

	logs, err := usecase.FindMessageLogsByPatientID(ctx, result.PatientID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, constvars.MessageTypeORUR01, logs[0].MessageType)
	assert.Equal(t, constvars.MessageLogStatusProcessed, logs[0].Status)

	logs, err = usecase.FindMessageLogsByPatientID(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestFindAttachmentURL(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	deps.storage.uploads[testBucketName+"/P1/OBS1.pdf"] = []byte("data")
	usecase := newTestUsecase(deps)

	found, err := usecase.FindAttachmentURL(ctx, "P1", "OBS1")
	require.NoError(t, err)
	assert.Contains(t, found.URL, "P1/OBS1.pdf")

	_, err = usecase.FindAttachmentURL(ctx, "P1", "MISSING")
	require.Error(t, err)
}
