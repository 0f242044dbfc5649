package hl7v2

import (
	"context"
	"testing"

	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPatientData() *hl7v2dto.PatientData {
	return &hl7v2dto.PatientData{
		Name:      []hl7v2dto.NameData{{Family: "Kowalska", Given: []string{"Anna", "Maria"}}},
		BirthDate: "19850214",
		Gender:    "F",
	}
}

func TestBuildPatientUpsertURL(t *testing.T) {
	ctx := context.Background()
	data := testPatientData()
	patientID := patientIdentity(data)

	t.Run("unknown patient targets the type URL", func(t *testing.T) {
		client := newFakeFHIRClient()

		patient, url, err := buildPatient(ctx, client, data, "")
		require.NoError(t, err)

		assert.Equal(t, "Patient", url)
		assert.Equal(t, patientID, patient.ID)
	})

	t.Run("known patient targets its record URL", func(t *testing.T) {
		client := newFakeFHIRClient()
		client.patients[patientID] = &fhir_dto.Patient{ResourceType: "Patient", ID: patientID}

		patient, url, err := buildPatient(ctx, client, data, "")
		require.NoError(t, err)

		assert.Equal(t, "Patient/"+patientID, url)
		assert.Equal(t, patientID, patient.ID)
	})
}

func TestBuildPatientFieldMapping(t *testing.T) {
	ctx := context.Background()
	client := newFakeFHIRClient()

	data := testPatientData()
	data.Address = []hl7v2dto.AddressData{{Line: []string{"ul. Polna 12"}, City: "Warszawa"}}
	data.Identifier = []hl7v2dto.IdentifierEntry{
		{System: "urn:oid:2.16.840.1.113883.4.1", Value: "123-45-6789"},
		{Value: "no-system-dropped"},
	}
	data.MaritalStatus = "13"
	data.Language = "13"

	patient, _, err := buildPatient(ctx, client, data, "")
	require.NoError(t, err)

	assert.Equal(t, "1985-02-14", patient.BirthDate)
	assert.Equal(t, "female", patient.Gender)

	require.Len(t, patient.Address, 1)
	assert.Equal(t, "work", patient.Address[0].Use)

	require.Len(t, patient.Identifier, 1)
	assert.Equal(t, "123-45-6789", patient.Identifier[0].Value)

	require.NotNil(t, patient.MaritalStatus)
	assert.Equal(t, "M", patient.MaritalStatus.Coding[0].Code)

	require.Len(t, patient.Communication, 1)
	assert.Equal(t, "pl-PL", patient.Communication[0].Language.Coding[0].Code)
}

func TestBuildPatientMergesTelecom(t *testing.T) {
	ctx := context.Background()
	data := testPatientData()
	patientID := patientIdentity(data)

	client := newFakeFHIRClient()
	client.patients[patientID] = &fhir_dto.Patient{
		ResourceType: "Patient",
		ID:           patientID,
		Contact: []fhir_dto.PatientContact{{
			Telecom: []fhir_dto.ContactPoint{
				{Use: "home", System: "phone", Value: "+48 22 555 0100"},
				{System: "email", Value: "old@example.com"},
			},
		}},
	}

	data.Telecom = []hl7v2dto.TelecomData{
		{System: "email", Email: "new@example.com"},
	}

	patient, _, err := buildPatient(ctx, client, data, "")
	require.NoError(t, err)

	require.Len(t, patient.Contact, 1)
	telecom := patient.Contact[0].Telecom
	require.Len(t, telecom, 2)

	assert.Equal(t, "phone", telecom[0].System)
	assert.Equal(t, "+48 22 555 0100", telecom[0].Value)
	assert.Equal(t, "email", telecom[1].System)
	assert.Equal(t, "new@example.com", telecom[1].Value)
}

func TestMergeTelecomKeysPhoneByUse(t *testing.T) {
	existing := []fhir_dto.ContactPoint{
		{Use: "home", System: "phone", Value: "old-home"},
	}
	incoming := []hl7v2dto.TelecomData{
		{Use: "home", System: "phone", Phone: "new-home"},
		{Use: "temp", System: "phone", Phone: "new-temp"},
	}

	merged := mergeTelecom(existing, incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, "new-home", merged[0].Value)
	assert.Equal(t, "temp", merged[1].Use)
	assert.Equal(t, "new-temp", merged[1].Value)
}

func TestBuildPatientRaceEthnicityExtensions(t *testing.T) {
	ctx := context.Background()
	client := newFakeFHIRClient()

	data := testPatientData()
	data.Race = []hl7v2dto.CodedValue{
		{Code: "2106-3", System: "urn:oid:2.16.840.1.113883.6.238", Display: "White"},
	}
	data.Ethnicity = []hl7v2dto.CodedValue{
		{Code: "2186-5", System: "urn:oid:2.16.840.1.113883.6.238"},
	}

	patient, _, err := buildPatient(ctx, client, data, "")
	require.NoError(t, err)

	require.NotNil(t, patient.Meta)
	require.Len(t, patient.Extension, 2)

	race := patient.Extension[0]
	require.Len(t, race.Extension, 2)
	assert.Equal(t, "detailed", race.Extension[0].Url)
	require.NotNil(t, race.Extension[0].ValueCoding)
	assert.Equal(t, "2106-3", race.Extension[0].ValueCoding.Code)
	assert.Equal(t, "text", race.Extension[1].Url)
	assert.Equal(t, "White", race.Extension[1].ValueString)

	// Display absent, so the text entry falls back to the code.
	ethnicity := patient.Extension[1]
	assert.Equal(t, "2186-5", ethnicity.Extension[1].ValueString)
}

func TestBuildPatientSourceLink(t *testing.T) {
	ctx := context.Background()
	client := newFakeFHIRClient()

	patient, _, err := buildPatient(ctx, client, testPatientData(), "upstream-42")
	require.NoError(t, err)

	require.Len(t, patient.Link, 1)
	assert.Equal(t, "refer", patient.Link[0].Type)
	require.NotNil(t, patient.Link[0].Other.Identifier)
	assert.Equal(t, "upstream-42", patient.Link[0].Other.Identifier.Value)
}
