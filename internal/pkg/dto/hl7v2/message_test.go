package hl7v2

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGroupListUnmarshal(t *testing.T) {
	t.Run("single object becomes one-element list", func(t *testing.T) {
		payload := []byte(`{"order_group": {"order": {"status": "F"}}}`)

		var message Message
		require.NoError(t, json.Unmarshal(payload, &message))

		require.Len(t, message.OrderGroup, 1)
		require.NotNil(t, message.OrderGroup[0].Order)
		assert.Equal(t, "F", message.OrderGroup[0].Order.Status)
	})

	t.Run("array stays a list", func(t *testing.T) {
		payload := []byte(`{"order_group": [{"order": {"status": "F"}}, {"order": {"status": "C"}}]}`)

		var message Message
		require.NoError(t, json.Unmarshal(payload, &message))

		require.Len(t, message.OrderGroup, 2)
		assert.Equal(t, "C", message.OrderGroup[1].Order.Status)
	})

	t.Run("null is absent", func(t *testing.T) {
		payload := []byte(`{"order_group": null}`)

		var message Message
		require.NoError(t, json.Unmarshal(payload, &message))
		assert.Nil(t, message.OrderGroup)
	})
}

func TestStringListUnmarshal(t *testing.T) {
	t.Run("bare string", func(t *testing.T) {
		var flags InterpretationData
		require.NoError(t, json.Unmarshal([]byte(`{"flag": "H"}`), &flags))
		assert.Equal(t, StringList{"H"}, flags.Flag)
	})

	t.Run("array of strings", func(t *testing.T) {
		var flags InterpretationData
		require.NoError(t, json.Unmarshal([]byte(`{"flag": ["H", "LL"]}`), &flags))
		assert.Equal(t, StringList{"H", "LL"}, flags.Flag)
	})

	t.Run("bare number", func(t *testing.T) {
		var value ValueData
		require.NoError(t, json.Unmarshal([]byte(`{"number": 72.5}`), &value))
		assert.Equal(t, StringList{"72.5"}, value.Number)
	})

	t.Run("array of numbers", func(t *testing.T) {
		var value ValueData
		require.NoError(t, json.Unmarshal([]byte(`{"number": [72.5, 73]}`), &value))
		assert.Equal(t, StringList{"72.5", "73"}, value.Number)
	})
}

func TestTelecomDataValue(t *testing.T) {
	assert.Equal(t, "jane@example.com", TelecomData{System: "email", Email: "jane@example.com"}.Value())
	assert.Equal(t, "555-0100", TelecomData{System: "phone", Use: "home", Phone: "555-0100"}.Value())
	assert.Equal(t, "", TelecomData{System: "pager"}.Value())
}

func TestPatientDataNaturalKey(t *testing.T) {
	patient := &PatientData{
		Name: []NameData{{Family: "Doe", Given: []string{"Jane", "Q"}}},
	}
	assert.Equal(t, "Jane", patient.FirstName())
	assert.Equal(t, "Doe", patient.LastName())

	empty := &PatientData{}
	assert.Equal(t, "", empty.FirstName())
	assert.Equal(t, "", empty.LastName())
}
