package hl7v2

import (
	"testing"

	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicID(t *testing.T) {
	t.Run("identical natural keys produce identical ids", func(t *testing.T) {
		assert.Equal(t, DeterministicID("Jane", "Doe", "1990-06-15"), DeterministicID("Jane", "Doe", "1990-06-15"))
	})

	t.Run("id is a fixed-width hex digest", func(t *testing.T) {
		id := DeterministicID("Jane", "Doe", "1990-06-15")
		assert.Len(t, id, 32)
		assert.Regexp(t, "^[0-9a-f]+$", id)
	})

	t.Run("part boundaries matter", func(t *testing.T) {
		assert.NotEqual(t, DeterministicID("ab", "c"), DeterministicID("a", "bc"))
	})

	t.Run("different keys produce different ids", func(t *testing.T) {
		assert.NotEqual(t, DeterministicID("Jane", "Doe", "1990-06-15"), DeterministicID("John", "Doe", "1990-06-15"))
	})
}

func TestRandomID(t *testing.T) {
	assert.NotEqual(t, RandomID(), RandomID())
}

func TestPatientIdentity(t *testing.T) {
	patient := &hl7v2dto.PatientData{
		Name:      []hl7v2dto.NameData{{Family: "Doe", Given: []string{"Jane"}}},
		BirthDate: "1990-06-15",
	}
	assert.Equal(t, DeterministicID("Jane", "Doe", "1990-06-15"), patientIdentity(patient))
}
