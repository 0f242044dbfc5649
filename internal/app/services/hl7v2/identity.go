package hl7v2

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"

	"github.com/google/uuid"
)

// DeterministicID derives a stable resource id from an ordered natural key.
// Identical parts always yield the identical id, which is what makes
// re-submitting the same message an upsert instead of a duplicate insert.
func DeterministicID(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// RandomID is for entities with no natural key, such as a single observation
// instance or a practitioner-role join record.
func RandomID() string {
	return uuid.NewString()
}

func patientIdentity(patient *hl7v2dto.PatientData) string {
	return DeterministicID(patient.FirstName(), patient.LastName(), patient.BirthDate)
}
