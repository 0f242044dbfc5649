package contracts

import (
	"context"
	"medbridge-service/internal/pkg/fhir_dto"
)

// FHIRClient is the resource-store boundary the pipeline depends on: an
// existence probe, a patient read for the contact merge, and an atomic
// transaction submission.
type FHIRClient interface {
	ExistsByID(ctx context.Context, resourceType, id string) (bool, error)
	FindPatientByID(ctx context.Context, id string) (*fhir_dto.Patient, error)
	PostTransactionBundle(ctx context.Context, bundle *fhir_dto.TransactionBundle) (*fhir_dto.FHIRBundle, error)
}
