package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/dto/responses"
)

// HL7v2Usecase exposes the two supported pipeline entry points plus the
// read surfaces for what a run left behind: the offloaded attachment and
// the journal of past runs.
type HL7v2Usecase interface {
	ProcessORUR01(ctx context.Context, message *hl7v2.Message) (*responses.ProcessMessage, error)
	ProcessVXUV04(ctx context.Context, message *hl7v2.Message) (*responses.ProcessMessage, error)
	FindAttachmentURL(ctx context.Context, patientID, observationID string) (*responses.AttachmentURL, error)
	FindMessageLogsByPatientID(ctx context.Context, patientID string) ([]models.MessageLog, error)
}
