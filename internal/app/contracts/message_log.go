package contracts

import (
	"context"
	"medbridge-service/internal/app/models"
)

type MessageLogRepository interface {
	CreateMessageLog(ctx context.Context, messageLog *models.MessageLog) (string, error)
	FindMessageLogsByPatientID(ctx context.Context, patientID string) ([]models.MessageLog, error)
}
