package hl7v2

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"

	"go.uber.org/zap"
)

const embeddedDataValueType = "ED"

// attachmentOffloader moves embedded binary observation values out to object
// storage. The observation itself never carries the bytes or a URL; retrieval
// recomputes the same "{patientID}/{observationID}{ext}" key later.
type attachmentOffloader struct {
	Storage    contracts.ObjectStorage
	BucketName string
	Log        *zap.Logger
}

func newAttachmentOffloader(storage contracts.ObjectStorage, bucketName string, logger *zap.Logger) *attachmentOffloader {
	return &attachmentOffloader{
		Storage:    storage,
		BucketName: bucketName,
		Log:        logger,
	}
}

// Offload decodes and uploads an embedded binary value. An upload or decode
// failure is logged and swallowed; the clinical record still commits without
// a pointer to the missing file.
func (o *attachmentOffloader) Offload(ctx context.Context, patientID, observationID string, value *hl7v2dto.ValueData) {
	if value == nil || value.Type != embeddedDataValueType || len(value.ED) == 0 {
		return
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	embedded := value.ED[0]
	decoded, err := base64.StdEncoding.DecodeString(embedded.Data)
	if err != nil {
		o.Log.Error("attachmentOffloader.Offload failed to decode embedded data",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, patientID),
			zap.Error(err),
		)
		return
	}

	objectName := fmt.Sprintf("%s/%s.%s", patientID, observationID, strings.ToLower(embedded.DataSubtype))
	err = o.Storage.UploadObject(ctx, o.BucketName, objectName, decoded, "")
	if err != nil {
		o.Log.Error("attachmentOffloader.Offload failed to upload attachment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketNameKey, o.BucketName),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
		return
	}

	o.Log.Info("attachmentOffloader.Offload stored attachment",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectNameKey, objectName),
	)
}
