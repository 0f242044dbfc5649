package hl7v2

import (
	"context"
	"fmt"
	"time"

	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/dto/responses"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type hl7v2Usecase struct {
	Log                  *zap.Logger
	FhirClient           contracts.FHIRClient
	RedisRepository      contracts.RedisRepository
	MessageLogRepository contracts.MessageLogRepository
	Storage              contracts.ObjectStorage
	InternalConfig       *config.InternalConfig
	Offloader            *attachmentOffloader
}

func NewHL7v2Usecase(
	logger *zap.Logger,
	fhirClient contracts.FHIRClient,
	redisRepository contracts.RedisRepository,
	messageLogRepository contracts.MessageLogRepository,
	storage contracts.ObjectStorage,
	internalConfig *config.InternalConfig,
) contracts.HL7v2Usecase {
	return &hl7v2Usecase{
		Log:                  logger,
		FhirClient:           fhirClient,
		RedisRepository:      redisRepository,
		MessageLogRepository: messageLogRepository,
		Storage:              storage,
		InternalConfig:       internalConfig,
		Offloader:            newAttachmentOffloader(storage, internalConfig.HL7v2.AttachmentBucketName, logger),
	}
}

func (uc *hl7v2Usecase) ProcessORUR01(ctx context.Context, message *hl7v2dto.Message) (*responses.ProcessMessage, error) {
	return uc.process(ctx, constvars.MessageTypeORUR01, message, uc.assembleORUR01)
}

func (uc *hl7v2Usecase) ProcessVXUV04(ctx context.Context, message *hl7v2dto.Message) (*responses.ProcessMessage, error) {
	return uc.process(ctx, constvars.MessageTypeVXUV04, message, uc.assembleVXUV04)
}

func (uc *hl7v2Usecase) FindAttachmentURL(ctx context.Context, patientID, observationID string) (*responses.AttachmentURL, error) {
	bucketName := uc.InternalConfig.HL7v2.AttachmentBucketName
	prefix := patientID + "/" + observationID

	url, found, err := uc.Storage.FindObjectURLByPrefix(ctx, bucketName, prefix)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, exceptions.ErrMinioObjectNotFound(fmt.Errorf("no object with prefix %s", prefix), bucketName)
	}
	return &responses.AttachmentURL{URL: url}, nil
}

func (uc *hl7v2Usecase) FindMessageLogsByPatientID(ctx context.Context, patientID string) ([]models.MessageLog, error) {
	return uc.MessageLogRepository.FindMessageLogsByPatientID(ctx, patientID)
}

type assembleFunc func(ctx context.Context, message *hl7v2dto.Message) (*fhir_dto.TransactionBundle, *responses.ProcessMessage, error)

// process wraps one pipeline run with the idempotency cache and the journal.
// The cache short-circuits duplicate deliveries keyed by control id; both the
// cache and the journal are best effort and never fail an otherwise good run.
func (uc *hl7v2Usecase) process(ctx context.Context, messageType string, message *hl7v2dto.Message, assemble assembleFunc) (*responses.ProcessMessage, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	receivedAt := time.Now().UTC()

	if message.PatientGroup == nil || message.PatientGroup.Patient == nil {
		return nil, exceptions.ErrMissingPatientGroup(fmt.Errorf("message type %s", messageType))
	}

	if cached := uc.findCachedResult(ctx, message.ControlID); cached != nil {
		uc.Log.Info("hl7v2Usecase.process duplicate delivery short-circuited",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageTypeKey, messageType),
			zap.String(constvars.LoggingControlIDKey, message.ControlID),
		)
		return cached, nil
	}

	bundle, result, err := assemble(ctx, message)
	if err != nil {
		uc.journal(ctx, messageType, message, "", receivedAt, err)
		return nil, err
	}

	_, err = uc.FhirClient.PostTransactionBundle(ctx, bundle)
	if err != nil {
		uc.journal(ctx, messageType, message, result.PatientID, receivedAt, err)
		return nil, err
	}

	uc.journal(ctx, messageType, message, result.PatientID, receivedAt, nil)
	uc.cacheResult(ctx, message.ControlID, result)

	uc.Log.Info("hl7v2Usecase.process message processed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageTypeKey, messageType),
		zap.String(constvars.LoggingPatientIDKey, result.PatientID),
		zap.Int(constvars.LoggingEntryCountKey, len(bundle.Entry)),
	)
	return result, nil
}

func (uc *hl7v2Usecase) findCachedResult(ctx context.Context, controlID string) *responses.ProcessMessage {
	if controlID == "" {
		return nil
	}
	key := fmt.Sprintf(constvars.RedisKeyHL7v2MessageFormat, controlID)
	cached, err := uc.RedisRepository.Get(ctx, key)
	if err != nil {
		uc.Log.Warn("hl7v2Usecase.findCachedResult cache read failed", zap.Error(err))
		return nil
	}
	if cached == "" {
		return nil
	}
	var result responses.ProcessMessage
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		return nil
	}
	return &result
}

func (uc *hl7v2Usecase) cacheResult(ctx context.Context, controlID string, result *responses.ProcessMessage) {
	if controlID == "" {
		return
	}
	key := fmt.Sprintf(constvars.RedisKeyHL7v2MessageFormat, controlID)
	ttl := time.Duration(uc.InternalConfig.HL7v2.IdempotencyTTLInMinute) * time.Minute
	if err := uc.RedisRepository.Set(ctx, key, result, ttl); err != nil {
		uc.Log.Warn("hl7v2Usecase.cacheResult cache write failed", zap.Error(err))
	}
}

func (uc *hl7v2Usecase) journal(ctx context.Context, messageType string, message *hl7v2dto.Message, patientID string, receivedAt time.Time, runErr error) {
	messageLog := &models.MessageLog{
		MessageType: messageType,
		ControlID:   message.ControlID,
		Source:      message.Src,
		PatientID:   patientID,
		Status:      constvars.MessageLogStatusProcessed,
		ReceivedAt:  receivedAt,
		ProcessedAt: time.Now().UTC(),
	}
	if runErr != nil {
		messageLog.Status = constvars.MessageLogStatusFailed
		messageLog.Error = runErr.Error()
	}
	if _, err := uc.MessageLogRepository.CreateMessageLog(ctx, messageLog); err != nil {
		uc.Log.Warn("hl7v2Usecase.journal write failed", zap.Error(err))
	}
}

// assembleORUR01 walks a lab result message in its fixed group order: patient,
// encounter context, specimens and their observations, then order groups with
// their reports and nested observation requests. Every entity is appended
// after the entities it references.
func (uc *hl7v2Usecase) assembleORUR01(ctx context.Context, message *hl7v2dto.Message) (*fhir_dto.TransactionBundle, *responses.ProcessMessage, error) {
	bundle := &fhir_dto.TransactionBundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeTransaction,
	}

	patient, patientURL, err := uc.appendPatient(ctx, bundle, message)
	if err != nil {
		return nil, nil, err
	}

	visit := message.Visit
	if visit == nil {
		visit = message.PatientGroup.Visit
	}
	encounterID, err := uc.appendEncounterContext(ctx, bundle, visit, patient.ID)
	if err != nil {
		return nil, nil, err
	}

	for i := range message.Specimens {
		uc.appendSpecimenGroup(ctx, bundle, &message.Specimens[i], patient.ID, encounterID)
	}

	orderGroups := message.OrderGroup
	if len(orderGroups) == 0 {
		orderGroups = message.PatientGroup.OrderGroup
	}
	for i := range orderGroups {
		uc.appendOrderGroup(ctx, bundle, &orderGroups[i], patient.ID, encounterID)
	}

	return bundle, &responses.ProcessMessage{PatientURL: patientURL, PatientID: patient.ID}, nil
}

// assembleVXUV04 walks an immunization message: patient, optional encounter
// context, then the immunization itself. The visit group may be absent
// entirely in the bare immunization-only variant.
func (uc *hl7v2Usecase) assembleVXUV04(ctx context.Context, message *hl7v2dto.Message) (*fhir_dto.TransactionBundle, *responses.ProcessMessage, error) {
	bundle := &fhir_dto.TransactionBundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeTransaction,
	}

	patient, patientURL, err := uc.appendPatient(ctx, bundle, message)
	if err != nil {
		return nil, nil, err
	}

	visit := message.PatientGroup.Visit
	if visit == nil {
		visit = message.Visit
	}
	encounterID, err := uc.appendEncounterContext(ctx, bundle, visit, patient.ID)
	if err != nil {
		return nil, nil, err
	}

	if message.Immunization != nil {
		immunization := buildImmunization(message.Immunization, patient.ID, encounterID)
		appendEntry(bundle, immunization, constvars.ResourceImmunization+"/"+immunization.ID)
	}

	return bundle, &responses.ProcessMessage{PatientURL: patientURL, PatientID: patient.ID}, nil
}

func (uc *hl7v2Usecase) appendPatient(ctx context.Context, bundle *fhir_dto.TransactionBundle, message *hl7v2dto.Message) (*fhir_dto.Patient, string, error) {
	patient, patientURL, err := buildPatient(ctx, uc.FhirClient, message.PatientGroup.Patient, message.SourcePatientID)
	if err != nil {
		return nil, "", err
	}
	appendEntry(bundle, patient, patientURL)
	return patient, patientURL, nil
}

func (uc *hl7v2Usecase) appendEncounterContext(ctx context.Context, bundle *fhir_dto.TransactionBundle, visit *hl7v2dto.Visit, patientID string) (string, error) {
	if visit == nil {
		return "", nil
	}

	locations, practitioners, encounter := buildEncounterContext(visit, patientID)

	for i := range locations {
		url, err := uc.upsertURL(ctx, constvars.ResourceLocation, locations[i].ID)
		if err != nil {
			return "", err
		}
		appendEntry(bundle, &locations[i], url)
	}

	for i := range practitioners {
		url, err := uc.upsertURL(ctx, constvars.ResourcePractitioner, practitioners[i].ID)
		if err != nil {
			return "", err
		}
		appendEntry(bundle, &practitioners[i], url)
	}

	appendEntry(bundle, encounter, constvars.ResourceEncounter+"/"+encounter.ID)
	return encounter.ID, nil
}

// upsertURL decides create-vs-replace for deterministic ids: the target URL
// carries the "/{id}" suffix only when the store already holds that record.
func (uc *hl7v2Usecase) upsertURL(ctx context.Context, resourceType, id string) (string, error) {
	exists, err := uc.FhirClient.ExistsByID(ctx, resourceType, id)
	if err != nil {
		return "", err
	}
	if exists {
		return resourceType + "/" + id, nil
	}
	return resourceType, nil
}

func (uc *hl7v2Usecase) appendSpecimenGroup(ctx context.Context, bundle *fhir_dto.TransactionBundle, group *hl7v2dto.SpecimenGroup, patientID, encounterID string) {
	specimenID := ""
	if group.Specimen != nil {
		specimen := buildSpecimen(group.Specimen, patientID)
		appendEntry(bundle, specimen, constvars.ResourceSpecimen+"/"+specimen.ID)
		specimenID = specimen.ID
	}

	for i := range group.Observations {
		observation := buildObservation(&group.Observations[i], patientID, specimenID, encounterID)
		uc.appendObservation(ctx, bundle, observation, patientID)
	}
}

func (uc *hl7v2Usecase) appendOrderGroup(ctx context.Context, bundle *fhir_dto.TransactionBundle, group *hl7v2dto.OrderGroup, patientID, encounterID string) {
	var parent *builtReport
	if group.Order != nil {
		built := buildDiagnosticReport(group.Order, patientID, encounterID)
		parent = &built
		uc.appendReportContents(ctx, bundle, parent, patientID)
	}

	for i := range group.Observations {
		observation := buildObservation(&group.Observations[i], patientID, "", encounterID)
		uc.appendObservation(ctx, bundle, observation, patientID)
	}

	for i := range group.ObservationRequests {
		uc.appendReportTree(ctx, bundle, &group.ObservationRequests[i], parent, patientID, encounterID)
	}

	// The primary report lands after the nested requests so its result list is
	// final before it is serialized into the bundle.
	if parent != nil {
		appendEntry(bundle, parent.Report, constvars.ResourceDiagnosticReport+"/"+parent.Report.ID)
	}
}

// appendReportTree recurses through nested observation-request groups. Each
// child observation's reference is appended to the parent report's result
// list in discovery order, on top of whatever the parent already collected
// from its own direct observations.
func (uc *hl7v2Usecase) appendReportTree(ctx context.Context, bundle *fhir_dto.TransactionBundle, data *hl7v2dto.OrderData, parent *builtReport, patientID, encounterID string) {
	built := buildDiagnosticReport(data, patientID, encounterID)
	child := &built

	uc.appendReportContents(ctx, bundle, child, patientID)

	if parent != nil {
		for _, observation := range child.Observations {
			parent.Report.Result = append(parent.Report.Result, fhir_dto.Reference{
				Reference: constvars.ResourceObservation + "/" + observation.Observation.ID,
			})
		}
	}

	for i := range data.ObservationRequests {
		uc.appendReportTree(ctx, bundle, &data.ObservationRequests[i], child, patientID, encounterID)
	}

	appendEntry(bundle, child.Report, constvars.ResourceDiagnosticReport+"/"+child.Report.ID)
}

func (uc *hl7v2Usecase) appendReportContents(ctx context.Context, bundle *fhir_dto.TransactionBundle, report *builtReport, patientID string) {
	for i := range report.PractitionerRoles {
		role := report.PractitionerRoles[i]
		appendEntry(bundle, &role, constvars.ResourcePractitionerRole+"/"+role.ID)
	}
	for _, observation := range report.Observations {
		uc.appendObservation(ctx, bundle, observation, patientID)
	}
}

// appendObservation lands an observation's secondaries first, then the
// observation itself, then offloads any embedded binary value.
func (uc *hl7v2Usecase) appendObservation(ctx context.Context, bundle *fhir_dto.TransactionBundle, observation builtObservation, patientID string) {
	for i := range observation.Organizations {
		organization := observation.Organizations[i]
		appendEntry(bundle, &organization, constvars.ResourceOrganization+"/"+organization.ID)
	}
	for i := range observation.PractitionerRoles {
		role := observation.PractitionerRoles[i]
		appendEntry(bundle, &role, constvars.ResourcePractitionerRole+"/"+role.ID)
	}
	appendEntry(bundle, observation.Observation, constvars.ResourceObservation+"/"+observation.Observation.ID)

	uc.Offloader.Offload(ctx, patientID, observation.Observation.ID, observation.value)
}

func appendEntry(bundle *fhir_dto.TransactionBundle, resource interface{}, url string) {
	bundle.Entry = append(bundle.Entry, fhir_dto.BundleEntry{
		Resource: resource,
		Request: fhir_dto.BundleRequest{
			Method: constvars.MethodPut,
			URL:    url,
		},
	})
}
