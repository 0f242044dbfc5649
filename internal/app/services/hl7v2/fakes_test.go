package hl7v2

import (
	"context"
	"strings"
	"testing"
	"time"

	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFHIRClient struct {
	existing   map[string]bool
	patients   map[string]*fhir_dto.Patient
	postErr    error
	postCalls  int
	lastBundle *fhir_dto.TransactionBundle
}

func newFakeFHIRClient() *fakeFHIRClient {
	return &fakeFHIRClient{
		existing: make(map[string]bool),
		patients: make(map[string]*fhir_dto.Patient),
	}
}

func (f *fakeFHIRClient) ExistsByID(ctx context.Context, resourceType, id string) (bool, error) {
	if resourceType == "Patient" {
		_, ok := f.patients[id]
		return ok, nil
	}
	return f.existing[resourceType+"/"+id], nil
}

func (f *fakeFHIRClient) FindPatientByID(ctx context.Context, id string) (*fhir_dto.Patient, error) {
	return f.patients[id], nil
}

func (f *fakeFHIRClient) PostTransactionBundle(ctx context.Context, bundle *fhir_dto.TransactionBundle) (*fhir_dto.FHIRBundle, error) {
	f.postCalls++
	f.lastBundle = bundle
	if f.postErr != nil {
		return nil, f.postErr
	}
	return &fhir_dto.FHIRBundle{ResourceType: "Bundle", Type: "transaction-response"}, nil
}

type fakeObjectStorage struct {
	uploadErr error
	uploads   map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{uploads: make(map[string][]byte)}
}

func (f *fakeObjectStorage) UploadObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[bucketName+"/"+objectName] = data
	return nil
}

func (f *fakeObjectStorage) FindObjectURLByPrefix(ctx context.Context, bucketName, prefix string) (string, bool, error) {
	for key := range f.uploads {
		if strings.HasPrefix(key, bucketName+"/"+prefix) {
			return "https://storage.local/" + key, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeObjectStorage) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	delete(f.uploads, bucketName+"/"+objectName)
	return nil
}

type fakeRedisRepository struct {
	store map[string]string
}

func newFakeRedisRepository() *fakeRedisRepository {
	return &fakeRedisRepository{store: make(map[string]string)}
}

func (f *fakeRedisRepository) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = string(data)
	return nil
}

func (f *fakeRedisRepository) Get(ctx context.Context, key string) (string, error) {
	return f.store[key], nil
}

type fakeMessageLogRepository struct {
	logs []models.MessageLog
}

func (f *fakeMessageLogRepository) CreateMessageLog(ctx context.Context, messageLog *models.MessageLog) (string, error) {
	f.logs = append(f.logs, *messageLog)
	return "log-id", nil
}

func (f *fakeMessageLogRepository) FindMessageLogsByPatientID(ctx context.Context, patientID string) ([]models.MessageLog, error) {
	var found []models.MessageLog
	for _, messageLog := range f.logs {
		if messageLog.PatientID == patientID {
			found = append(found, messageLog)
		}
	}
	return found, nil
}

const testBucketName = "lab-attachments"

type testDeps struct {
	fhir       *fakeFHIRClient
	storage    *fakeObjectStorage
	redis      *fakeRedisRepository
	messageLog *fakeMessageLogRepository
}

func newTestUsecase(deps *testDeps) *hl7v2Usecase {
	internalConfig := &config.InternalConfig{
		HL7v2: config.HL7v2{
			AttachmentBucketName:     testBucketName,
			IdempotencyTTLInMinute:   60,
			PresignedURLExpiryMinute: 15,
			PipelineTimeoutInSecond:  30,
		},
	}
	usecase := NewHL7v2Usecase(
		zap.NewNop(),
		deps.fhir,
		deps.redis,
		deps.messageLog,
		deps.storage,
		internalConfig,
	)
	return usecase.(*hl7v2Usecase)
}

func newTestDeps() *testDeps {
	return &testDeps{
		fhir:       newFakeFHIRClient(),
		storage:    newFakeObjectStorage(),
		redis:      newFakeRedisRepository(),
		messageLog: &fakeMessageLogRepository{},
	}
}

// resourceKey extracts the "Type/id" pair a bundle entry declares.
func resourceKey(t *testing.T, resource interface{}) string {
	t.Helper()
	data, err := json.Marshal(resource)
	require.NoError(t, err)

	var header struct {
		ResourceType string `json:"resourceType"`
		ID           string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &header))
	require.NotEmpty(t, header.ResourceType)
	require.NotEmpty(t, header.ID)
	return header.ResourceType + "/" + header.ID
}

// referencesOf collects every relative "reference" value inside a resource.
func referencesOf(t *testing.T, resource interface{}) []string {
	t.Helper()
	data, err := json.Marshal(resource)
	require.NoError(t, err)

	var decoded interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	var refs []string
	var walk func(node interface{})
	walk = func(node interface{}) {
		switch value := node.(type) {
		case map[string]interface{}:
			for key, child := range value {
				if key == "reference" {
					if ref, ok := child.(string); ok && strings.Contains(ref, "/") {
						refs = append(refs, ref)
					}
					continue
				}
				walk(child)
			}
		case []interface{}:
			for _, child := range value {
				walk(child)
			}
		}
	}
	walk(decoded)
	return refs
}

func entriesOfType(t *testing.T, bundle *fhir_dto.TransactionBundle, resourceType string) []fhir_dto.BundleEntry {
	t.Helper()
	var matched []fhir_dto.BundleEntry
	for _, entry := range bundle.Entry {
		if strings.HasPrefix(resourceKey(t, entry.Resource), resourceType+"/") {
			matched = append(matched, entry)
		}
	}
	return matched
}
