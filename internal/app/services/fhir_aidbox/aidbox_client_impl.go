package fhir_aidbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/fhir_dto"
	"net/http"

	"go.uber.org/zap"
)

type aidboxClient struct {
	BaseUrl string
	Log     *zap.Logger
}

// NewAidboxClient returns the resource-store client used by the pipeline.
// Callers depend on the contracts.FHIRClient interface for abstraction.
func NewAidboxClient(baseUrl string, logger *zap.Logger) contracts.FHIRClient {
	return &aidboxClient{
		BaseUrl: baseUrl,
		Log:     logger,
	}
}

func (c *aidboxClient) ExistsByID(ctx context.Context, resourceType, id string) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s/%s", c.BaseUrl, resourceType, id), nil)
	if err != nil {
		c.Log.Error("aidboxClient.ExistsByID error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return false, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		c.Log.Error("aidboxClient.ExistsByID error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return false, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case constvars.StatusOK:
		return true, nil
	case constvars.StatusNotFound, constvars.StatusGone:
		return false, nil
	}

	bodyBytes, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return false, exceptions.ErrGetFHIRResource(rerr, resourceType)
	}
	err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	c.Log.Error("aidboxClient.ExistsByID unexpected response",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
		zap.Error(err),
	)
	return false, exceptions.ErrGetFHIRResource(err, resourceType)
}

func (c *aidboxClient) FindPatientByID(ctx context.Context, id string) (*fhir_dto.Patient, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s/%s", c.BaseUrl, constvars.ResourcePatient, id), nil)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		c.Log.Error("aidboxClient.FindPatientByID error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == constvars.StatusNotFound || resp.StatusCode == constvars.StatusGone {
		return nil, nil
	}
	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
		c.Log.Error("aidboxClient.FindPatientByID unexpected response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingResourceIDKey, id),
			zap.Error(err),
		)
		return nil, exceptions.ErrGetFHIRResource(err, constvars.ResourcePatient)
	}

	var patient fhir_dto.Patient
	if derr := json.NewDecoder(resp.Body).Decode(&patient); derr != nil {
		return nil, exceptions.ErrDecodeResponse(derr, constvars.ResourcePatient)
	}
	return &patient, nil
}

func (c *aidboxClient) PostTransactionBundle(ctx context.Context, bundle *fhir_dto.TransactionBundle) (*fhir_dto.FHIRBundle, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	requestJSON, err := json.Marshal(bundle)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, c.BaseUrl, bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		c.Log.Error("aidboxClient.PostTransactionBundle error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK && resp.StatusCode != constvars.StatusCreated {
		bodyBytes, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			c.Log.Error("aidboxClient.PostTransactionBundle error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(rerr),
			)
			return nil, exceptions.ErrPostTransactionBundle(rerr, constvars.ResourceBundle)
		}

		diagnostics := string(bodyBytes)
		var outcome fhir_dto.OperationOutcome
		if uerr := json.Unmarshal(bodyBytes, &outcome); uerr == nil && len(outcome.Issue) > 0 {
			diagnostics = outcome.Issue[0].Diagnostics
		}
		bundleErr := fmt.Errorf("status %d", resp.StatusCode)
		c.Log.Error("aidboxClient.PostTransactionBundle transaction rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("diagnostics", diagnostics),
		)
		return nil, exceptions.ErrPostTransactionBundle(bundleErr, diagnostics)
	}

	var result fhir_dto.FHIRBundle
	if derr := json.NewDecoder(resp.Body).Decode(&result); derr != nil {
		return nil, exceptions.ErrDecodeResponse(derr, constvars.ResourceBundle)
	}

	c.Log.Info("aidboxClient.PostTransactionBundle succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingEntryCountKey, len(bundle.Entry)),
	)
	return &result, nil
}
