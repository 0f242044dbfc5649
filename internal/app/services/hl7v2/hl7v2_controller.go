package hl7v2

import (
	"context"
	"errors"
	"net/http"
	"time"

	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/constvars"
	hl7v2dto "medbridge-service/internal/pkg/dto/hl7v2"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type HL7v2Controller struct {
	Log            *zap.Logger
	HL7v2Usecase   contracts.HL7v2Usecase
	InternalConfig *config.InternalConfig
}

func NewHL7v2Controller(logger *zap.Logger, hl7v2Usecase contracts.HL7v2Usecase, internalConfig *config.InternalConfig) *HL7v2Controller {
	return &HL7v2Controller{
		Log:            logger,
		HL7v2Usecase:   hl7v2Usecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *HL7v2Controller) ProcessORUR01(w http.ResponseWriter, r *http.Request) {
	message, ok := ctrl.decodeMessage(w, r)
	if !ok {
		return
	}

	ctx, cancel := ctrl.pipelineContext(r)
	defer cancel()

	result, err := ctrl.HL7v2Usecase.ProcessORUR01(ctx, message)
	if err != nil {
		// The pipeline wraps store errors, so the deadline shows on the
		// context rather than the returned error chain.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ProcessMessageSuccessMessage, result)
}

func (ctrl *HL7v2Controller) ProcessVXUV04(w http.ResponseWriter, r *http.Request) {
	message, ok := ctrl.decodeMessage(w, r)
	if !ok {
		return
	}

	ctx, cancel := ctrl.pipelineContext(r)
	defer cancel()

	result, err := ctrl.HL7v2Usecase.ProcessVXUV04(ctx, message)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ProcessMessageSuccessMessage, result)
}

func (ctrl *HL7v2Controller) FindAttachmentURL(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	observationID := chi.URLParam(r, "observationID")

	ctx, cancel := ctrl.pipelineContext(r)
	defer cancel()

	result, err := ctrl.HL7v2Usecase.FindAttachmentURL(ctx, patientID, observationID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.FindAttachmentSuccessMessage, result)
}

func (ctrl *HL7v2Controller) FindMessageLogs(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	ctx, cancel := ctrl.pipelineContext(r)
	defer cancel()

	result, err := ctrl.HL7v2Usecase.FindMessageLogsByPatientID(ctx, patientID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.FindMessageLogsSuccessMessage, result)
}

func (ctrl *HL7v2Controller) decodeMessage(w http.ResponseWriter, r *http.Request) (*hl7v2dto.Message, bool) {
	message := new(hl7v2dto.Message)
	err := json.NewDecoder(r.Body).Decode(&message)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return nil, false
	}

	err = utils.ValidateStruct(message)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return nil, false
	}
	return message, true
}

// pipelineContext carries the request id forward under a fresh deadline so a
// slow store cannot hold the inbound connection open indefinitely.
func (ctrl *HL7v2Controller) pipelineContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := time.Duration(ctrl.InternalConfig.HL7v2.PipelineTimeoutInSecond) * time.Second
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, requestID)
	return context.WithTimeout(ctx, timeout)
}
