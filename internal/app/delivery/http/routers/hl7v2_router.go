package routers

import (
	"medbridge-service/internal/app/services/hl7v2"

	"github.com/go-chi/chi/v5"
)

func attachHL7v2Routes(router chi.Router, hl7v2Controller *hl7v2.HL7v2Controller) {
	router.Post("/ORU_R01", hl7v2Controller.ProcessORUR01)
	router.Post("/VXU_V04", hl7v2Controller.ProcessVXUV04)
	router.Get("/attachments/{patientID}/{observationID}", hl7v2Controller.FindAttachmentURL)
	router.Get("/messages/{patientID}", hl7v2Controller.FindMessageLogs)
}
