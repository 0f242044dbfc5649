package fhir_dto

import "encoding/json"

// TransactionBundle is the request shape posted to the FHIR base endpoint.
type TransactionBundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	Entry        []BundleEntry `json:"entry"`
}

type BundleEntry struct {
	Resource interface{}   `json:"resource"`
	Request  BundleRequest `json:"request"`
}

type BundleRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// FHIRBundle is the response shape returned by the store.
type FHIRBundle struct {
	ResourceType string          `json:"resourceType"`
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Total        int             `json:"total"`
	Entry        []ResponseEntry `json:"entry"`
}

type ResponseEntry struct {
	Resource json.RawMessage `json:"resource"`
}

type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics"`
}
