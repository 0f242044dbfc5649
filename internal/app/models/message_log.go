package models

import "time"

// MessageLog is one journal document per pipeline run.
type MessageLog struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	MessageType string    `bson:"messageType" json:"message_type"`
	ControlID   string    `bson:"controlId,omitempty" json:"control_id,omitempty"`
	Source      string    `bson:"source,omitempty" json:"source,omitempty"`
	PatientID   string    `bson:"patientId,omitempty" json:"patient_id,omitempty"`
	Status      string    `bson:"status" json:"status"`
	Error       string    `bson:"error,omitempty" json:"error,omitempty"`
	ReceivedAt  time.Time `bson:"receivedAt" json:"received_at"`
	ProcessedAt time.Time `bson:"processedAt" json:"processed_at"`
}
