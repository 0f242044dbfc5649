package responses

// ProcessMessage is the success payload of both pipeline entry points: the
// patient's upsert target URL and the identity computed for the patient.
type ProcessMessage struct {
	PatientURL string `json:"patient_url"`
	PatientID  string `json:"patient_id"`
}

type AttachmentURL struct {
	URL string `json:"url"`
}
