package constvars

// Client-facing messages.
const (
	ErrClientCannotProcessRequest          = "We cannot process your request, please try again"
	ErrClientSomethingWrongWithApplication = "Something is wrong with the application, please contact our staff"
	ErrClientMessageRejected               = "The message could not be processed, please verify its contents"
	ErrClientAttachmentNotFound            = "The requested attachment could not be found"
)

// Developer-facing messages.
const (
	ErrDevValidationFailed          = "Validation failed"
	ErrDevCannotParseJSON           = "Failed to parse JSON request body"
	ErrDevCannotMarshalJSON         = "Failed to marshal data into JSON"
	ErrDevCreateHTTPRequest         = "Failed to create HTTP request"
	ErrDevSendHTTPRequest           = "Failed to send HTTP request"
	ErrDevServerDeadlineExceeded    = "Server deadline exceeded"
	ErrDevMissingPatientGroup       = "Message is missing the patient group"
	ErrDevAidboxCreateFHIRResource  = "Failed to upsert FHIR resource: %s"
	ErrDevAidboxGetFHIRResource     = "Failed to get FHIR resource: %s"
	ErrDevAidboxPostTransaction     = "Failed to post transaction bundle: %s"
	ErrDevMinioFailedToCreateObject = "Failed to create object in bucket: %s"
	ErrDevMinioFailedToFindObject   = "Failed to find object in bucket: %s"
	ErrDevMinioFailedToDeleteObject = "Failed to delete object in bucket: %s"
	ErrDevMinioObjectNotFound       = "Object not found in bucket: %s"
	ErrDevDBFailedToInsertDocument  = "Failed to insert document to DB"
	ErrDevDBFailedToUpdateDocument  = "Failed to update document in DB"
	ErrDevDBFailedToFindDocument    = "Failed to find document in DB"
	ErrDevRedisGetData              = "Failed to get data from redis"
	ErrDevRedisSetData              = "Failed to set data to redis"
	ErrDevRedisDeleteData           = "Failed to delete data from redis"
	ErrDevRabbitMQPublishMessage    = "Failed to publish message to queue: %s"
	ErrDevRabbitMQConsumeMessage    = "Failed to consume messages from queue: %s"
)
