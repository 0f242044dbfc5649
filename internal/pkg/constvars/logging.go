package constvars

type contextKey string

const CONTEXT_REQUEST_ID_KEY contextKey = "requestID"

const (
	LoggingRequestIDKey    = "request_id"
	LoggingMessageTypeKey  = "message_type"
	LoggingControlIDKey    = "control_id"
	LoggingPatientIDKey    = "patient_id"
	LoggingResourceTypeKey = "resource_type"
	LoggingResourceIDKey   = "resource_id"
	LoggingObjectNameKey   = "object_name"
	LoggingBucketNameKey   = "bucket_name"
	LoggingQueueNameKey    = "queue_name"
	LoggingEntryCountKey   = "entry_count"

	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"
)
