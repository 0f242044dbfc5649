package constvars

const (
	ResponseUnknown = "unknown"
)

const (
	MessageTypeORUR01 = "ORU_R01"
	MessageTypeVXUV04 = "VXU_V04"
)

const (
	MongoCollectionHL7v2Messages = "hl7v2_messages"
)

const (
	MessageLogStatusProcessed = "processed"
	MessageLogStatusFailed    = "failed"
)

const (
	RedisKeyHL7v2MessageFormat = "hl7v2:msg:%s"
)

const (
	ProcessMessageSuccessMessage  = "Message processed successfully"
	FindAttachmentSuccessMessage  = "Attachment found successfully"
	FindMessageLogsSuccessMessage = "Message logs found successfully"
)
