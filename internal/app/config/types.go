package config

type (
	InternalConfig struct {
		App   App
		FHIR  FHIR
		HL7v2 HL7v2
	}

	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		RabbitMQ RabbitMQ
		Minio    Minio
		Logger   Logger
	}

	App struct {
		Env             string
		Port            string
		Version         string
		Timezone        string
		EndpointPrefix  string
		MaxRequests     int
		ShutdownTimeout int
	}

	FHIR struct {
		BaseUrl string
	}

	HL7v2 struct {
		AttachmentBucketName     string
		InboundQueueName         string
		DeadLetterQueueName      string
		IdempotencyTTLInMinute   int
		PresignedURLExpiryMinute int
		PipelineTimeoutInSecond  int
	}

	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
	}

	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}

	Minio struct {
		Port     string
		Host     string
		Username string
		Password string
		UseSSL   bool
	}

	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)
