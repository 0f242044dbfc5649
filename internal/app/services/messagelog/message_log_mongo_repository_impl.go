package messagelog

import (
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageLogMongoRepository struct {
	Collection *mongo.Collection
}

func NewMessageLogMongoRepository(db *mongo.Client, dbName string) contracts.MessageLogRepository {
	return &MessageLogMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionHL7v2Messages),
	}
}

func (r *MessageLogMongoRepository) CreateMessageLog(ctx context.Context, messageLog *models.MessageLog) (string, error) {
	result, err := r.Collection.InsertOne(ctx, messageLog)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	if objectID, ok := result.InsertedID.(primitive.ObjectID); ok {
		return objectID.Hex(), nil
	}
	return messageLog.ID, nil
}

func (r *MessageLogMongoRepository) FindMessageLogsByPatientID(ctx context.Context, patientID string) ([]models.MessageLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"patientId": patientID}, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var messageLogs []models.MessageLog
	if err := cursor.All(ctx, &messageLogs); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return messageLogs, nil
}
