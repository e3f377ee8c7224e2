// Package dynamo stores tasks in a DynamoDB table keyed by
// userId (partition key) and todoId (sort key).
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-attachments/internal/models"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
)

// Attribute names are shared with the existing todos table.
const (
	attrUserID        = "userId"
	attrTodoID        = "todoId"
	attrAttachmentURL = "attachmentUrl"
)

// createdAtLayout matches the ISO strings already stored in the table.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Client is the subset of *dynamodb.Client used by the store.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type item struct {
	UserID        string  `dynamodbav:"userId"`
	TodoID        string  `dynamodbav:"todoId"`
	Name          string  `dynamodbav:"name"`
	CreatedAt     string  `dynamodbav:"createdAt"`
	DueDate       *string `dynamodbav:"dueDate,omitempty"`
	Done          bool    `dynamodbav:"done"`
	AttachmentURL *string `dynamodbav:"attachmentUrl,omitempty"`
}

func newItem(task models.Task) item {
	return item{
		UserID:        task.OwnerID,
		TodoID:        task.ID,
		Name:          task.Name,
		CreatedAt:     task.CreatedAt.UTC().Format(createdAtLayout),
		DueDate:       task.DueDate,
		Done:          task.Done,
		AttachmentURL: task.AttachmentRef,
	}
}

func (i item) task() (models.Task, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to parse createdAt %q: %w", i.CreatedAt, err)
	}
	return models.Task{
		OwnerID:       i.UserID,
		ID:            i.TodoID,
		Name:          i.Name,
		CreatedAt:     createdAt,
		DueDate:       i.DueDate,
		Done:          i.Done,
		AttachmentRef: i.AttachmentURL,
	}, nil
}

type Store struct {
	logger    zerolog.Logger
	client    Client
	tableName string
}

func NewStore(logger zerolog.Logger, client Client, tableName string) *Store {
	return &Store{
		logger:    logger,
		client:    client,
		tableName: tableName,
	}
}

func (s *Store) Insert(ctx context.Context, task models.Task) (*models.Task, error) {
	task.AttachmentURL = ""
	av, err := attributevalue.MarshalMap(newItem(task))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to marshal task")
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(" + attrTodoID + ")"),
	})
	if err != nil {
		if isConditionFailed(err) {
			s.logger.Error().
				Str("task_id", task.ID).
				Str("user_id", task.OwnerID).
				Msg("task already exists")
			return nil, storage.ErrTaskAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to put task")
		return nil, unavailable("put item", err)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return &task, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String(attrUserID + " = :userId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	tasks := make([]models.Task, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("user_id", ownerID).
				Msg("failed to query tasks by user id")
			return nil, unavailable("query", err)
		}

		var items []item
		err = attributevalue.UnmarshalListOfMaps(page.Items, &items)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to unmarshal tasks")
			return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
		}

		for _, it := range items {
			task, err := it.task()
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("task_id", it.TodoID).
					Msg("failed to decode task")
				return nil, err
			}
			tasks = append(tasks, task)
		}
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *Store) GetOne(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(ownerID, taskID),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		return nil, unavailable("get item", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var it item
	err = attributevalue.UnmarshalMap(out.Item, &it)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to unmarshal task")
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	task, err := it.task()
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("selected task")
	return &task, nil
}

func (s *Store) Update(ctx context.Context, ownerID, taskID string, update models.TaskUpdate) error {
	values := map[string]types.AttributeValue{
		":name": &types.AttributeValueMemberS{Value: update.Name},
		":done": &types.AttributeValueMemberBOOL{Value: update.Done},
	}

	expr := "SET #name = :name, done = :done"
	if update.DueDate != nil {
		expr = "SET #name = :name, dueDate = :dueDate, done = :done"
		values[":dueDate"] = &types.AttributeValueMemberS{Value: *update.DueDate}
	} else {
		expr += " REMOVE dueDate"
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       key(ownerID, taskID),
		ConditionExpression:       aws.String("attribute_exists(" + attrTodoID + ")"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  map[string]string{"#name": "name"},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	})
	if err != nil {
		if isConditionFailed(err) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", ownerID).
				Msg("task not found")
			return storage.ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return unavailable("update item", err)
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task")
	return nil
}

func (s *Store) SetAttachmentRef(ctx context.Context, ownerID, taskID, ref string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 key(ownerID, taskID),
		ConditionExpression: aws.String("attribute_exists(" + attrTodoID + ")"),
		UpdateExpression:    aws.String("SET " + attrAttachmentURL + " = :ref"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: ref},
		},
		ReturnValues: types.ReturnValueNone,
	})
	if err != nil {
		if isConditionFailed(err) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", ownerID).
				Msg("task not found")
			return storage.ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task attachment")
		return unavailable("update item", err)
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task attachment")
	return nil
}

func (s *Store) Delete(ctx context.Context, ownerID, taskID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(ownerID, taskID),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return unavailable("delete item", err)
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

func key(ownerID, taskID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: ownerID},
		attrTodoID: &types.AttributeValueMemberS{Value: taskID},
	}
}

func isConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", storage.ErrStoreUnavailable, op, err)
}
