package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/picklr-io/clockwork/internal/eval"
	"github.com/picklr-io/clockwork/internal/ir"
)

const defaultS3Prefix = "clockwork/snapshots"

// objectAPI is the subset of the S3 client the backend calls.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// lockAPI is the subset of the DynamoDB client used for locking.
type lockAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// s3Backend stores snapshots in S3 with optional DynamoDB locking.
type s3Backend struct {
	bucket        string
	prefix        string
	region        string
	dynamoDBTable string
	encrypt       bool
	profile       string

	evaluator *eval.Evaluator
	objects   objectAPI
	locks     lockAPI
	retry     *RetryPolicy
	lockIDs   map[string]string
}

func newS3Backend(ctx context.Context, config map[string]string, evaluator *eval.Evaluator) (*s3Backend, error) {
	b, err := s3BackendFromConfig(config, evaluator)
	if err != nil {
		return nil, err
	}
	if err := b.initClients(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize S3 backend: %w", err)
	}
	return b, nil
}

func s3BackendFromConfig(config map[string]string, evaluator *eval.Evaluator) (*s3Backend, error) {
	bucket := config["bucket"]
	if bucket == "" {
		return nil, fmt.Errorf("s3 backend requires 'bucket' configuration")
	}

	prefix := config["prefix"]
	if prefix == "" {
		prefix = defaultS3Prefix
	}

	region := config["region"]
	if region == "" {
		region = "us-east-1"
	}

	return &s3Backend{
		bucket:        bucket,
		prefix:        prefix,
		region:        region,
		dynamoDBTable: config["dynamodb_table"],
		encrypt:       config["encrypt"] == "true",
		profile:       config["profile"],
		evaluator:     evaluator,
		retry:         DefaultRetryPolicy(),
		lockIDs:       make(map[string]string),
	}, nil
}

func (b *s3Backend) initClients(ctx context.Context) error {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(b.region)}
	if b.profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(b.profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("unable to load AWS config: %w", err)
	}

	b.objects = s3.NewFromConfig(cfg)
	if b.dynamoDBTable != "" {
		b.locks = dynamodb.NewFromConfig(cfg)
	}
	return nil
}

func (b *s3Backend) key(component string) string {
	return path.Join(b.prefix, component+".pkl")
}

func (b *s3Backend) Read(ctx context.Context, component string) (*ir.Snapshot, error) {
	key := b.key(component)

	var content []byte
	err := RetryWithBackoff(ctx, b.retry, func() error {
		result, err := b.objects.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer result.Body.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(result.Body); err != nil {
			return fmt.Errorf("failed to read S3 object body: %w", err)
		}
		content = buf.Bytes()
		return nil
	}, IsTransientError)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, component)
		}
		return nil, fmt.Errorf("failed to read snapshot from s3://%s/%s: %w", b.bucket, key, err)
	}

	content, err = DecryptSnapshot(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt remote snapshot: %w", err)
	}

	snap, err := b.evaluator.LoadSnapshotText(ctx, string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote snapshot: %w", err)
	}
	return snap, nil
}

func (b *s3Backend) Write(ctx context.Context, snap *ir.Snapshot) error {
	key := b.key(snap.Component)

	content, err := EncryptSnapshot([]byte(SerializeSnapshot(snap)))
	if err != nil {
		return fmt.Errorf("failed to encrypt snapshot: %w", err)
	}

	err = RetryWithBackoff(ctx, b.retry, func() error {
		input := &s3.PutObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(content),
		}
		if b.encrypt {
			input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
		}
		_, err := b.objects.PutObject(ctx, input)
		return err
	}, IsTransientError)
	if err != nil {
		return fmt.Errorf("failed to write snapshot to s3://%s/%s: %w", b.bucket, key, err)
	}
	return nil
}

func (b *s3Backend) Lock(ctx context.Context, component string) error {
	if b.locks == nil {
		return nil
	}

	key := b.key(component)
	lockID := fmt.Sprintf("clockwork-%d-%d", os.Getpid(), time.Now().UnixNano())

	_, err := b.locks.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.dynamoDBTable),
		Item: map[string]dbtypes.AttributeValue{
			"LockID":  &dbtypes.AttributeValueMemberS{Value: b.bucket + "/" + key},
			"Info":    &dbtypes.AttributeValueMemberS{Value: lockID},
			"Created": &dbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(LockID)"),
	})
	if err != nil {
		var ccf *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: delete the item with LockID=%q from DynamoDB table %q if no other run is active",
				ErrLocked, b.bucket+"/"+key, b.dynamoDBTable)
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	b.lockIDs[component] = lockID
	return nil
}

func (b *s3Backend) Unlock(ctx context.Context, component string) error {
	if b.locks == nil {
		return nil
	}

	key := b.key(component)
	_, err := b.locks.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.dynamoDBTable),
		Key: map[string]dbtypes.AttributeValue{
			"LockID": &dbtypes.AttributeValueMemberS{Value: b.bucket + "/" + key},
		},
		ConditionExpression: aws.String("Info = :id"),
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":id": &dbtypes.AttributeValueMemberS{Value: b.lockIDs[component]},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	delete(b.lockIDs, component)
	return nil
}

// isNotFound reports whether an S3 error means the object does not exist.
func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
