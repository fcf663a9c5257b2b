package terraform

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// HeadBucketAPI is the slice of the S3 client used for backend checks
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// CheckStateBucket verifies the S3 state bucket backing a remote backend is
// reachable before terraform init runs. Callers downgrade failures to
// warnings; a missing bucket surfaces more readably here than from init.
func CheckStateBucket(ctx context.Context, client HeadBucketAPI, bucket string) error {
	if bucket == "" {
		return nil
	}
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("state bucket %s is not reachable: %w", bucket, err)
	}
	return nil
}
