package accounts

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// GetAccountID resolves the AWS account the process is running in. Used only
// to stamp operations notifications with account context.
func GetAccountID(ctx context.Context, awsConfig aws.Config) (string, error) {
	stsClient := sts.NewFromConfig(awsConfig)

	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}

	return *result.Account, nil
}
