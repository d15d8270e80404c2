package awssm

import "github.com/aws/aws-sdk-go-v2/aws"

// Config holds configuration for the AWS Secrets Manager key source.
type Config struct {
	// SecretName is the name or ARN of the secret holding the key
	SecretName string

	// Region is the AWS region (e.g., "eu-west-2")
	// If empty, uses AWS_REGION environment variable or AWS config file
	Region string

	// AWSConfig is an optional pre-configured AWS config
	// If provided, Region is ignored
	AWSConfig *aws.Config
}
