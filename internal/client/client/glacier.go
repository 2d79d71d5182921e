package client

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	"github.com/aws/aws-sdk-go-v2/service/glacier/types"
	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
)

// GlacierAPI is the subset of *glacier.Client that GlacierClient uses.
type GlacierAPI interface {
	InitiateMultipartUpload(ctx context.Context, params *glacier.InitiateMultipartUploadInput, optFns ...func(*glacier.Options)) (*glacier.InitiateMultipartUploadOutput, error)
	UploadMultipartPart(ctx context.Context, params *glacier.UploadMultipartPartInput, optFns ...func(*glacier.Options)) (*glacier.UploadMultipartPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *glacier.CompleteMultipartUploadInput, optFns ...func(*glacier.Options)) (*glacier.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *glacier.AbortMultipartUploadInput, optFns ...func(*glacier.Options)) (*glacier.AbortMultipartUploadOutput, error)
	InitiateJob(ctx context.Context, params *glacier.InitiateJobInput, optFns ...func(*glacier.Options)) (*glacier.InitiateJobOutput, error)
	DescribeJob(ctx context.Context, params *glacier.DescribeJobInput, optFns ...func(*glacier.Options)) (*glacier.DescribeJobOutput, error)
	GetJobOutput(ctx context.Context, params *glacier.GetJobOutputInput, optFns ...func(*glacier.Options)) (*glacier.GetJobOutputOutput, error)
	CreateVault(ctx context.Context, params *glacier.CreateVaultInput, optFns ...func(*glacier.Options)) (*glacier.CreateVaultOutput, error)
	ListVaults(ctx context.Context, params *glacier.ListVaultsInput, optFns ...func(*glacier.Options)) (*glacier.ListVaultsOutput, error)
	DeleteArchive(ctx context.Context, params *glacier.DeleteArchiveInput, optFns ...func(*glacier.Options)) (*glacier.DeleteArchiveOutput, error)
}

// Test seams for SDK construction.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	newGlacierFromConfig = glacier.NewFromConfig
)

// Options selects the region, endpoint and credentials for GlacierClient.
// Empty fields fall back to the SDK's default chain.
type Options struct {
	Region          string
	Endpoint        string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
}

type GlacierClient struct {
	api GlacierAPI
}

var _ Client = (*GlacierClient)(nil)

// NewGlacierClient loads the AWS configuration and builds a client.
func NewGlacierClient(ctx context.Context, opts Options) (*GlacierClient, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error

	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, mapError("load aws config", err)
	}

	api := newGlacierFromConfig(cfg, func(o *glacier.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewGlacierClientFromAPI(api), nil
}

func NewGlacierClientFromAPI(api GlacierAPI) *GlacierClient {
	return &GlacierClient{api: api}
}

func (c *GlacierClient) InitiateMultipartUpload(ctx context.Context, vault, description string, partSize int64) (*UploadHandle, error) {
	out, err := c.api.InitiateMultipartUpload(ctx, &glacier.InitiateMultipartUploadInput{
		AccountId:          aws.String(common.AccountID),
		VaultName:          aws.String(vault),
		ArchiveDescription: aws.String(description),
		PartSize:           aws.String(strconv.FormatInt(partSize, 10)),
	})
	if err != nil {
		return nil, mapError("initiate multipart upload", err)
	}

	return &UploadHandle{
		Vault:    vault,
		UploadID: aws.ToString(out.UploadId),
		Location: aws.ToString(out.Location),
		PartSize: partSize,
	}, nil
}

func (c *GlacierClient) UploadPart(ctx context.Context, h *UploadHandle, rng ByteRange, checksum treehash.Digest, body io.ReadSeeker) (string, error) {
	out, err := c.api.UploadMultipartPart(ctx, &glacier.UploadMultipartPartInput{
		AccountId: aws.String(common.AccountID),
		VaultName: aws.String(h.Vault),
		UploadId:  aws.String(h.UploadID),
		Range:     aws.String(rng.String()),
		Checksum:  aws.String(checksum.String()),
		Body:      body,
	})
	if err != nil {
		return "", mapError("upload part "+rng.String(), err)
	}
	return aws.ToString(out.Checksum), nil
}

func (c *GlacierClient) CompleteMultipartUpload(ctx context.Context, h *UploadHandle, size int64, treeHash treehash.Digest) (*ArchiveReceipt, error) {
	out, err := c.api.CompleteMultipartUpload(ctx, &glacier.CompleteMultipartUploadInput{
		AccountId:   aws.String(common.AccountID),
		VaultName:   aws.String(h.Vault),
		UploadId:    aws.String(h.UploadID),
		ArchiveSize: aws.String(strconv.FormatInt(size, 10)),
		Checksum:    aws.String(treeHash.String()),
	})
	if err != nil {
		return nil, mapError("complete multipart upload", err)
	}

	return &ArchiveReceipt{
		ArchiveID: aws.ToString(out.ArchiveId),
		Location:  aws.ToString(out.Location),
		Checksum:  aws.ToString(out.Checksum),
	}, nil
}

func (c *GlacierClient) AbortMultipartUpload(ctx context.Context, h *UploadHandle) error {
	_, err := c.api.AbortMultipartUpload(ctx, &glacier.AbortMultipartUploadInput{
		AccountId: aws.String(common.AccountID),
		VaultName: aws.String(h.Vault),
		UploadId:  aws.String(h.UploadID),
	})
	return mapError("abort multipart upload", err)
}

func (c *GlacierClient) InitiateJob(ctx context.Context, vault string, spec JobSpec) (*JobHandle, error) {
	params := &types.JobParameters{
		Type: aws.String(spec.Type.ServiceType()),
	}
	if spec.Description != "" {
		params.Description = aws.String(spec.Description)
	}

	switch spec.Type {
	case models.JobTypeInventory:
		params.Format = aws.String("JSON")
	case models.JobTypeRetrieval:
		if spec.ArchiveID == "" {
			return nil, errors.New("initiate job: retrieval needs an archive id")
		}
		params.ArchiveId = aws.String(spec.ArchiveID)
	}

	out, err := c.api.InitiateJob(ctx, &glacier.InitiateJobInput{
		AccountId:     aws.String(common.AccountID),
		VaultName:     aws.String(vault),
		JobParameters: params,
	})
	if err != nil {
		return nil, mapError("initiate job", err)
	}

	return &JobHandle{
		JobID:    aws.ToString(out.JobId),
		Location: aws.ToString(out.Location),
	}, nil
}

func (c *GlacierClient) DescribeJob(ctx context.Context, vault, jobID string) (*JobStatus, error) {
	out, err := c.api.DescribeJob(ctx, &glacier.DescribeJobInput{
		AccountId: aws.String(common.AccountID),
		VaultName: aws.String(vault),
		JobId:     aws.String(jobID),
	})
	if err != nil {
		return nil, mapError("describe job", err)
	}

	return &JobStatus{
		JobID:         jobID,
		Completed:     out.Completed,
		Succeeded:     out.StatusCode == types.StatusCodeSucceeded,
		StatusCode:    string(out.StatusCode),
		StatusMessage: aws.ToString(out.StatusMessage),
		TreeHash:      aws.ToString(out.SHA256TreeHash),
	}, nil
}

func (c *GlacierClient) GetJobOutput(ctx context.Context, vault, jobID string) (*JobOutput, error) {
	out, err := c.api.GetJobOutput(ctx, &glacier.GetJobOutputInput{
		AccountId: aws.String(common.AccountID),
		VaultName: aws.String(vault),
		JobId:     aws.String(jobID),
	})
	if err != nil {
		return nil, mapError("get job output", err)
	}

	return &JobOutput{
		Body:        out.Body,
		Checksum:    aws.ToString(out.Checksum),
		Description: aws.ToString(out.ArchiveDescription),
	}, nil
}

func (c *GlacierClient) CreateVault(ctx context.Context, vault string) (string, error) {
	out, err := c.api.CreateVault(ctx, &glacier.CreateVaultInput{
		AccountId: aws.String(common.AccountID),
		VaultName: aws.String(vault),
	})
	if err != nil {
		return "", mapError("create vault", err)
	}
	return aws.ToString(out.Location), nil
}

// ListVaults follows the service's marker pagination to the end.
func (c *GlacierClient) ListVaults(ctx context.Context) ([]VaultSummary, error) {
	var (
		result []VaultSummary
		marker *string
	)

	for {
		out, err := c.api.ListVaults(ctx, &glacier.ListVaultsInput{
			AccountId: aws.String(common.AccountID),
			Marker:    marker,
		})
		if err != nil {
			return nil, mapError("list vaults", err)
		}

		for _, v := range out.VaultList {
			result = append(result, VaultSummary{
				Name: aws.ToString(v.VaultName),
				ARN:  aws.ToString(v.VaultARN),
			})
		}

		if aws.ToString(out.Marker) == "" {
			return result, nil
		}
		marker = out.Marker
	}
}

func (c *GlacierClient) DeleteArchive(ctx context.Context, vault, archiveID string) error {
	_, err := c.api.DeleteArchive(ctx, &glacier.DeleteArchiveInput{
		AccountId: aws.String(common.AccountID),
		VaultName: aws.String(vault),
		ArchiveId: aws.String(archiveID),
	})
	return mapError("delete archive", err)
}
