package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	"github.com/aws/aws-sdk-go-v2/service/glacier/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake Glacier API
 *************/

type fakeGlacier struct {
	GlacierAPI

	// inputs captured
	lastInitUpload *glacier.InitiateMultipartUploadInput
	lastUploadPart *glacier.UploadMultipartPartInput
	lastComplete   *glacier.CompleteMultipartUploadInput
	lastInitJob    *glacier.InitiateJobInput
	lastDescribe   *glacier.DescribeJobInput
	listMarkers    []string

	// outputs preset
	initUploadResp *glacier.InitiateMultipartUploadOutput
	uploadPartResp *glacier.UploadMultipartPartOutput
	completeResp   *glacier.CompleteMultipartUploadOutput
	initJobResp    *glacier.InitiateJobOutput
	describeResp   *glacier.DescribeJobOutput
	jobOutputResp  *glacier.GetJobOutputOutput
	listPages      []*glacier.ListVaultsOutput

	err error
}

func (f *fakeGlacier) InitiateMultipartUpload(ctx context.Context, in *glacier.InitiateMultipartUploadInput, _ ...func(*glacier.Options)) (*glacier.InitiateMultipartUploadOutput, error) {
	f.lastInitUpload = in
	return f.initUploadResp, f.err
}

func (f *fakeGlacier) UploadMultipartPart(ctx context.Context, in *glacier.UploadMultipartPartInput, _ ...func(*glacier.Options)) (*glacier.UploadMultipartPartOutput, error) {
	f.lastUploadPart = in
	return f.uploadPartResp, f.err
}

func (f *fakeGlacier) CompleteMultipartUpload(ctx context.Context, in *glacier.CompleteMultipartUploadInput, _ ...func(*glacier.Options)) (*glacier.CompleteMultipartUploadOutput, error) {
	f.lastComplete = in
	return f.completeResp, f.err
}

func (f *fakeGlacier) InitiateJob(ctx context.Context, in *glacier.InitiateJobInput, _ ...func(*glacier.Options)) (*glacier.InitiateJobOutput, error) {
	f.lastInitJob = in
	return f.initJobResp, f.err
}

func (f *fakeGlacier) DescribeJob(ctx context.Context, in *glacier.DescribeJobInput, _ ...func(*glacier.Options)) (*glacier.DescribeJobOutput, error) {
	f.lastDescribe = in
	return f.describeResp, f.err
}

func (f *fakeGlacier) GetJobOutput(ctx context.Context, in *glacier.GetJobOutputInput, _ ...func(*glacier.Options)) (*glacier.GetJobOutputOutput, error) {
	return f.jobOutputResp, f.err
}

func (f *fakeGlacier) ListVaults(ctx context.Context, in *glacier.ListVaultsInput, _ ...func(*glacier.Options)) (*glacier.ListVaultsOutput, error) {
	f.listMarkers = append(f.listMarkers, aws.ToString(in.Marker))
	if f.err != nil {
		return nil, f.err
	}
	page := f.listPages[0]
	f.listPages = f.listPages[1:]
	return page, nil
}

func (f *fakeGlacier) DeleteArchive(ctx context.Context, in *glacier.DeleteArchiveInput, _ ...func(*glacier.Options)) (*glacier.DeleteArchiveOutput, error) {
	return &glacier.DeleteArchiveOutput{}, f.err
}

func TestGlacierClient_MultipartUploadCalls(t *testing.T) {
	f := &fakeGlacier{
		initUploadResp: &glacier.InitiateMultipartUploadOutput{UploadId: aws.String("up-1"), Location: aws.String("/-/vaults/photos/multipart-uploads/up-1")},
		uploadPartResp: &glacier.UploadMultipartPartOutput{Checksum: aws.String("abc")},
		completeResp:   &glacier.CompleteMultipartUploadOutput{ArchiveId: aws.String("arch-1"), Location: aws.String("/-/vaults/photos/archives/arch-1"), Checksum: aws.String("def")},
	}
	c := NewGlacierClientFromAPI(f)
	ctx := context.Background()

	h, err := c.InitiateMultipartUpload(ctx, "photos", "trip", 8*common.MiB)
	require.NoError(t, err)
	assert.Equal(t, &UploadHandle{Vault: "photos", UploadID: "up-1", Location: "/-/vaults/photos/multipart-uploads/up-1", PartSize: 8 * common.MiB}, h)
	assert.Equal(t, "8388608", aws.ToString(f.lastInitUpload.PartSize))
	assert.Equal(t, "-", aws.ToString(f.lastInitUpload.AccountId))
	assert.Equal(t, "trip", aws.ToString(f.lastInitUpload.ArchiveDescription))

	sum := treehash.Sum([]byte("part"))
	got, err := c.UploadPart(ctx, h, ByteRange{Start: 8388608, End: 16777215}, sum, strings.NewReader("part"))
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Equal(t, "bytes 8388608-16777215/*", aws.ToString(f.lastUploadPart.Range))
	assert.Equal(t, sum.String(), aws.ToString(f.lastUploadPart.Checksum))
	assert.Equal(t, "up-1", aws.ToString(f.lastUploadPart.UploadId))

	receipt, err := c.CompleteMultipartUpload(ctx, h, 12345, sum)
	require.NoError(t, err)
	assert.Equal(t, "arch-1", receipt.ArchiveID)
	assert.Equal(t, "12345", aws.ToString(f.lastComplete.ArchiveSize))
	assert.Equal(t, sum.String(), aws.ToString(f.lastComplete.Checksum))
}

func TestGlacierClient_InitiateJobParameters(t *testing.T) {
	f := &fakeGlacier{initJobResp: &glacier.InitiateJobOutput{JobId: aws.String("job-1"), Location: aws.String("/-/vaults/photos/jobs/job-1")}}
	c := NewGlacierClientFromAPI(f)

	h, err := c.InitiateJob(context.Background(), "photos", JobSpec{Type: models.JobTypeInventory})
	require.NoError(t, err)
	assert.Equal(t, &JobHandle{JobID: "job-1", Location: "/-/vaults/photos/jobs/job-1"}, h)
	assert.Equal(t, "inventory-retrieval", aws.ToString(f.lastInitJob.JobParameters.Type))
	assert.Equal(t, "JSON", aws.ToString(f.lastInitJob.JobParameters.Format))
	assert.Nil(t, f.lastInitJob.JobParameters.ArchiveId)

	_, err = c.InitiateJob(context.Background(), "photos", JobSpec{Type: models.JobTypeRetrieval, ArchiveID: "arch-9"})
	require.NoError(t, err)
	assert.Equal(t, "archive-retrieval", aws.ToString(f.lastInitJob.JobParameters.Type))
	assert.Equal(t, "arch-9", aws.ToString(f.lastInitJob.JobParameters.ArchiveId))

	_, err = c.InitiateJob(context.Background(), "photos", JobSpec{Type: models.JobTypeRetrieval})
	require.Error(t, err)
}

func TestGlacierClient_DescribeJob(t *testing.T) {
	f := &fakeGlacier{describeResp: &glacier.DescribeJobOutput{
		Completed:      true,
		StatusCode:     types.StatusCodeSucceeded,
		SHA256TreeHash: aws.String("beef"),
	}}
	c := NewGlacierClientFromAPI(f)

	st, err := c.DescribeJob(context.Background(), "photos", "job-1")
	require.NoError(t, err)
	assert.Equal(t, &JobStatus{JobID: "job-1", Completed: true, Succeeded: true, StatusCode: "Succeeded", TreeHash: "beef"}, st)
	assert.Equal(t, "job-1", aws.ToString(f.lastDescribe.JobId))
}

func TestGlacierClient_GetJobOutput(t *testing.T) {
	f := &fakeGlacier{jobOutputResp: &glacier.GetJobOutputOutput{
		Body:     io.NopCloser(strings.NewReader("payload")),
		Checksum: aws.String("c0ffee"),
	}}
	c := NewGlacierClientFromAPI(f)

	out, err := c.GetJobOutput(context.Background(), "photos", "job-1")
	require.NoError(t, err)
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
	assert.Equal(t, "c0ffee", out.Checksum)
}

func TestGlacierClient_ListVaultsFollowsMarker(t *testing.T) {
	f := &fakeGlacier{listPages: []*glacier.ListVaultsOutput{
		{VaultList: []types.DescribeVaultOutput{{VaultName: aws.String("a")}}, Marker: aws.String("m1")},
		{VaultList: []types.DescribeVaultOutput{{VaultName: aws.String("b")}, {VaultName: aws.String("c")}}},
	}}
	c := NewGlacierClientFromAPI(f)

	vaults, err := c.ListVaults(context.Background())
	require.NoError(t, err)
	require.Len(t, vaults, 3)
	assert.Equal(t, "c", vaults[2].Name)
	assert.Equal(t, []string{"", "m1"}, f.listMarkers)
}

func TestGlacierClient_ErrorsWrapServiceError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		extra error
	}{
		{name: "generic", err: errors.New("connection reset")},
		{name: "not found", err: &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no vault"}, extra: ErrNotFound},
		{name: "denied", err: &smithy.GenericAPIError{Code: "AccessDeniedException"}, extra: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewGlacierClientFromAPI(&fakeGlacier{err: tt.err})

			err := c.DeleteArchive(context.Background(), "photos", "arch-1")
			require.ErrorIs(t, err, common.ErrService)
			require.ErrorIs(t, err, tt.err)
			if tt.extra != nil {
				require.ErrorIs(t, err, tt.extra)
			}
		})
	}
}

func TestGlacierClient_DeleteArchiveOK(t *testing.T) {
	c := NewGlacierClientFromAPI(&fakeGlacier{})
	require.NoError(t, c.DeleteArchive(context.Background(), "photos", "arch-1"))
}

func TestNewGlacierClient_AppliesOptions(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newGlacierFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newGlacierFromConfig = origLoad, origNew })

	var loadOptCount int
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		loadOptCount = len(optFns)
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.Equal(t, "backup", lo.SharedConfigProfile)
		require.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region}, nil
	}

	var endpoint string
	newGlacierFromConfig = func(cfg aws.Config, optFns ...func(*glacier.Options)) *glacier.Client {
		var o glacier.Options
		for _, fn := range optFns {
			fn(&o)
		}
		endpoint = aws.ToString(o.BaseEndpoint)
		return &glacier.Client{}
	}

	c, err := NewGlacierClient(context.Background(), Options{
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:4566",
		Profile:         "backup",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 3, loadOptCount)
	assert.Equal(t, "http://localhost:4566", endpoint)
}

func TestNewGlacierClient_LoadFailure(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewGlacierClient(context.Background(), Options{})
	require.ErrorIs(t, err, common.ErrService)
}

func TestByteRange_String(t *testing.T) {
	assert.Equal(t, "bytes 0-1048575/*", ByteRange{Start: 0, End: 1048575}.String())
}
