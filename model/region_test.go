package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3Endpoint(t *testing.T) {
	testCases := []struct {
		region   string
		expected string
	}{
		{"us-east-1", "https://s3.amazonaws.com"},
		{"eu-west-1", "https://s3-eu-west-1.amazonaws.com"},
		{"ap-northeast-1", "https://s3-ap-northeast-1.amazonaws.com"},
		{"cn-north-1", "https://s3.cn-north-1.amazonaws.com.cn"},
		{"us-gov-west-1", "https://s3-us-gov-west-1.amazonaws.com"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.region, func(t *testing.T) {
			assert.Equal(t, testCase.expected, RegionForName(testCase.region).S3Endpoint())
		})
	}
}

func TestPartition(t *testing.T) {
	assert.Equal(t, "aws", RegionForName("eu-west-1").Partition())
	assert.Equal(t, "aws-cn", RegionForName("cn-northwest-1").Partition())
	assert.Equal(t, "aws-us-gov", RegionForName("us-gov-east-1").Partition())
}

func TestRegionPredicates(t *testing.T) {
	assert.True(t, RegionForName("cn-north-1").IsChina())
	assert.False(t, RegionForName("cn-north-1").SupportsKMS())
	assert.True(t, RegionForName("us-gov-west-1").IsGovcloud())
	assert.True(t, Region{}.IsEmpty())
	assert.Equal(t, "eu-west-1", RegionForName("eu-west-1").String())
}
