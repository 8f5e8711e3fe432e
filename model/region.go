package model

import (
	"fmt"
	"strings"
)

// Region represents an AWS region a stack is provisioned into.
type Region struct {
	Name string `yaml:"region,omitempty"`
}

func RegionForName(name string) Region {
	return Region{
		Name: name,
	}
}

func (r Region) String() string {
	return r.Name
}

// S3Endpoint returns the base URL used to build path-style object URLs
// for buckets in this region.
func (r Region) S3Endpoint() string {
	if r.IsChina() {
		return fmt.Sprintf("https://s3.%s.amazonaws.com.cn", r.Name)
	}
	if r.IsGovcloud() {
		return fmt.Sprintf("https://s3-%s.amazonaws.com", r.Name)
	}
	if r.Name != "" && r.Name != "us-east-1" {
		return fmt.Sprintf("https://s3-%s.amazonaws.com", r.Name)
	}
	return "https://s3.amazonaws.com"
}

func (r Region) Partition() string {
	if r.IsChina() {
		return "aws-cn"
	}
	if r.IsGovcloud() {
		return "aws-us-gov"
	}
	return "aws"
}

func (r Region) IsChina() bool {
	return strings.HasPrefix(r.Name, "cn-")
}

func (r Region) IsGovcloud() bool {
	return strings.HasPrefix(r.Name, "us-gov-")
}

func (r Region) IsEmpty() bool {
	return r.Name == ""
}

// SupportsKMS reports whether server-side encryption with customer managed
// KMS keys is available in this region.
func (r Region) SupportsKMS() bool {
	return !r.IsChina()
}
