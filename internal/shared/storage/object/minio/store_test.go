package minio

import (
	"context"
	"testing"
)

func TestNewRequiresEndpointAndBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Bucket: "resumes"}); err == nil {
		t.Fatalf("expected error without endpoint")
	}
	if _, err := New(context.Background(), Options{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestObjectKeyTrimsLeadingSlash(t *testing.T) {
	if got := objectKey("/resumes/gen/AI_Resume.pdf"); got != "resumes/gen/AI_Resume.pdf" {
		t.Fatalf("unexpected key %q", got)
	}
}
