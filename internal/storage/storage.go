package storage

import (
	"context"
	"fmt"
	"strings"
)

// Resolver turns a stored media reference (thumbnail, video, banner) into a URL a
// client can fetch. Plain http(s) references are returned unchanged.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Passthrough returns every reference as stored. It is used when no object store is configured.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// ObjectRef is a parsed s3://bucket/key reference.
type ObjectRef struct {
	Bucket string
	Key    string
}

// IsObjectRef reports whether ref uses the s3 scheme.
func IsObjectRef(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "s3://")
}

// ParseObjectRef splits an s3://bucket/key reference.
func ParseObjectRef(ref string) (ObjectRef, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "s3://") {
		return ObjectRef{}, fmt.Errorf("invalid s3 location")
	}
	rest := strings.TrimPrefix(ref, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return ObjectRef{}, fmt.Errorf("invalid s3 location")
	}
	if len(parts) == 1 || strings.Trim(parts[1], "/") == "" {
		return ObjectRef{}, fmt.Errorf("s3 key missing")
	}
	return ObjectRef{Bucket: parts[0], Key: strings.TrimPrefix(parts[1], "/")}, nil
}

var _ Resolver = Passthrough{}
