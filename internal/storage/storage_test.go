package storage

import (
	"context"
	"errors"
	"testing"

	"tabqa/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "sources/abc.csv", SourceKey("abc", "people.csv"))
	assert.Equal(t, "sources/abc.xlsx", SourceKey("abc", "Report.XLSX"))
	assert.Equal(t, "sources/abc", SourceKey("abc", "noext"))
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{}, wantErr: "endpoint is required"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, wantErr: "credentials are required"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, wantErr: "bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}))
	assert.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}))
	assert.False(t, isNoSuchKey(errors.New("connection reset")))
}
