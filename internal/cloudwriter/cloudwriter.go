package cloudwriter

import "context"

// CloudWriter buffers an object and uploads it on Close. Abort drops the
// buffer without uploading anything.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
	Abort() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error)
}
