package procedure

import (
	"context"
	"fmt"
	"io"
)

// BlobStore is the object storage attachments live in.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
}

// WithStore enables file attachments on the service. Without a store the
// attachment operations report storage as unconfigured.
func (s *Service) WithStore(store BlobStore) *Service {
	s.store = store
	return s
}

// AttachFile stores an uploaded file against a procedure log entry and
// returns the download path. Object names embed the procedure id and an
// upload timestamp so re-uploads of the same filename never collide.
func (s *Service) AttachFile(ctx context.Context, procedureID int, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("attachment storage is not configured")
	}
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	if _, err := s.repo.GetByID(ctx, procedureID); err != nil {
		return "", fmt.Errorf("procedure log %d not found", procedureID)
	}
	name := fmt.Sprintf("procedure_%d_%d_%s", procedureID, s.now().UTC().UnixMilli(), filename)
	if err := s.store.Put(ctx, name, r, size, contentType); err != nil {
		return "", err
	}
	return "/api/v1/procedures/file/" + name, nil
}

// OpenFile opens a stored attachment for streaming. The caller closes the
// reader.
func (s *Service) OpenFile(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.store == nil {
		return nil, fmt.Errorf("attachment storage is not configured")
	}
	return s.store.Get(ctx, name)
}
