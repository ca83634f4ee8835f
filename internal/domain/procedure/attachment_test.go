package procedure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

// -- Mock Blob Store --

type mockBlobStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockBlobStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[name] = data
	m.types[name] = contentType
	return nil
}

func (m *mockBlobStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("object %s not found", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestAttachFile(t *testing.T) {
	repo := newMockLogRepo()
	store := newMockBlobStore()
	svc := newTestService(repo).WithStore(store)
	ctx := context.Background()

	p := &Log{PatientID: "P1", PatientName: "A", ProcedureName: "X", ProcedureDate: svcNow}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := []byte("%PDF-1.4 report")
	url, err := svc.AttachFile(ctx, p.ID, "report.pdf", bytes.NewReader(body), int64(len(body)), "application/pdf")
	if err != nil {
		t.Fatalf("AttachFile: %v", err)
	}

	wantPrefix := fmt.Sprintf("/api/v1/procedures/file/procedure_%d_", p.ID)
	if !strings.HasPrefix(url, wantPrefix) || !strings.HasSuffix(url, "_report.pdf") {
		t.Errorf("url = %q, want %s*_report.pdf", url, wantPrefix)
	}

	name := strings.TrimPrefix(url, "/api/v1/procedures/file/")
	rc, err := svc.OpenFile(ctx, name)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, body) {
		t.Errorf("stored content = %q, want %q", got, body)
	}
	if store.types[name] != "application/pdf" {
		t.Errorf("content type = %q", store.types[name])
	}
}

func TestAttachFileMissingProcedure(t *testing.T) {
	svc := newTestService(newMockLogRepo()).WithStore(newMockBlobStore())

	_, err := svc.AttachFile(context.Background(), 42, "report.pdf", strings.NewReader("x"), 1, "application/pdf")
	if err == nil {
		t.Error("expected error attaching to a missing procedure")
	}
}

func TestAttachFileWithoutStore(t *testing.T) {
	svc := newTestService(newMockLogRepo())

	if _, err := svc.AttachFile(context.Background(), 1, "r.pdf", strings.NewReader("x"), 1, ""); err == nil {
		t.Error("expected error when storage is not configured")
	}
	if _, err := svc.OpenFile(context.Background(), "anything"); err == nil {
		t.Error("expected error when storage is not configured")
	}
}
