package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

// Store keeps finished export files. Locations are opaque to callers.
type Store interface {
	Name() string
	Put(ctx context.Context, key, contentType string, r io.Reader) (location string, err error)
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	Remove(ctx context.Context, location string) error
}

// LocalStore writes exports below a directory on disk.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	name := filepath.Base(key)
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return name, f.Close()
}

func (s *LocalStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, filepath.Base(location)))
}

func (s *LocalStore) Remove(_ context.Context, location string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(location)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// SupabaseStore keeps exports in a Supabase Storage bucket.
type SupabaseStore struct {
	client *storage.Client
	bucket string
	folder string
}

func NewSupabaseStore(url, key, bucket string) *SupabaseStore {
	return &SupabaseStore{
		client: storage.NewClient(url+"/storage/v1", key, nil),
		bucket: bucket,
		folder: "exports",
	}
}

func (s *SupabaseStore) Name() string { return "supabase" }

func (s *SupabaseStore) Put(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	objectPath := fmt.Sprintf("%s/%s", s.folder, filepath.Base(key))
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, r, options); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return objectPath, nil
}

func (s *SupabaseStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	data, err := s.client.DownloadFile(s.bucket, location)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", location, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SupabaseStore) Remove(_ context.Context, location string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{location}); err != nil {
		return fmt.Errorf("remove %s: %w", location, err)
	}
	return nil
}
