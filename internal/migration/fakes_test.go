package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"prodmigrate/internal/catalog"
	"prodmigrate/internal/model"
	"prodmigrate/internal/sanity"
)

type fakeSource struct {
	payload  string
	listErr  error
	imageErr map[string]error

	mu           sync.Mutex
	imageFetches []string
}

func (s *fakeSource) FetchProducts(context.Context) ([]json.RawMessage, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s.payload), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *fakeSource) FetchImage(_ context.Context, url string) (catalog.Image, error) {
	s.mu.Lock()
	s.imageFetches = append(s.imageFetches, url)
	s.mu.Unlock()

	if err := s.imageErr[url]; err != nil {
		return catalog.Image{}, err
	}
	return catalog.Image{Data: []byte("img:" + url), ContentType: "image/png"}, nil
}

func (s *fakeSource) fetchedImages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.imageFetches...)
}

type recordingStore struct {
	uploadErr map[string]error
	createErr map[string]error
	delay     time.Duration

	mu       sync.Mutex
	uploads  []sanity.ImageUpload
	created  []model.ProductDocument
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *recordingStore) UploadImage(_ context.Context, upload sanity.ImageUpload) (sanity.Asset, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, upload)
	s.mu.Unlock()

	if err := s.uploadErr[upload.Filename]; err != nil {
		return sanity.Asset{}, err
	}
	return sanity.Asset{ID: "image-" + upload.Filename}, nil
}

func (s *recordingStore) CreateDocument(_ context.Context, doc any) (sanity.CreatedDocument, error) {
	product, ok := doc.(model.ProductDocument)
	if !ok {
		return sanity.CreatedDocument{}, errors.New("unexpected document type")
	}

	s.mu.Lock()
	s.created = append(s.created, product)
	n := len(s.created)
	s.mu.Unlock()

	if err := s.createErr[product.Name]; err != nil {
		return sanity.CreatedDocument{}, err
	}
	return sanity.CreatedDocument{ID: fmt.Sprintf("doc-%d", n)}, nil
}

func (s *recordingStore) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

func (s *recordingStore) createdDocs() []model.ProductDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ProductDocument(nil), s.created...)
}

// logBuffer collects zerolog output from concurrent tasks.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) logger() zerolog.Logger {
	return zerolog.New(b)
}
