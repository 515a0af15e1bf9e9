package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"photo_commerce/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) CreatePhoto(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	args := m.Called(ctx, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) ListGalleryPhotos(ctx context.Context, galleryID uuid.UUID) ([]models.Photo, error) {
	args := m.Called(ctx, galleryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) ListPhotosByIDs(ctx context.Context, galleryID uuid.UUID, ids []uuid.UUID) ([]models.Photo, error) {
	args := m.Called(ctx, galleryID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) CountGalleryPhotos(ctx context.Context, galleryID uuid.UUID) (int, error) {
	args := m.Called(ctx, galleryID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhotoRepository) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error {
	args := m.Called(ctx, id, sortOrder)
	return args.Error(0)
}

func (m *MockPhotoRepository) UpdatePriceOverride(ctx context.Context, id uuid.UUID, priceCents *int64) error {
	args := m.Called(ctx, id, priceCents)
	return args.Error(0)
}

func (m *MockPhotoRepository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) CreateGallery(ctx context.Context, gallery models.Gallery) (uuid.UUID, error) {
	args := m.Called(ctx, gallery)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockGalleryRepository) UpdateGallery(ctx context.Context, gallery models.Gallery) error {
	args := m.Called(ctx, gallery)
	return args.Error(0)
}

func (m *MockGalleryRepository) UpdateGalleryStatus(ctx context.Context, id uuid.UUID, status models.GalleryStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockGalleryRepository) ReplaceTierSchedule(ctx context.Context, id uuid.UUID, tiers models.TierSchedule, enabled bool) error {
	args := m.Called(ctx, id, tiers, enabled)
	return args.Error(0)
}

func (m *MockGalleryRepository) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleryBySlug(ctx context.Context, slug string, publishedOnly bool) (models.Gallery, error) {
	args := m.Called(ctx, slug, publishedOnly)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleries(ctx context.Context, statusFilter string, page, perPage int) ([]models.Gallery, int, error) {
	args := m.Called(ctx, statusFilter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Gallery), args.Int(1), args.Error(2)
}

// memoryStore is an in-memory blob store that can be told to fail writes
// whose path contains a marker, for exercising cleanup behavior.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Put(_ context.Context, objectPath string, r io.Reader) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn != "" && strings.Contains(objectPath, s.failOn) {
		return 0, errors.New("disk full")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.objects[objectPath] = data

	return int64(len(data)), nil
}

func (s *memoryStore) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[objectPath]
	if !ok {
		return nil, errors.New("not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, objectPath)
	s.deleted = append(s.deleted, objectPath)

	return nil
}

func (s *memoryStore) BaseDir() string { return "" }

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

func multipartFile(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photos", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)

	files := form.File["photos"]
	require.Len(t, files, 1)

	return files[0]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIngestBatch_ThreeVariantsAndRecord(t *testing.T) {
	photoRepo := new(MockPhotoRepository)
	galleryRepo := new(MockGalleryRepository)
	store := newMemoryStore()

	galleryID := uuid.New()
	galleryRepo.On("GetGalleryByID", mock.Anything, galleryID).
		Return(models.Gallery{ID: galleryID}, nil)

	photoRepo.On("CreatePhoto", mock.Anything, mock.MatchedBy(func(p *models.Photo) bool {
		return p.GalleryID == galleryID && p.Filename == "wedding-001.jpg"
	})).Return(&models.Photo{ID: uuid.New(), GalleryID: galleryID}, nil)

	svc := NewPhotoService(discardLogger(), photoRepo, galleryRepo, store, 50<<20, "STUDIO")

	original := jpegBytes(t, 800, 600)
	file := multipartFile(t, "wedding-001.jpg", original)

	result, err := svc.IngestBatch(context.Background(), galleryID, []*multipart.FileHeader{file})
	require.NoError(t, err)
	require.Len(t, result.Uploaded, 1)
	assert.Empty(t, result.Failed)

	require.Len(t, store.objects, 3)

	var originalPath string
	for p := range store.objects {
		if strings.Contains(p, "/originals/") {
			originalPath = p
		}
	}
	require.NotEmpty(t, originalPath)

	// The stored original is the uploaded bytes untouched.
	assert.Equal(t, original, store.objects[originalPath])

	photoRepo.AssertExpectations(t)
}

func TestIngestBatch_ThumbnailFailureLeavesNothing(t *testing.T) {
	photoRepo := new(MockPhotoRepository)
	galleryRepo := new(MockGalleryRepository)
	store := newMemoryStore()
	store.failOn = "/thumbnails/"

	galleryID := uuid.New()
	galleryRepo.On("GetGalleryByID", mock.Anything, galleryID).
		Return(models.Gallery{ID: galleryID}, nil)

	svc := NewPhotoService(discardLogger(), photoRepo, galleryRepo, store, 50<<20, "STUDIO")

	file := multipartFile(t, "a.jpg", jpegBytes(t, 640, 480))

	result, err := svc.IngestBatch(context.Background(), galleryID, []*multipart.FileHeader{file})
	require.NoError(t, err)
	assert.Empty(t, result.Uploaded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "a.jpg", result.Failed[0].Filename)

	// The original and watermarked variants written before the failure
	// were cleaned up, and no record insert was attempted.
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 2)
	photoRepo.AssertNotCalled(t, "CreatePhoto", mock.Anything, mock.Anything)
}

func TestIngestBatch_BadFileDoesNotAbortBatch(t *testing.T) {
	photoRepo := new(MockPhotoRepository)
	galleryRepo := new(MockGalleryRepository)
	store := newMemoryStore()

	galleryID := uuid.New()
	galleryRepo.On("GetGalleryByID", mock.Anything, galleryID).
		Return(models.Gallery{ID: galleryID}, nil)

	photoRepo.On("CreatePhoto", mock.Anything, mock.Anything).
		Return(&models.Photo{ID: uuid.New(), GalleryID: galleryID}, nil)

	svc := NewPhotoService(discardLogger(), photoRepo, galleryRepo, store, 50<<20, "STUDIO")

	files := []*multipart.FileHeader{
		multipartFile(t, "notes.txt", []byte("not an image at all")),
		multipartFile(t, "good.jpg", jpegBytes(t, 320, 240)),
	}

	result, err := svc.IngestBatch(context.Background(), galleryID, files)
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "notes.txt", result.Failed[0].Filename)
	require.Len(t, result.Uploaded, 1)
}

func TestIngestBatch_UnknownGallery(t *testing.T) {
	photoRepo := new(MockPhotoRepository)
	galleryRepo := new(MockGalleryRepository)

	galleryID := uuid.New()
	galleryRepo.On("GetGalleryByID", mock.Anything, galleryID).
		Return(models.Gallery{}, errors.New("gallery not found"))

	svc := NewPhotoService(discardLogger(), photoRepo, galleryRepo, newMemoryStore(), 50<<20, "STUDIO")

	_, err := svc.IngestBatch(context.Background(), galleryID, nil)
	assert.Error(t, err)
}

func TestDeletePhoto_ObjectsThenRecord(t *testing.T) {
	photoRepo := new(MockPhotoRepository)
	store := newMemoryStore()

	photoID := uuid.New()
	photo := &models.Photo{
		ID:              photoID,
		OriginalPath:    "g/originals/p.jpg",
		WatermarkedPath: "g/watermarked/p_wm.jpg",
		ThumbnailPath:   "g/thumbnails/p_thumb.jpg",
	}
	store.objects[photo.OriginalPath] = []byte("o")
	store.objects[photo.WatermarkedPath] = []byte("w")
	store.objects[photo.ThumbnailPath] = []byte("t")

	photoRepo.On("GetPhotoByID", mock.Anything, photoID).Return(photo, nil)
	photoRepo.On("DeletePhoto", mock.Anything, photoID).Return(nil)

	svc := NewPhotoService(discardLogger(), photoRepo, new(MockGalleryRepository), store, 50<<20, "STUDIO")

	require.NoError(t, svc.DeletePhoto(context.Background(), photoID))
	assert.Empty(t, store.objects)
	photoRepo.AssertExpectations(t)
}
