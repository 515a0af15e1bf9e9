package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
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

type MockCheckoutClient struct {
	mock.Mock
}

func (m *MockCheckoutClient) CreateCheckout(ctx context.Context, intent models.OrderIntent, successURL, cancelURL string) (string, error) {
	args := m.Called(ctx, intent, successURL, cancelURL)
	return args.String(0), args.Error(1)
}

func newTestCheckout(t *testing.T) (*CheckoutService, *MockPhotoRepository, *MockCheckoutClient) {
	t.Helper()
	repo := new(MockPhotoRepository)
	client := new(MockCheckoutClient)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCheckoutService(log, repo, client, "https://photos.example.com/"), repo, client
}

func publishedGallery() models.Gallery {
	max := 10
	return models.Gallery{
		ID:           uuid.New(),
		Slug:         "smith-wedding",
		Status:       models.GalleryStatusPublished,
		PriceCents:   600,
		TiersEnabled: true,
		Tiers: models.TierSchedule{
			{MinQty: 1, MaxQty: &max, UnitPriceCents: 500},
			{MinQty: 11, MaxQty: nil, UnitPriceCents: 400},
		},
	}
}

func galleryPhotos(gallery models.Gallery, n int) []models.Photo {
	photos := make([]models.Photo, n)
	for i := range photos {
		photos[i] = models.Photo{ID: uuid.New(), GalleryID: gallery.ID}
	}
	return photos
}

func photoIDs(photos []models.Photo) []uuid.UUID {
	ids := make([]uuid.UUID, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	return ids
}

func TestSubmit_RepricesServerSide(t *testing.T) {
	svc, repo, client := newTestCheckout(t)

	gallery := publishedGallery()
	photos := galleryPhotos(gallery, 15)
	ids := photoIDs(photos)

	repo.On("ListPhotosByIDs", mock.Anything, gallery.ID, ids).Return(photos, nil)

	client.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(intent models.OrderIntent) bool {
		return intent.TotalCents == 7000 &&
			intent.GallerySlug == "smith-wedding" &&
			intent.Email == "anna@example.com" &&
			!intent.IsPackage &&
			len(intent.PhotoIDs) == 15
	}), "https://photos.example.com/galleries/smith-wedding",
		"https://photos.example.com/galleries/smith-wedding?checkout=cancelled").
		Return("https://pay.example.com/c/abc", nil)

	url, total, err := svc.Submit(context.Background(), gallery, "anna@example.com", "Anna", ids, false)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/c/abc", url)
	assert.Equal(t, int64(7000), total)

	client.AssertExpectations(t)
}

func TestSubmit_EmailRequired(t *testing.T) {
	svc, _, client := newTestCheckout(t)

	gallery := publishedGallery()

	_, _, err := svc.Submit(context.Background(), gallery, "  ", "Anna", []uuid.UUID{uuid.New()}, false)
	assert.ErrorIs(t, err, ErrEmailRequired)
	client.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_InvalidEmail(t *testing.T) {
	svc, _, _ := newTestCheckout(t)

	_, _, err := svc.Submit(context.Background(), publishedGallery(), "not-an-email", "", []uuid.UUID{uuid.New()}, false)
	assert.Error(t, err)
}

func TestSubmit_EmptySelection(t *testing.T) {
	svc, _, client := newTestCheckout(t)

	_, _, err := svc.Submit(context.Background(), publishedGallery(), "anna@example.com", "", nil, false)
	assert.ErrorIs(t, err, ErrEmptySelection)
	client.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ForeignPhotoRejected(t *testing.T) {
	svc, repo, client := newTestCheckout(t)

	gallery := publishedGallery()
	own := galleryPhotos(gallery, 2)
	ids := append(photoIDs(own), uuid.New())

	// The repository only returns photos that belong to the gallery.
	repo.On("ListPhotosByIDs", mock.Anything, gallery.ID, ids).Return(own, nil)

	_, _, err := svc.Submit(context.Background(), gallery, "anna@example.com", "", ids, false)
	assert.ErrorIs(t, err, ErrUnknownPhotos)
	client.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_PackagePath(t *testing.T) {
	svc, _, client := newTestCheckout(t)

	gallery := publishedGallery()
	pkg := int64(25000)
	gallery.PackageEnabled = true
	gallery.PackagePriceCents = &pkg

	client.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(intent models.OrderIntent) bool {
		return intent.IsPackage && intent.TotalCents == 25000 && len(intent.PhotoIDs) == 0
	}), mock.Anything, mock.Anything).Return("https://pay.example.com/c/pkg", nil)

	url, total, err := svc.Submit(context.Background(), gallery, "anna@example.com", "", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/c/pkg", url)
	assert.Equal(t, int64(25000), total)
}

func TestSubmit_PackageNotEnabled(t *testing.T) {
	svc, _, _ := newTestCheckout(t)

	_, _, err := svc.Submit(context.Background(), publishedGallery(), "anna@example.com", "", nil, true)
	assert.ErrorIs(t, err, ErrPackageNotAvailable)
}

func TestSubmit_ProviderFailureSurfaced(t *testing.T) {
	svc, repo, client := newTestCheckout(t)

	gallery := publishedGallery()
	photos := galleryPhotos(gallery, 2)
	ids := photoIDs(photos)

	repo.On("ListPhotosByIDs", mock.Anything, gallery.ID, ids).Return(photos, nil)
	client.On("CreateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("provider timeout"))

	_, _, err := svc.Submit(context.Background(), gallery, "anna@example.com", "", ids, false)
	assert.Error(t, err)
}

func TestSubmit_PriceOverridesRespected(t *testing.T) {
	svc, repo, client := newTestCheckout(t)

	gallery := publishedGallery()
	photos := galleryPhotos(gallery, 3)
	override := int64(1500)
	photos[0].PriceOverrideCents = &override
	ids := photoIDs(photos)

	repo.On("ListPhotosByIDs", mock.Anything, gallery.ID, ids).Return(photos, nil)

	// One photo at its 1500 override, the other two through the first
	// tier at 500 each.
	client.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(intent models.OrderIntent) bool {
		return intent.TotalCents == 2500
	}), mock.Anything, mock.Anything).Return("https://pay.example.com/c/x", nil)

	_, total, err := svc.Submit(context.Background(), gallery, "anna@example.com", "", ids, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), total)
}
