package suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	httpapp "photo_commerce/internal/app/http"
	checkoutclient "photo_commerce/internal/clients/checkout"
	"photo_commerce/internal/config"
	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/lib/jwt"
	assetservice "photo_commerce/internal/services/asset_service"
	cartservice "photo_commerce/internal/services/cart_service"
	checkoutservice "photo_commerce/internal/services/checkout_service"
	eventservice "photo_commerce/internal/services/event_service"
	galleryservice "photo_commerce/internal/services/gallery_service"
	photoservice "photo_commerce/internal/services/photo_service"
	"photo_commerce/internal/storage"
	httprouters "photo_commerce/internal/transport/http"

	"github.com/google/uuid"
)

// Suite boots the whole HTTP stack over in-memory storage so flow tests can
// drive the real routes without Postgres or Redis.
type Suite struct {
	*testing.T
	Cfg        *config.Config
	BaseURL    string
	AdminToken string

	Galleries *FakeGalleryRepo
	Photos    *FakePhotoRepo
	Provider  *httptest.Server
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	cfg := config.MustLoadPath(configPath())

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Minute)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	galleries := NewFakeGalleryRepo()
	photos := NewFakePhotoRepo()
	events := NewFakeEventRepo()
	blob := NewMemoryBlobStore()

	// Stand-in payment provider: accepts the order intent and hands back a
	// hosted checkout URL.
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"checkout_url": "https://pay.example.com/c/" + uuid.NewString(),
		})
	}))

	admin := models.User{ID: uuid.New(), Email: "ops@example.com", IsAdmin: true}
	users := &FakeUserRepo{admins: map[uuid.UUID]bool{admin.ID: true}}

	galleryService := galleryservice.NewGalleryService(log, galleries, photos, noopCache{})
	photoService := photoservice.NewPhotoService(log, photos, galleries, blob, cfg.Pipeline.MaxUploadSize, cfg.Pipeline.WatermarkText)
	cartService := cartservice.NewCartService(log, photos)
	eventService := eventservice.NewEventService(log, events)

	port := freePort(t)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	assetService := assetservice.NewAssetService(log, cfg.Signing.Secret, cfg.Signing.URLTTL, baseURL, blob)
	checkoutService := checkoutservice.NewCheckoutService(
		log,
		photos,
		checkoutclient.NewClient(provider.URL, cfg.Checkout.Timeout),
		baseURL,
	)

	routers := httprouters.NewRouter(log, galleryService, photoService, assetService, cartService, checkoutService, eventService)

	server := httpapp.New(log, cfg.HTTP.OperatorToken, cfg.HTTP.SessionSecret, "localhost", strconv.Itoa(port), routers, users)
	server.BuildRouters()

	go func() {
		_ = server.Start()
	}()

	waitHealthy(t, baseURL)

	token, err := jwt.NewOperatorToken(admin, cfg.HTTP.OperatorToken, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint operator token: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
		provider.Close()
		_ = server.Stop()
	})

	return ctx, &Suite{
		T:          t,
		Cfg:        cfg,
		BaseURL:    baseURL,
		AdminToken: token,
		Galleries:  galleries,
		Photos:     photos,
		Provider:   provider,
	}
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/config.yaml"
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("failed to pick a port: %v", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func waitHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become healthy in time")
}

type noopCache struct{}

func (noopCache) GetBySlug(context.Context, string) (*models.Gallery, error) {
	return nil, storage.ErrCacheMiss
}
func (noopCache) SetBySlug(context.Context, *models.Gallery) error { return nil }
func (noopCache) Invalidate(context.Context, string) error         { return nil }

// FakeGalleryRepo is an in-memory stand-in for the Postgres gallery
// repository, honoring the same sentinel errors.
type FakeGalleryRepo struct {
	mu        sync.Mutex
	galleries map[uuid.UUID]models.Gallery
}

func NewFakeGalleryRepo() *FakeGalleryRepo {
	return &FakeGalleryRepo{galleries: map[uuid.UUID]models.Gallery{}}
}

func (r *FakeGalleryRepo) CreateGallery(_ context.Context, gallery models.Gallery) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.galleries {
		if g.Slug == gallery.Slug {
			return uuid.Nil, storage.ErrSlugTaken
		}
	}

	gallery.ID = uuid.New()
	now := time.Now().UTC()
	gallery.CreatedAt = now
	gallery.UpdatedAt = now
	r.galleries[gallery.ID] = gallery

	return gallery.ID, nil
}

func (r *FakeGalleryRepo) UpdateGallery(_ context.Context, gallery models.Gallery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.galleries[gallery.ID]
	if !ok {
		return storage.ErrGalleryNotFound
	}
	for id, g := range r.galleries {
		if id != gallery.ID && g.Slug == gallery.Slug {
			return storage.ErrSlugTaken
		}
	}

	gallery.CreatedAt = current.CreatedAt
	gallery.PublishedAt = current.PublishedAt
	gallery.Status = current.Status
	gallery.UpdatedAt = time.Now().UTC()
	r.galleries[gallery.ID] = gallery

	return nil
}

func (r *FakeGalleryRepo) UpdateGalleryStatus(_ context.Context, id uuid.UUID, status models.GalleryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.galleries[id]
	if !ok {
		return storage.ErrGalleryNotFound
	}

	g.Status = status
	if status == models.GalleryStatusPublished && g.PublishedAt == nil {
		now := time.Now().UTC()
		g.PublishedAt = &now
	}
	g.UpdatedAt = time.Now().UTC()
	r.galleries[id] = g

	return nil
}

func (r *FakeGalleryRepo) ReplaceTierSchedule(_ context.Context, id uuid.UUID, tiers models.TierSchedule, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.galleries[id]
	if !ok {
		return storage.ErrGalleryNotFound
	}

	g.Tiers = tiers
	g.TiersEnabled = enabled
	g.UpdatedAt = time.Now().UTC()
	r.galleries[id] = g

	return nil
}

func (r *FakeGalleryRepo) GetGalleryByID(_ context.Context, id uuid.UUID) (models.Gallery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.galleries[id]
	if !ok {
		return models.Gallery{}, storage.ErrGalleryNotFound
	}

	return g, nil
}

func (r *FakeGalleryRepo) GetGalleryBySlug(_ context.Context, slug string, publishedOnly bool) (models.Gallery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.galleries {
		if g.Slug != slug {
			continue
		}
		if publishedOnly && g.Status != models.GalleryStatusPublished {
			continue
		}
		return g, nil
	}

	return models.Gallery{}, storage.ErrGalleryNotFound
}

func (r *FakeGalleryRepo) GetGalleries(_ context.Context, statusFilter string, page, perPage int) ([]models.Gallery, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Gallery
	for _, g := range r.galleries {
		if statusFilter != "" && statusFilter != "all" && string(g.Status) != statusFilter {
			continue
		}
		out = append(out, g)
	}

	return out, len(out), nil
}

// FakePhotoRepo mirrors the photo repository over a map.
type FakePhotoRepo struct {
	mu     sync.Mutex
	photos map[uuid.UUID]models.Photo
}

func NewFakePhotoRepo() *FakePhotoRepo {
	return &FakePhotoRepo{photos: map[uuid.UUID]models.Photo{}}
}

func (r *FakePhotoRepo) CreatePhoto(_ context.Context, photo *models.Photo) (*models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *photo
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.photos[p.ID] = p

	return &p, nil
}

func (r *FakePhotoRepo) GetPhotoByID(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.photos[id]
	if !ok {
		return nil, storage.ErrPhotoNotFound
	}

	return &p, nil
}

func (r *FakePhotoRepo) ListGalleryPhotos(_ context.Context, galleryID uuid.UUID) ([]models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Photo
	for _, p := range r.photos {
		if p.GalleryID == galleryID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *FakePhotoRepo) ListPhotosByIDs(_ context.Context, galleryID uuid.UUID, ids []uuid.UUID) ([]models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Photo
	for _, id := range ids {
		if p, ok := r.photos[id]; ok && p.GalleryID == galleryID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *FakePhotoRepo) CountGalleryPhotos(_ context.Context, galleryID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, p := range r.photos {
		if p.GalleryID == galleryID {
			n++
		}
	}

	return n, nil
}

func (r *FakePhotoRepo) UpdateSortOrder(_ context.Context, id uuid.UUID, sortOrder int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.photos[id]
	if !ok {
		return storage.ErrPhotoNotFound
	}
	p.SortOrder = sortOrder
	r.photos[id] = p

	return nil
}

func (r *FakePhotoRepo) UpdatePriceOverride(_ context.Context, id uuid.UUID, priceCents *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.photos[id]
	if !ok {
		return storage.ErrPhotoNotFound
	}
	p.PriceOverrideCents = priceCents
	r.photos[id] = p

	return nil
}

func (r *FakePhotoRepo) DeletePhoto(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.photos[id]; !ok {
		return storage.ErrPhotoNotFound
	}
	delete(r.photos, id)

	return nil
}

type FakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]models.Event
}

func NewFakeEventRepo() *FakeEventRepo {
	return &FakeEventRepo{events: map[uuid.UUID]models.Event{}}
}

func (r *FakeEventRepo) CreateEvent(_ context.Context, event models.Event) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()
	r.events[event.ID] = event

	return event.ID, nil
}

func (r *FakeEventRepo) GetEventByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, storage.ErrEventNotFound
	}

	return &e, nil
}

func (r *FakeEventRepo) ListEvents(_ context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}

	return out, nil
}

type FakeUserRepo struct {
	admins map[uuid.UUID]bool
}

func (r *FakeUserRepo) IsAdmin(_ context.Context, userID uuid.UUID) (bool, error) {
	return r.admins[userID], nil
}

// MemoryBlobStore keeps objects in a map; good enough for flow tests.
type MemoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: map[string][]byte{}}
}

func (s *MemoryBlobStore) Put(_ context.Context, objectPath string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = data

	return int64(len(data)), nil
}

func (s *MemoryBlobStore) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[objectPath]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[objectPath]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, objectPath)

	return nil
}

func (s *MemoryBlobStore) BaseDir() string { return "" }
