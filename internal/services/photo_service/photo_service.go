package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/imaging"
	"photo_commerce/internal/lib/logger/sl"
	"photo_commerce/internal/metrics"
	"photo_commerce/internal/repository"
	"photo_commerce/internal/storage/objectstore"

	"github.com/google/uuid"
)

// BatchResult reports a sequential multi-file ingest. Every submitted file
// lands in exactly one of the two lists.
type BatchResult struct {
	Uploaded []models.Photo
	Failed   []FileError
}

// FileError is one file the pipeline rejected or lost, reported to the
// operator without aborting the rest of the batch.
type FileError struct {
	Filename string
	Err      error
}

// PhotoService is the image derivative pipeline: one upload in, three
// stored variants plus a catalog record out.
type PhotoService struct {
	log           *slog.Logger
	repo          repository.PhotoRepository
	galleries     repository.GalleryRepository
	blob          objectstore.BlobStorage
	maxUploadSize int64
	watermarkText string
}

func NewPhotoService(
	log *slog.Logger,
	repo repository.PhotoRepository,
	galleries repository.GalleryRepository,
	blob objectstore.BlobStorage,
	maxUploadSize int64,
	watermarkText string,
) *PhotoService {
	return &PhotoService{
		log:           log,
		repo:          repo,
		galleries:     galleries,
		blob:          blob,
		maxUploadSize: maxUploadSize,
		watermarkText: watermarkText,
	}
}

// IngestBatch processes files strictly one at a time, in submission order:
// each file's three-variant upload and record insert completes before the
// next file starts. That bounds concurrent storage load and keeps the
// operator's "N of M" progress honest. A failure aborts only that file.
func (s *PhotoService) IngestBatch(ctx context.Context, galleryID uuid.UUID, files []*multipart.FileHeader) (*BatchResult, error) {
	const op = "service.PhotoService.IngestBatch"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", galleryID.String()),
		slog.Int("files", len(files)),
	)

	// The gallery must exist before anything is written under its prefix.
	if _, err := s.galleries.GetGalleryByID(ctx, galleryID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("starting batch ingest")

	result := &BatchResult{}
	for i, file := range files {
		photo, err := s.ingestOne(ctx, galleryID, file, i)
		if err != nil {
			log.Error("file failed",
				slog.String("filename", file.Filename),
				slog.Int("index", i),
				sl.Err(err),
			)
			result.Failed = append(result.Failed, FileError{Filename: file.Filename, Err: err})
			continue
		}
		result.Uploaded = append(result.Uploaded, *photo)
		log.Info("file ingested",
			slog.String("filename", file.Filename),
			slog.String("photo_id", photo.ID.String()),
			slog.Int("done", i+1),
			slog.Int("of", len(files)),
		)
	}

	return result, nil
}

// ingestOne runs the full pipeline for a single file. The catalog record is
// only inserted after all three uploads succeed; on any failure the
// variants written so far are removed best-effort so nothing ever surfaces
// as a half-made photo.
func (s *PhotoService) ingestOne(ctx context.Context, galleryID uuid.UUID, file *multipart.FileHeader, index int) (*models.Photo, error) {
	src, err := s.decode(file)
	if err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("decode").Inc()
		return nil, err
	}

	photoID := uuid.New()
	ext := imaging.ExtForMIME[src.MIME]
	paths := variantPaths(galleryID, photoID, ext)

	var written []string
	cleanup := func() {
		for _, p := range written {
			if err := s.blob.Delete(ctx, p); err != nil {
				s.log.Warn("failed to remove orphaned variant",
					slog.String("path", p),
					sl.Err(err),
				)
			}
		}
	}

	// Original, byte-for-byte as uploaded.
	if _, err := s.blob.Put(ctx, paths.original, bytes.NewReader(src.Data)); err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("upload").Inc()
		cleanup()
		return nil, fmt.Errorf("uploading original: %w", err)
	}
	written = append(written, paths.original)

	wm, err := imaging.Watermark(src, s.watermarkText)
	if err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("watermark").Inc()
		cleanup()
		return nil, fmt.Errorf("rendering watermark: %w", err)
	}
	if _, err := s.blob.Put(ctx, paths.watermarked, bytes.NewReader(wm)); err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("upload").Inc()
		cleanup()
		return nil, fmt.Errorf("uploading watermarked variant: %w", err)
	}
	written = append(written, paths.watermarked)

	thumb, err := imaging.Thumbnail(src)
	if err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("thumbnail").Inc()
		cleanup()
		return nil, fmt.Errorf("rendering thumbnail: %w", err)
	}
	if _, err := s.blob.Put(ctx, paths.thumbnail, bytes.NewReader(thumb)); err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("upload").Inc()
		cleanup()
		return nil, fmt.Errorf("uploading thumbnail variant: %w", err)
	}
	written = append(written, paths.thumbnail)

	photo := &models.Photo{
		ID:              photoID,
		GalleryID:       galleryID,
		OriginalPath:    paths.original,
		WatermarkedPath: paths.watermarked,
		ThumbnailPath:   paths.thumbnail,
		Filename:        file.Filename,
		Width:           src.Width,
		Height:          src.Height,
		FileSize:        int64(len(src.Data)),
		SortOrder:       index,
		CreatedAt:       time.Now().UTC(),
	}

	if err := photo.Validate(); err != nil {
		cleanup()
		return nil, err
	}

	created, err := s.repo.CreatePhoto(ctx, photo)
	if err != nil {
		metrics.PhotoIngestFailuresTotal.WithLabelValues("insert").Inc()
		cleanup()
		return nil, fmt.Errorf("inserting photo record: %w", err)
	}

	metrics.PhotosIngestedTotal.Inc()

	return created, nil
}

// DeletePhoto removes the three storage objects first, then the record.
// If deletion dies in the middle the worst case is a record pointing at
// missing objects, which renders as a broken thumbnail and is recoverable
// by deleting again.
func (s *PhotoService) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	const op = "service.PhotoService.DeletePhoto"

	log := s.log.With(
		slog.String("op", op),
		slog.String("photo_id", id.String()),
	)

	photo, err := s.repo.GetPhotoByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range photo.StoragePaths() {
		if err := s.blob.Delete(ctx, p); err != nil {
			log.Warn("failed to delete variant object",
				slog.String("path", p),
				sl.Err(err),
			)
		}
	}

	if err := s.repo.DeletePhoto(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("photo deleted")
	return nil
}

func (s *PhotoService) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error {
	const op = "service.PhotoService.UpdateSortOrder"

	if err := s.repo.UpdateSortOrder(ctx, id, sortOrder); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *PhotoService) UpdatePriceOverride(ctx context.Context, id uuid.UUID, priceCents *int64) error {
	const op = "service.PhotoService.UpdatePriceOverride"

	if err := s.repo.UpdatePriceOverride(ctx, id, priceCents); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *PhotoService) ListGalleryPhotos(ctx context.Context, galleryID uuid.UUID) ([]models.Photo, error) {
	const op = "service.PhotoService.ListGalleryPhotos"

	photos, err := s.repo.ListGalleryPhotos(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return photos, nil
}

func (s *PhotoService) decode(file *multipart.FileHeader) (*imaging.Source, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	return imaging.Decode(f, s.maxUploadSize)
}

type paths struct {
	original    string
	watermarked string
	thumbnail   string
}

// variantPaths lays objects out under a per-gallery, per-purpose prefix
// with one UUID stem shared by all three variants of a photo.
func variantPaths(galleryID, photoID uuid.UUID, ext string) paths {
	return paths{
		original:    fmt.Sprintf("%s/originals/%s.%s", galleryID, photoID, ext),
		watermarked: fmt.Sprintf("%s/watermarked/%s_wm.jpg", galleryID, photoID),
		thumbnail:   fmt.Sprintf("%s/thumbnails/%s_thumb.jpg", galleryID, photoID),
	}
}
