package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/domain/pricing"
	"photo_commerce/internal/lib/logger/sl"
	checkoutservice "photo_commerce/internal/services/checkout_service"
	galleryservice "photo_commerce/internal/services/gallery_service"
	photoservice "photo_commerce/internal/services/photo_service"
	"photo_commerce/internal/storage"
	"photo_commerce/internal/transport/http/dto"
	"photo_commerce/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "photo_commerce/docs"
)

type GalleryService interface {
	CreateGallery(ctx context.Context, req dto.CreateGalleryRequest) (uuid.UUID, error)
	UpdateGallery(ctx context.Context, req dto.UpdateGalleryRequest) error
	UpdateGalleryStatus(ctx context.Context, id uuid.UUID, status string) error
	ReplaceTierSchedule(ctx context.Context, id uuid.UUID, req dto.ReplaceTiersRequest) error
	GetGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	GetPublishedGalleryBySlug(ctx context.Context, slug string) (*models.Gallery, error)
	ListGalleries(ctx context.Context, statusFilter string, page, perPage int) ([]models.Gallery, int, error)
}

type PhotoService interface {
	IngestBatch(ctx context.Context, galleryID uuid.UUID, files []*multipart.FileHeader) (*photoservice.BatchResult, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
	UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error
	UpdatePriceOverride(ctx context.Context, id uuid.UUID, priceCents *int64) error
	ListGalleryPhotos(ctx context.Context, galleryID uuid.UUID) ([]models.Photo, error)
}

type AssetService interface {
	SignedURL(objectPath, purpose string) (string, error)
	SignedURLs(paths []string, purpose string) []string
	Open(ctx context.Context, token string) (io.ReadCloser, error)
}

type CartService interface {
	Toggle(ctx context.Context, sessionID string, gallery models.Gallery, photoID uuid.UUID) (*models.Selection, bool, error)
	SelectAll(ctx context.Context, sessionID string, gallery models.Gallery) (*models.Selection, error)
	Clear(sessionID string, galleryID uuid.UUID) *models.Selection
	Get(sessionID string, galleryID uuid.UUID) *models.Selection
	Quote(gallery models.Gallery, sel *models.Selection) pricing.Quote
}

type CheckoutService interface {
	Submit(ctx context.Context, gallery models.Gallery, email, customerName string, photoIDs []uuid.UUID, isPackage bool) (string, int64, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, name, description string, startsAt *time.Time) (uuid.UUID, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type Routers struct {
	log             *slog.Logger
	GalleryService  GalleryService
	PhotoService    PhotoService
	AssetService    AssetService
	CartService     CartService
	CheckoutService CheckoutService
	EventService    EventService
}

func NewRouter(
	log *slog.Logger,
	galleryService GalleryService,
	photoService PhotoService,
	assetService AssetService,
	cartService CartService,
	checkoutService CheckoutService,
	eventService EventService,
) *Routers {
	return &Routers{
		log:             log,
		GalleryService:  galleryService,
		PhotoService:    photoService,
		AssetService:    assetService,
		CartService:     cartService,
		CheckoutService: checkoutService,
		EventService:    eventService,
	}
}

var ErrInvalidUUID = errors.New("not valid UUID")

const cartSessionName = "cart_session"

// sessionID returns the browser's cart session id, minting one on first
// contact. The cookie carries only the random id, never cart contents.
func (r *Routers) sessionID(c echo.Context) string {
	sess, _ := session.Get(cartSessionName, c)

	if id, ok := sess.Values["id"].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	sess.Values["id"] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("failed to save cart session", sl.Err(err))
	}

	return id
}

// GetGallery godoc
// @Summary Public gallery view
// @Description Returns a published gallery with its photos. Photo URLs are short-lived signed links to the watermarked and thumbnail variants.
// @Tags galleries
// @Produce json
// @Param slug path string true "Gallery slug"
// @Param checkout query string false "Set to 'cancelled' when returning from an abandoned checkout"
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{slug} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	gallery, err := r.GalleryService.GetPublishedGalleryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}
		log.Error("failed to load gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to load gallery"))
	}

	photos, err := r.PhotoService.ListGalleryPhotos(c.Request().Context(), gallery.ID)
	if err != nil {
		log.Error("failed to list photos", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to load gallery"))
	}

	resp := dto.GalleryToResponse(gallery)
	resp.Photos = r.attachDisplayURLs(photos)

	// The cancel return from the payment page lands here with a marker;
	// the cart was never cleared, so the view just reports the state.
	if c.QueryParam("checkout") == "cancelled" {
		return c.JSON(http.StatusOK, response.Response{
			Status:  "success",
			Data:    resp,
			Message: "checkout cancelled, your selection is untouched",
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// attachDisplayURLs mints signed thumbnail and watermarked links for the
// public view. Originals are never linked here.
func (r *Routers) attachDisplayURLs(photos []models.Photo) []dto.PhotoResponse {
	thumbs := make([]string, len(photos))
	marks := make([]string, len(photos))
	for i, p := range photos {
		thumbs[i] = p.ThumbnailPath
		marks[i] = p.WatermarkedPath
	}

	thumbURLs := r.AssetService.SignedURLs(thumbs, "thumbnail")
	markURLs := r.AssetService.SignedURLs(marks, "watermarked")

	out := make([]dto.PhotoResponse, len(photos))
	for i := range photos {
		out[i] = dto.PhotoToResponse(&photos[i])
		out[i].ThumbnailURL = thumbURLs[i]
		out[i].WatermarkedURL = markURLs[i]
	}

	return out
}

// GetAsset godoc
// @Summary Stream a signed asset
// @Description Exchanges a signed token for the image bytes it grants access to.
// @Tags assets
// @Produce image/jpeg
// @Param token path string true "Signed asset token"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/assets/{token} [get]
func (r *Routers) GetAsset(c echo.Context) error {
	const op = "http.routers.GetAsset"

	rc, err := r.AssetService.Open(c.Request().Context(), c.Param("token"))
	if err != nil {
		r.log.Warn("asset access denied", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusNotFound, response.ErrAssetUnavailable)
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, "image/jpeg", rc)
}

// GetCart godoc
// @Summary Current selection
// @Description Returns the session's selected photos for the gallery, priced against its tier schedule.
// @Tags cart
// @Produce json
// @Param slug path string true "Gallery slug"
// @Success 200 {object} response.Response{data=dto.CartResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{slug}/cart [get]
func (r *Routers) GetCart(c echo.Context) error {
	gallery, errResp := r.publishedGallery(c)
	if errResp != nil {
		return errResp
	}

	sel := r.CartService.Get(r.sessionID(c), gallery.ID)

	return c.JSON(http.StatusOK, response.SuccessResponse(r.cartResponse(gallery, sel)))
}

// ToggleSelection godoc
// @Summary Toggle one photo
// @Description Adds the photo to the selection if absent, removes it if present.
// @Tags cart
// @Accept json
// @Produce json
// @Param slug path string true "Gallery slug"
// @Param request body dto.ToggleSelectionRequest true "Photo to toggle"
// @Success 200 {object} response.Response{data=dto.CartResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{slug}/cart/toggle [post]
func (r *Routers) ToggleSelection(c echo.Context) error {
	const op = "http.routers.ToggleSelection"

	log := r.log.With(
		slog.String("op", op),
	)

	gallery, errResp := r.publishedGallery(c)
	if errResp != nil {
		return errResp
	}

	var req dto.ToggleSelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	sel, _, err := r.CartService.Toggle(c.Request().Context(), r.sessionID(c), *gallery, req.PhotoID)
	if err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPhotoNotFound)
		}
		log.Error("failed to toggle selection", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to update selection"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.cartResponse(gallery, sel)))
}

// SelectAll godoc
// @Summary Select every photo
// @Tags cart
// @Produce json
// @Param slug path string true "Gallery slug"
// @Success 200 {object} response.Response{data=dto.CartResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{slug}/cart/select-all [post]
func (r *Routers) SelectAll(c echo.Context) error {
	const op = "http.routers.SelectAll"

	gallery, errResp := r.publishedGallery(c)
	if errResp != nil {
		return errResp
	}

	sel, err := r.CartService.SelectAll(c.Request().Context(), r.sessionID(c), *gallery)
	if err != nil {
		r.log.Error("failed to select all", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to update selection"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.cartResponse(gallery, sel)))
}

// ClearSelection godoc
// @Summary Empty the selection
// @Tags cart
// @Produce json
// @Param slug path string true "Gallery slug"
// @Success 200 {object} response.Response{data=dto.CartResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{slug}/cart/clear [post]
func (r *Routers) ClearSelection(c echo.Context) error {
	gallery, errResp := r.publishedGallery(c)
	if errResp != nil {
		return errResp
	}

	sel := r.CartService.Clear(r.sessionID(c), gallery.ID)

	return c.JSON(http.StatusOK, response.SuccessResponse(r.cartResponse(gallery, sel)))
}

// Checkout godoc
// @Summary Submit the order
// @Description Reprices the selection server-side and returns the hosted checkout URL. On failure the selection is preserved so the shopper can retry.
// @Tags checkout
// @Accept json
// @Produce json
// @Param slug path string true "Gallery slug"
// @Param request body dto.CheckoutRequest true "Order intent"
// @Success 200 {object} response.Response{data=dto.CheckoutResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/galleries/{slug}/checkout [post]
func (r *Routers) Checkout(c echo.Context) error {
	const op = "http.routers.Checkout"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	gallery, errResp := r.publishedGallery(c)
	if errResp != nil {
		return errResp
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	sessionID := r.sessionID(c)

	// The request may carry explicit ids; otherwise the session cart is
	// the source of the selection.
	photoIDs := req.PhotoIDs
	if len(photoIDs) == 0 && !req.IsPackage {
		photoIDs = r.CartService.Get(sessionID, gallery.ID).IDs()
	}

	checkoutURL, total, err := r.CheckoutService.Submit(
		c.Request().Context(),
		*gallery,
		req.Email,
		req.CustomerName,
		photoIDs,
		req.IsPackage,
	)
	if err != nil {
		switch {
		case errors.Is(err, checkoutservice.ErrEmptySelection):
			return c.JSON(http.StatusBadRequest, response.ErrEmptySelection)
		case errors.Is(err, checkoutservice.ErrEmailRequired),
			errors.Is(err, checkoutservice.ErrPackageNotAvailable),
			errors.Is(err, checkoutservice.ErrUnknownPhotos):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}
		log.Error("checkout failed", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrCheckoutFailed)
	}

	// Paid-for carts are done; the shopper comes back to an empty one.
	r.CartService.Clear(sessionID, gallery.ID)

	log.Info("checkout created", slog.Int64("total_cents", total))

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.CheckoutResponse{
		CheckoutURL: checkoutURL,
		TotalCents:  total,
	}))
}

// CreateGallery godoc
// @Summary Create a gallery
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateGalleryRequest true "Gallery"
// @Success 201 {object} response.Response{data=object{gallery_id=string}}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries [post]
func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateGalleryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	id, err := r.GalleryService.CreateGallery(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("slug_taken", "a gallery with this slug already exists"))
		}
		if models.IsGalleryValidationError(err) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}
		log.Error("failed to create gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to create gallery"))
	}

	log.Info("gallery created", slog.String("gallery_id", id.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]uuid.UUID{
		"gallery_id": id,
	}))
}

// ListGalleries godoc
// @Summary List galleries
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status (draft, published, archived)"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=dto.GalleryListResponse}
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries [get]
func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	status := c.QueryParam("status")
	if status == "" {
		status = "all"
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(c.QueryParam("per_page"))
	if err != nil || perPage < 1 || perPage > 100 {
		perPage = 20
	}

	galleries, total, err := r.GalleryService.ListGalleries(c.Request().Context(), status, page, perPage)
	if err != nil {
		r.log.Error("failed to list galleries", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to list galleries"))
	}

	resp := dto.GalleryListResponse{
		Galleries: make([]dto.GalleryResponse, len(galleries)),
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
	for i := range galleries {
		resp.Galleries[i] = dto.GalleryToResponse(&galleries[i])
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// GetGalleryAdmin godoc
// @Summary Gallery detail with originals
// @Description Returns any gallery regardless of status, with signed links to all three variants of every photo.
// @Tags admin
// @Produce json
// @Param id path string true "Gallery UUID" format(uuid)
// @Success 200 {object} response.Response{data=dto.GalleryResponse}
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries/{id} [get]
func (r *Routers) GetGalleryAdmin(c echo.Context) error {
	const op = "http.routers.GetGalleryAdmin"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	gallery, err := r.GalleryService.GetGalleryByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}
		log.Error("failed to load gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to load gallery"))
	}

	photos, err := r.PhotoService.ListGalleryPhotos(c.Request().Context(), gallery.ID)
	if err != nil {
		log.Error("failed to list photos", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to load gallery"))
	}

	resp := dto.GalleryToResponse(gallery)
	resp.Photos = r.attachDisplayURLs(photos)
	for i := range photos {
		if url, err := r.AssetService.SignedURL(photos[i].OriginalPath, "original"); err == nil {
			resp.Photos[i].OriginalURL = url
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// UpdateGallery godoc
// @Summary Update gallery fields
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Gallery UUID" format(uuid)
// @Param request body dto.UpdateGalleryRequest true "Fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries/{id} [put]
func (r *Routers) UpdateGallery(c echo.Context) error {
	const op = "http.routers.UpdateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	var req dto.UpdateGalleryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	req.ID = id
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.GalleryService.UpdateGallery(c.Request().Context(), req); err != nil {
		switch {
		case errors.Is(err, storage.ErrGalleryNotFound):
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		case errors.Is(err, storage.ErrSlugTaken):
			return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("slug_taken", "a gallery with this slug already exists"))
		case models.IsGalleryValidationError(err):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}
		log.Error("failed to update gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to update gallery"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// UpdateGalleryStatus godoc
// @Summary Change gallery status
// @Description Moves a gallery between draft, published and archived. Publishing requires at least one photo.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Gallery UUID" format(uuid)
// @Param request body dto.UpdateGalleryStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries/{id}/status [patch]
func (r *Routers) UpdateGalleryStatus(c echo.Context) error {
	const op = "http.routers.UpdateGalleryStatus"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	var req dto.UpdateGalleryStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.GalleryService.UpdateGalleryStatus(c.Request().Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, storage.ErrGalleryNotFound):
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		case errors.Is(err, galleryservice.ErrCannotPublishEmpty):
			return c.JSON(http.StatusUnprocessableEntity, response.ErrorResponseWithDetails("cannot_publish_empty", "add at least one photo before publishing"))
		}
		log.Error("failed to update status", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to update status"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// ReplaceTiers godoc
// @Summary Replace the tier schedule
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Gallery UUID" format(uuid)
// @Param request body dto.ReplaceTiersRequest true "New schedule"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries/{id}/tiers [put]
func (r *Routers) ReplaceTiers(c echo.Context) error {
	const op = "http.routers.ReplaceTiers"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	var req dto.ReplaceTiersRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.GalleryService.ReplaceTierSchedule(c.Request().Context(), id, req); err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}
		if models.IsGalleryValidationError(err) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}
		log.Error("failed to replace tiers", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to replace tiers"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// UploadPhotos godoc
// @Summary Batch photo upload
// @Description Runs each file through the derivative pipeline in submission order. Per-file failures are reported without aborting the batch.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Gallery UUID" format(uuid)
// @Param photos formData file true "Image files (jpeg, png, webp)"
// @Success 200 {object} response.Response{data=dto.BatchUploadResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/galleries/{id}/photos [post]
func (r *Routers) UploadPhotos(c echo.Context) error {
	const op = "http.routers.UploadPhotos"

	log := r.log.With(
		slog.String("op", op),
	)

	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	files := form.File["photos"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "at least one file is required"))
	}

	log.Info("batch upload received",
		slog.String("gallery_id", galleryID.String()),
		slog.Int("files", len(files)),
	)

	result, err := r.PhotoService.IngestBatch(c.Request().Context(), galleryID, files)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}
		log.Error("batch ingest failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to process upload"))
	}

	resp := dto.BatchUploadResponse{
		Uploaded: make([]dto.PhotoResponse, len(result.Uploaded)),
	}
	for i := range result.Uploaded {
		resp.Uploaded[i] = dto.PhotoToResponse(&result.Uploaded[i])
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, dto.UploadFailure{
			Filename: f.Filename,
			Reason:   f.Err.Error(),
		})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// DeletePhoto godoc
// @Summary Delete a photo
// @Description Removes the three stored variants, then the catalog record.
// @Tags admin
// @Param id path string true "Photo UUID" format(uuid)
// @Success 204
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/photos/{id} [delete]
func (r *Routers) DeletePhoto(c echo.Context) error {
	const op = "http.routers.DeletePhoto"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	if err := r.PhotoService.DeletePhoto(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPhotoNotFound)
		}
		r.log.Error("failed to delete photo", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to delete photo"))
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdatePhotoSortOrder godoc
// @Summary Reorder a photo
// @Tags admin
// @Accept json
// @Param id path string true "Photo UUID" format(uuid)
// @Param request body dto.UpdateSortOrderRequest true "Position"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/photos/{id}/sort-order [patch]
func (r *Routers) UpdatePhotoSortOrder(c echo.Context) error {
	const op = "http.routers.UpdatePhotoSortOrder"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	var req dto.UpdateSortOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.PhotoService.UpdateSortOrder(c.Request().Context(), id, req.SortOrder); err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPhotoNotFound)
		}
		r.log.Error("failed to update sort order", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to update photo"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// UpdatePhotoPrice godoc
// @Summary Set or clear a per-photo price override
// @Tags admin
// @Accept json
// @Param id path string true "Photo UUID" format(uuid)
// @Param request body dto.UpdatePriceOverrideRequest true "Override in cents, null to clear"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/photos/{id}/price [patch]
func (r *Routers) UpdatePhotoPrice(c echo.Context) error {
	const op = "http.routers.UpdatePhotoPrice"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	var req dto.UpdatePriceOverrideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.PhotoService.UpdatePriceOverride(c.Request().Context(), id, req.PriceCents); err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPhotoNotFound)
		}
		r.log.Error("failed to update price override", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to update photo"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// CreateEvent godoc
// @Summary Create an event
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} response.Response{data=object{event_id=string}}
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/events [post]
func (r *Routers) CreateEvent(c echo.Context) error {
	const op = "http.routers.CreateEvent"

	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	id, err := r.EventService.CreateEvent(c.Request().Context(), req.Name, req.Description, req.StartsAt)
	if err != nil {
		r.log.Error("failed to create event", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to create event"))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]uuid.UUID{
		"event_id": id,
	}))
}

// ListEvents godoc
// @Summary List events
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.EventResponse}
// @Security ApiKeyAuth
// @Router /api/v1/admin/events [get]
func (r *Routers) ListEvents(c echo.Context) error {
	const op = "http.routers.ListEvents"

	events, err := r.EventService.ListEvents(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list events", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to list events"))
	}

	resp := make([]dto.EventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.EventResponse{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			StartsAt:    e.StartsAt,
			CreatedAt:   e.CreatedAt,
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}

// publishedGallery loads the gallery behind the :slug param. The returned
// error is a ready-to-render *echo.HTTPError.
func (r *Routers) publishedGallery(c echo.Context) (*models.Gallery, error) {
	gallery, err := r.GalleryService.GetPublishedGalleryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, response.ErrGalleryNotFound)
		}
		r.log.Error("failed to load gallery", sl.Err(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to load gallery"))
	}
	return gallery, nil
}

func (r *Routers) cartResponse(gallery *models.Gallery, sel *models.Selection) dto.CartResponse {
	return dto.CartResponse{
		GalleryID:         gallery.ID,
		PhotoIDs:          sel.IDs(),
		Quantity:          sel.Count(),
		Quote:             r.CartService.Quote(*gallery, sel),
		PackageAvailable:  gallery.PackageAvailable(),
		PackagePriceCents: gallery.PackagePriceCents,
	}
}
