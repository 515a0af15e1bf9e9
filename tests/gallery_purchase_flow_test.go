package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"

	"photo_commerce/tests/suite"

	"github.com/brianvoe/gofakeit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGalleryPurchaseFlow_HappyPath drives the whole operator-to-shopper
// journey over real HTTP: create, upload, tiers, publish, browse, select,
// checkout.
func TestGalleryPurchaseFlow_HappyPath(t *testing.T) {
	_, st := suite.New(t)

	client := newCookieClient(t)

	title := gofakeit.Company() + " Shoot"

	// Operator creates a draft gallery.
	createBody := map[string]any{
		"title":       title,
		"price_cents": 600,
	}
	var created struct {
		Data struct {
			GalleryID string `json:"gallery_id"`
		} `json:"data"`
	}
	doJSON(t, client, http.MethodPost, st.BaseURL+"/api/v1/admin/galleries", st.AdminToken, createBody, http.StatusCreated, &created)
	galleryID := created.Data.GalleryID
	require.NotEmpty(t, galleryID)

	// Publishing an empty gallery is refused.
	doJSON(t, client, http.MethodPatch, st.BaseURL+"/api/v1/admin/galleries/"+galleryID+"/status", st.AdminToken,
		map[string]string{"status": "published"}, http.StatusUnprocessableEntity, nil)

	// Upload a small batch.
	uploadPhotos(t, client, st.BaseURL+"/api/v1/admin/galleries/"+galleryID+"/photos", st.AdminToken, 3)

	// Volume discount schedule.
	doJSON(t, client, http.MethodPut, st.BaseURL+"/api/v1/admin/galleries/"+galleryID+"/tiers", st.AdminToken,
		map[string]any{
			"enabled": true,
			"tiers": []map[string]any{
				{"min_qty": 1, "max_qty": 2, "unit_price_cents": 500},
				{"min_qty": 3, "unit_price_cents": 400},
			},
		}, http.StatusOK, nil)

	// Now publishing succeeds.
	doJSON(t, client, http.MethodPatch, st.BaseURL+"/api/v1/admin/galleries/"+galleryID+"/status", st.AdminToken,
		map[string]string{"status": "published"}, http.StatusOK, nil)

	// Fetch the gallery as the shopper and walk the photos.
	var admin struct {
		Data struct {
			Slug string `json:"slug"`
		} `json:"data"`
	}
	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/admin/galleries/"+galleryID, st.AdminToken, nil, http.StatusOK, &admin)
	slug := admin.Data.Slug
	require.NotEmpty(t, slug)

	var public struct {
		Data struct {
			Status string `json:"status"`
			Photos []struct {
				ID           string `json:"id"`
				ThumbnailURL string `json:"thumbnail_url"`
				OriginalURL  string `json:"original_url"`
			} `json:"photos"`
		} `json:"data"`
	}
	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/galleries/"+slug, "", nil, http.StatusOK, &public)
	require.Len(t, public.Data.Photos, 3)

	for _, p := range public.Data.Photos {
		assert.NotEmpty(t, p.ThumbnailURL)
		assert.Empty(t, p.OriginalURL, "public view must not link originals")
	}

	// The signed thumbnail link streams bytes.
	resp, err := client.Get(public.Data.Photos[0].ThumbnailURL)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body)

	// Select everything; three photos land in the cheaper band.
	var cart struct {
		Data struct {
			Quantity int `json:"quantity"`
			Quote    struct {
				TotalCents   int64 `json:"total_cents"`
				SavingsCents int64 `json:"savings_cents"`
			} `json:"quote"`
		} `json:"data"`
	}
	doJSON(t, client, http.MethodPost, st.BaseURL+"/api/v1/galleries/"+slug+"/cart/select-all", "", nil, http.StatusOK, &cart)
	require.Equal(t, 3, cart.Data.Quantity)
	assert.Equal(t, int64(1400), cart.Data.Quote.TotalCents)
	assert.Equal(t, int64(400), cart.Data.Quote.SavingsCents)

	// Checkout without an email is rejected and the cart survives.
	doJSON(t, client, http.MethodPost, st.BaseURL+"/api/v1/galleries/"+slug+"/checkout", "",
		map[string]any{"email": ""}, http.StatusBadRequest, nil)

	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/galleries/"+slug+"/cart", "", nil, http.StatusOK, &cart)
	require.Equal(t, 3, cart.Data.Quantity)

	// Real checkout.
	var checkout struct {
		Data struct {
			CheckoutURL string `json:"checkout_url"`
			TotalCents  int64  `json:"total_cents"`
		} `json:"data"`
	}
	doJSON(t, client, http.MethodPost, st.BaseURL+"/api/v1/galleries/"+slug+"/checkout", "",
		map[string]any{"email": gofakeit.Email(), "customer_name": gofakeit.Name()}, http.StatusOK, &checkout)
	assert.True(t, strings.HasPrefix(checkout.Data.CheckoutURL, "https://pay.example.com/c/"))
	assert.Equal(t, int64(1400), checkout.Data.TotalCents)

	// Successful checkout empties the cart.
	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/galleries/"+slug+"/cart", "", nil, http.StatusOK, &cart)
	assert.Equal(t, 0, cart.Data.Quantity)

	// Coming back from an abandoned checkout is just a marker on the
	// public route.
	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/galleries/"+slug+"?checkout=cancelled", "", nil, http.StatusOK, nil)
}

func TestGalleryPurchaseFlow_DraftIsInvisible(t *testing.T) {
	_, st := suite.New(t)

	client := newCookieClient(t)

	var created struct {
		Data struct {
			GalleryID string `json:"gallery_id"`
		} `json:"data"`
	}
	doJSON(t, client, http.MethodPost, st.BaseURL+"/api/v1/admin/galleries", st.AdminToken,
		map[string]any{"title": "Hidden Shoot", "slug": "hidden-shoot", "price_cents": 500}, http.StatusCreated, &created)

	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/galleries/hidden-shoot", "", nil, http.StatusNotFound, nil)
}

func TestAdminSurfaceRequiresToken(t *testing.T) {
	_, st := suite.New(t)

	client := newCookieClient(t)

	// No bearer token at all.
	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/admin/galleries", "", nil, http.StatusBadRequest, nil)

	// A token signed with the wrong secret.
	doJSON(t, client, http.MethodGet, st.BaseURL+"/api/v1/admin/galleries", "not-a-real-token", nil, http.StatusUnauthorized, nil)
}

func newCookieClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equalf(t, wantStatus, resp.StatusCode, "%s %s: %s", method, url, raw)

	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

func uploadPhotos(t *testing.T, client *http.Client, url, token string, n int) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i := 0; i < n; i++ {
		part, err := mw.CreateFormFile("photos", fmt.Sprintf("shot-%03d.jpg", i+1))
		require.NoError(t, err)
		_, err = part.Write(jpegBytes(t, 640, 480))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	require.Equalf(t, http.StatusOK, resp.StatusCode, "upload: %s", raw)

	var result struct {
		Data struct {
			Uploaded []struct {
				ID string `json:"id"`
			} `json:"uploaded"`
			Failed []struct {
				Filename string `json:"filename"`
			} `json:"failed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Data.Uploaded, n)
	require.Empty(t, result.Data.Failed)
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8((x + y) % 256), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}
