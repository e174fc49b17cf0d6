package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"miru/internal/booking"
	"miru/internal/database"
	"miru/internal/gateway"
	"miru/internal/message"
	"miru/internal/mirror"
	"miru/internal/models"
	"miru/internal/remote"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"
)

func newTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "miru.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.New(io.Discard)
	if cfg.RateLimit == 0 {
		cfg.RateLimit, cfg.RateBurst = rate.Inf, 1
	}
	svc := booking.NewService(booking.NewSQLRepository(db.DB))
	srv := httptest.NewServer(NewRouter(svc, cfg, &logger))
	t.Cleanup(srv.Close)
	return srv
}

func claudette() models.Fields {
	return models.Fields{
		Name: "Claudette", Phone: "250788123456", Tubes: 500,
		BookingDate: models.NewDate(2024, time.January, 1), Location: "Musanze",
	}
}

func TestEndToEnd_RemoteAndMirror(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	local := mirror.NewFileStore(filepath.Join(t.TempDir(), "bookings.json"), &logger)
	gw := gateway.New(remote.NewClient(srv.URL, time.Second), local, &logger)

	created, src, err := gw.Create(ctx, claudette())
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceRemote, src)
	assert.Len(t, created.ID, 36)
	assert.Equal(t, 300000, created.Amount())
	assert.Equal(t, "2024-01-31", created.DeliveryDate().String())
	assert.Equal(t, 9, created.Sacks())
	assert.Equal(t, 3150, created.LoadingCost())
	text := message.Build(created).Text
	assert.Contains(t, text, "500 mushroom tubes")
	assert.Contains(t, text, "RWF 300,000")

	second := claudette()
	second.Name = "Jean"
	second.Tubes = 12
	_, _, err = gw.Create(ctx, second)
	require.NoError(t, err)

	first, src, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceRemote, src)
	again, _, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	require.Len(t, first, 2)
	assert.Equal(t, "Jean", first[0].Name, "newest first")

	mirrored, err := local.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, mirrored)

	updated := claudette()
	updated.Tubes = 61
	got, src, err := gw.Update(ctx, created.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceRemote, src)
	assert.Equal(t, 61, got.Tubes)
	assert.NotNil(t, got.CreatedAt)

	src, err = gw.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceRemote, src)

	list, _, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, models.FindByID(list, created.ID))
	mirrored, err = local.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, models.FindByID(mirrored, created.ID))

	_, err = gw.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestEndToEnd_RemoteDown(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})
	url := srv.URL
	srv.Close()

	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	local := mirror.NewFileStore(filepath.Join(t.TempDir(), "bookings.json"), &logger)
	gw := gateway.New(remote.NewClient(url, 200*time.Millisecond), local, &logger)

	created, src, err := gw.Create(ctx, claudette())
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceLocal, src)
	assert.NotEmpty(t, created.ID)

	list, src, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceLocal, src)
	assert.Equal(t, []models.Booking{created}, list)

	again, _, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)

	_, err = gw.Delete(ctx, created.ID)
	require.NoError(t, err)
	list, _, err = gw.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRouter_Reports(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})
	_, err := remote.NewClient(srv.URL, time.Second).Create(context.Background(), claudette())
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/report")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Miru_Report_")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	resp, err = http.Get(srv.URL + "/api/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Miru_Mushrooms_Bookings.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Claudette", rows[1][1])
}

func TestRouter_Middleware(t *testing.T) {
	srv := newTestServer(t, RouterConfig{RateLimit: rate.Every(time.Hour), RateBurst: 1})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/bookings", http.NoBody)
	require.NoError(t, err)
	req.Header.Set(headerRequestID, "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(headerRequestID))

	resp, err = http.Get(srv.URL + "/api/bookings")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"success":false`))
	assert.NotEmpty(t, resp.Header.Get(headerRequestID))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not rate limited")
}
