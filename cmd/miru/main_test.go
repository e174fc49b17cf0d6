package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"miru/internal/api"
	"miru/internal/booking"
	"miru/internal/database"
	"miru/internal/gateway"
	"miru/internal/mirror"
	"miru/internal/remote"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

type harness struct {
	app *app
	out *bytes.Buffer
}

func newHarness(t *testing.T, baseURL string, local mirror.Store) *harness {
	t.Helper()
	logger := zerolog.New(io.Discard)
	out := &bytes.Buffer{}
	client := remote.NewClient(baseURL, 500*time.Millisecond)
	a := &app{
		out:        out,
		logger:     logger,
		now:        func() time.Time { return time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC) },
		remote:     client,
		local:      local,
		mirrorDesc: "test mirror",
		gw:         gateway.New(client, local, &logger),
	}
	return &harness{app: a, out: out}
}

func (h *harness) run(args ...string) (string, error) {
	h.out.Reset()
	c := newCLI(h.app)
	c.ExitErrHandler = func(*cli.Context, error) {}
	err := c.Run(append([]string{"miru"}, args...))
	return h.out.String(), err
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "miru.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.New(io.Discard)
	svc := booking.NewService(booking.NewSQLRepository(db.DB))
	srv := httptest.NewServer(api.NewRouter(svc, api.RouterConfig{RateLimit: rate.Inf, RateBurst: 1}, &logger))
	t.Cleanup(srv.Close)
	return srv
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)
	return ec.ExitCode()
}

var claudetteArgs = []string{
	"--name", "Claudette", "--phone", "250788123456", "--tubes", "500",
	"--date", "2024-01-01", "--location", "Musanze",
}

func TestCLI_Workflow(t *testing.T) {
	srv := startServer(t)
	dir := t.TempDir()
	local := mirror.NewFileStore(filepath.Join(dir, "bookings.json"), nil)
	h := newHarness(t, srv.URL, local)
	ctx := context.Background()

	out, err := h.run(append([]string{"add"}, claudetteArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Booking saved.")
	assert.Contains(t, out, "RWF 300,000")
	assert.Contains(t, out, "31/01/2024")
	assert.Contains(t, out, "remote")

	list, _, err := h.app.gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	out, err = h.run("edit", "--tubes", "61", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Booking updated.")
	got, _, err := h.app.gw.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 61, got.Tubes)
	assert.Equal(t, "Claudette", got.Name)
	assert.Equal(t, "Musanze", got.Location)

	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Remote store: reachable")
	assert.Contains(t, out, "Local mirror: test mirror (1 bookings)")

	out, err = h.run("list", "--search", "claud")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookings [remote]")
	assert.Contains(t, out, "Claudette")

	out, err = h.run("list", "--search", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No bookings found.")

	out, err = h.run("remind", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Dear Claudette")
	assert.Contains(t, out, "https://wa.me/250788123456?text=")

	out, err = h.run("report")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly breakdown")
	assert.Contains(t, out, "Jan 2024")

	out, err = h.run("upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "later")

	pdfPath := filepath.Join(dir, "report.pdf")
	_, err = h.run("pdf", "--out", pdfPath)
	require.NoError(t, err)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	xlsxPath := filepath.Join(dir, "bookings.xlsx")
	out, err = h.run("export", "--out", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 bookings exported")
	assert.FileExists(t, xlsxPath)

	out, err = h.run("delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted [remote]")

	_, err = h.run("delete", id)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, "Booking not found.", err.Error())

	_, err = h.run("remind")
	assert.Equal(t, 2, exitCode(t, err))
}

func TestCLI_ValidationStopsBeforeStore(t *testing.T) {
	srv := startServer(t)
	h := newHarness(t, srv.URL, mirror.NewFileStore(filepath.Join(t.TempDir(), "b.json"), nil))

	out, err := h.run("add", "--name", "Claudette", "--phone", "12", "--tubes", "0")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "All fields are required.")
	assert.Contains(t, out, "phone: must contain 9 to 15 digits")
	assert.Contains(t, out, "tubes: must be at least 1")
	assert.Contains(t, out, "location: is required")

	list, _, err := h.app.gw.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCLI_OfflineFallback(t *testing.T) {
	srv := startServer(t)
	url := srv.URL
	srv.Close()

	h := newHarness(t, url, mirror.NewFileStore(filepath.Join(t.TempDir(), "b.json"), nil))

	out, err := h.run(append([]string{"add"}, claudetteArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "local (offline)")

	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookings [local (offline)]")
	assert.Contains(t, out, "Claudette")

	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Remote store: unreachable")
	assert.Contains(t, out, "Local mirror: test mirror (1 bookings)")
}

func TestCLI_RemoteRejectionIsShown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"All fields are required."}`))
	}))
	t.Cleanup(srv.Close)

	local := mirror.NewFileStore(filepath.Join(t.TempDir(), "b.json"), nil)
	h := newHarness(t, srv.URL, local)
	logger := zerolog.New(io.Discard)
	h.app.gw = gateway.New(h.app.remote, local, &logger, gateway.WithRejectPolicy(gateway.RejectSurface))

	out, err := h.run(append([]string{"add"}, claudetteArgs...)...)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, "All fields are required.", err.Error())
	assert.NotContains(t, out, "Booking saved.")

	stored, err := local.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCLI_UnexpectedFailure(t *testing.T) {
	srv := startServer(t)
	url := srv.URL
	srv.Close()

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	h := newHarness(t, url, mirror.NewFileStore(filepath.Join(blocker, "b.json"), nil))

	_, err := h.run(append([]string{"add"}, claudetteArgs...)...)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, msgUnexpected, err.Error())
}
