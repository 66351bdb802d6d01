package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recdocs/internal/api"
	"recdocs/internal/apiclient"
	"recdocs/internal/docs"
	"recdocs/internal/drive"
	"recdocs/internal/server"
	"recdocs/internal/testutil"
)

func newClient(t *testing.T, layout docs.Layout) *apiclient.Client {
	t.Helper()
	svc := drive.NewService(testutil.NewTestDatabase(t), testutil.NewTestVault(), layout,
		docs.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	ts := httptest.NewServer(server.New(svc, docs.NewNopLogger(), server.Options{}).Handler())
	t.Cleanup(ts.Close)
	return apiclient.New(ts.URL+"/", 5*time.Second)
}

func TestClient_Backend(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, docs.CategorizedLayout([]string{"Income", "Assets"}))

	lookup, err := c.CheckFolder(ctx, "006A")
	require.NoError(t, err)
	_, found := lookup.Folder()
	assert.False(t, found)

	folder, err := c.CreateFolder(ctx, "006A")
	require.NoError(t, err)
	require.Len(t, folder.SubFolderIDs, 2)

	_, err = c.CreateFolder(ctx, "006A")
	assert.ErrorIs(t, err, docs.ErrFolderExists)

	var withStatus *api.ErrorWithStatusCode
	require.True(t, errors.As(err, &withStatus))
	assert.Equal(t, http.StatusConflict, withStatus.StatusCode)

	uploaded, err := c.UploadFiles(ctx, []docs.StagedFile{
		{Index: 0, DisplayName: "w2.txt", Category: "Income", DestinationFolderID: folder.SubFolderIDs["Income"], Content: "d2FnZXM="},
	})
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
	assert.Equal(t, "w2.txt", uploaded[0].FileName)

	lookup, err = c.CheckFolder(ctx, "006A")
	require.NoError(t, err)
	assert.Equal(t, uploaded, lookup.Documents())

	deleted, err := c.DeleteFile(ctx, uploaded[0].FileID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.DeleteFile(ctx, uploaded[0].FileID)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, c.ValidateSetup(ctx))
}

func TestClient_UploadRejected(t *testing.T) {
	c := newClient(t, docs.SingleFolderLayout())

	_, err := c.UploadFiles(context.Background(), []docs.StagedFile{
		{DisplayName: "a.txt", Category: "Documents", DestinationFolderID: "missing", Content: "YQ=="},
	})
	require.Error(t, err)

	var withStatus *api.ErrorWithStatusCode
	require.True(t, errors.As(err, &withStatus))
	assert.Equal(t, http.StatusBadRequest, withStatus.StatusCode)
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := apiclient.New(url, time.Second).CheckFolder(context.Background(), "006A")
	assert.ErrorContains(t, err, "backend unavailable")
}

// The controller works unchanged against a remote backend.
func TestClient_DrivesController(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := newClient(t, docs.SingleFolderLayout())
	ctrl := docs.NewController("006A", c, testutil.NewTestStagingArea(), docs.WithLayout(docs.SingleFolderLayout()))

	require.NoError(t, ctrl.Activate(ctx))
	assert.Equal(t, docs.StateNeedsFolder, ctrl.State())
	require.NoError(t, ctrl.CreateFolder(ctx))

	sel, err := ctrl.SelectFiles(ctx, testutil.Sources(testutil.NewMemoryFile("a.txt", "alpha")))
	require.NoError(t, err)
	_, err = sel.Wait(ctx)
	require.NoError(t, err)

	uploaded, err := ctrl.Attach(ctx)
	require.NoError(t, err)
	require.Len(t, uploaded, 1)

	require.NoError(t, ctrl.Delete(ctx, uploaded[0].FileID))
	view, err := ctrl.View()
	require.NoError(t, err)
	assert.Empty(t, view.Uploaded)
	assert.Equal(t, docs.StateIdle, view.State)
}
