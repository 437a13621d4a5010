package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const testBucketName = "test-bucket"

var fixedNow = func() time.Time { return time.Date(2024, 5, 7, 10, 0, 0, 0, time.UTC) }

func TestObjectKey(t *testing.T) {
	key := ObjectKey(PrefixLoanDocuments, "My Payslip.PDF", fixedNow())
	assert.Regexp(t, regexp.MustCompile(`^loan_documents/2024/05/07/[0-9a-f-]{36}\.pdf$`), key)
	assert.NotEqual(t, key, ObjectKey(PrefixLoanDocuments, "My Payslip.PDF", fixedNow()))
}

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	store.now = fixedNow
	ctx := context.Background()

	key, err := store.Save(ctx, PrefixProfilePictures, "me.png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "profile_pictures/2024/05/07/"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "pixels", string(body))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func newFakeGCS(t *testing.T, handler http.Handler) (*GCSStore, func()) {
	server := httptest.NewServer(handler)

	store, err := NewGCSStore(
		context.Background(),
		testBucketName,
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("Failed to create fake GCS client: %v", err)
	}
	store.now = fixedNow
	return store, server.Close
}

func TestGCSStore_SaveSuccess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			w.Header().Set("Location", "/upload-session")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		case "PUT":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		default:
			t.Fatalf("Unexpected call: %s %s", r.Method, r.URL.Path)
		}
	})

	store, closeServer := newFakeGCS(t, handler)
	defer closeServer()

	key, err := store.Save(context.Background(), PrefixLoanDocuments, "id.jpg", strings.NewReader("data"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "loan_documents/2024/05/07/"))
}

func TestGCSStore_SavePreconditionFailed(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	})

	store, closeServer := newFakeGCS(t, handler)
	defer closeServer()

	_, err := store.Save(context.Background(), PrefixLoanDocuments, "id.jpg", strings.NewReader("data"))
	assert.Error(t, err)
}

func TestGCSStore_CloseNilSafe(t *testing.T) {
	store := &GCSStore{Client: nil, BucketName: testBucketName}
	assert.NotPanics(t, store.Close)
}
