package events_test

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"campus-ticketing/internal/events/db"
	events "campus-ticketing/internal/events/service"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/storage"
)

func setupService(t *testing.T) (*events.EventService, storage.FileStore) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(context.Background())
	require.NoError(t, err)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	return events.NewEventService(&db.DB{Bun: bunDB}, store, logger.NewLogger()), store
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestCreate_DerivesSlugFromTitle(t *testing.T) {
	svc, _ := setupService(t)

	event, err := svc.Create(context.Background(), events.EventInput{
		Title:    "Seminar Teknologi Informasi",
		Date:     "2026-09-01",
		Location: "Aula Utama",
		Price:    intPtr(0),
	})
	require.NoError(t, err)

	assert.NotZero(t, event.ID)
	assert.True(t, strings.HasPrefix(event.Slug, "seminar-teknologi-informasi-"), "slug was %q", event.Slug)
}

func TestCreate_StoresCertificateTemplate(t *testing.T) {
	svc, store := setupService(t)

	event, err := svc.Create(context.Background(), events.EventInput{
		Title:                "Workshop Desain",
		CertTemplate:         strings.NewReader("template-bytes"),
		CertTemplateFilename: "template.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, event.CertificateTemplate)

	_, err = store.Get(context.Background(), event.CertificateTemplate)
	require.NoError(t, err)
}

func TestUpdate_RegeneratesSlugOnTitleChange(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, events.EventInput{Title: "Judul Lama"})
	require.NoError(t, err)
	oldSlug := event.Slug

	updated, err := svc.Update(ctx, event.ID, events.EventInput{Title: "Judul Baru"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.Slug, "judul-baru-"))
	assert.NotEqual(t, oldSlug, updated.Slug)
}

func TestUpdate_KeepsSlugWhenTitleUnchanged(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, events.EventInput{Title: "Judul Tetap", Location: "Gedung A"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, event.ID, events.EventInput{Location: "Gedung B"})
	require.NoError(t, err)
	assert.Equal(t, event.Slug, updated.Slug)
	assert.Equal(t, "Gedung B", updated.Location)
}

func TestUpdate_PartialLeavesOtherFieldsAlone(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, events.EventInput{Title: "Acara Berbayar", Price: intPtr(50000)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, event.ID, events.EventInput{Organizer: "Himpunan Mahasiswa"})
	require.NoError(t, err)
	assert.Equal(t, 50000, updated.Price, "price must survive a partial update")

	updated, err = svc.Update(ctx, event.ID, events.EventInput{Price: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Price)
}

func TestUpdate_ReplacingTemplateDeletesOldFile(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, events.EventInput{
		Title:                "Pelatihan",
		CertTemplate:         strings.NewReader("old"),
		CertTemplateFilename: "old.png",
	})
	require.NoError(t, err)
	oldRef := event.CertificateTemplate

	updated, err := svc.Update(ctx, event.ID, events.EventInput{
		CertTemplate:         strings.NewReader("new"),
		CertTemplateFilename: "new.png",
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldRef, updated.CertificateTemplate)

	_, err = store.Get(ctx, oldRef)
	assert.ErrorIs(t, err, storage.ErrNotFound, "old template must be gone")

	_, err = store.Get(ctx, updated.CertificateTemplate)
	require.NoError(t, err)
}

func TestUpdate_UnknownEvent(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Update(context.Background(), 9999, events.EventInput{Title: "x"})
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestList_HidesCompletedByDefault(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, events.EventInput{Title: "Acara Aktif"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, events.EventInput{Title: "Acara Selesai", IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	visible, err := svc.List(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Acara Aktif", visible[0].Title)

	all, err := svc.List(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestList_SearchFiltersByTitleOrLocation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, events.EventInput{Title: "Seminar AI", Location: "Aula Barat"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, events.EventInput{Title: "Lomba Debat", Location: "Gedung Timur"})
	require.NoError(t, err)

	byTitle, err := svc.List(ctx, "Seminar", false)
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Seminar AI", byTitle[0].Title)

	byLocation, err := svc.List(ctx, "Timur", false)
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, "Lomba Debat", byLocation[0].Title)
}

func TestGet_ByIDAndBySlug(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, events.EventInput{Title: "Kuliah Umum"})
	require.NoError(t, err)

	byID, err := svc.Get(ctx, strconv.FormatInt(event.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, event.ID, byID.ID)

	bySlug, err := svc.Get(ctx, event.Slug)
	require.NoError(t, err)
	assert.Equal(t, event.ID, bySlug.ID)

	_, err = svc.Get(ctx, "tidak-ada")
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, events.EventInput{Title: "Acara Dihapus"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, event.ID))
	_, err = svc.Get(ctx, event.Slug)
	assert.ErrorIs(t, err, events.ErrEventNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, event.ID), events.ErrEventNotFound)
}
