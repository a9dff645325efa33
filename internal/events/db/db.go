package db

import (
	"context"

	"github.com/uptrace/bun"

	"campus-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns events ordered by date. search matches title or
// location; unless includeCompleted is set, closed-out events are hidden
// (the public listing only shows upcoming events).
func (d *DB) ListEvents(ctx context.Context, search string, includeCompleted bool) ([]models.Event, error) {
	q := d.Bun.NewSelect().Model((*models.Event)(nil))

	if search != "" {
		pattern := "%" + search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("title LIKE ?", pattern).
				WhereOr("location LIKE ?", pattern)
		})
	}

	if !includeCompleted {
		q = q.Where("is_completed = ?", false)
	}

	var events []models.Event
	if err := q.Order("date ASC").Scan(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "slug", "description", "date", "time", "location",
			"organizer", "price", "is_completed", "image_url", "bank_name",
			"account_number", "account_holder", "certificate_template", "updated_at").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
