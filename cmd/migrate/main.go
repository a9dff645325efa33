package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"golang.org/x/crypto/bcrypt"

	"campus-ticketing/internal/config"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/utils"
)

func main() {
	drop := flag.Bool("drop", false, "drop existing tables before migrating")
	seed := flag.Bool("seed", false, "insert the admin account and sample events")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("[Database] Failed to open PostgreSQL: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("[Database] Failed to connect to PostgreSQL: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()

	if *drop {
		if err := dropTables(ctx, db); err != nil {
			log.Fatalf("[Migrate] Failed to drop tables: %v", err)
		}
		log.Println("[Migrate] Dropped existing tables")
	}

	if err := createTables(ctx, db); err != nil {
		log.Fatalf("[Migrate] Failed to create tables: %v", err)
	}
	log.Println("[Migrate] Tables created")

	if *seed {
		if err := seedData(ctx, db); err != nil {
			log.Fatalf("[Migrate] Failed to seed data: %v", err)
		}
		log.Println("[Migrate] Seed data inserted")
	}
}

func dropTables(ctx context.Context, db *bun.DB) error {
	// Tickets reference users and events, so they go first.
	for _, model := range []interface{}{
		(*models.Ticket)(nil),
		(*models.Event)(nil),
		(*models.User)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func createTables(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Ticket)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	// One ticket per user per event. The registration guard checks first,
	// but this index is what actually closes the race.
	if _, err := db.NewCreateIndex().
		Model((*models.Ticket)(nil)).
		Index("idx_tickets_user_event").
		Unique().
		IfNotExists().
		Column("user_id", "event_id").
		Exec(ctx); err != nil {
		return err
	}

	return nil
}

func seedData(ctx context.Context, db *bun.DB) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Admin Ganesha",
		Email:    "admin@ganesha-event.test",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if _, err := db.NewInsert().Model(admin).On("CONFLICT (email) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	events := []models.Event{
		{
			Title:         "Seminar Teknologi Masa Depan",
			Slug:          utils.DeriveSlug("Seminar Teknologi Masa Depan"),
			Description:   "Eksplorasi tren teknologi terbaru bersama pembicara dari berbagai industri.",
			Date:          time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
			Time:          "09:00:00",
			Location:      "Auditorium Utama, Kampus Ganesha",
			Organizer:     "Himpunan Mahasiswa Informatika",
			Price:         50000,
			BankName:      "Bank BNI",
			AccountNumber: "1234567890",
			AccountHolder: "Himpunan Mahasiswa Informatika",
		},
		{
			Title:       "Workshop Desain Grafis",
			Slug:        utils.DeriveSlug("Workshop Desain Grafis"),
			Description: "Workshop gratis pengenalan desain grafis untuk mahasiswa baru.",
			Date:        time.Now().AddDate(0, 0, 14).Format("2006-01-02"),
			Time:        "13:00:00",
			Location:    "Lab Multimedia, Gedung B",
			Organizer:   "UKM Desain",
			Price:       0,
		},
	}
	for i := range events {
		if _, err := db.NewInsert().Model(&events[i]).On("CONFLICT (slug) DO NOTHING").Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
