package main

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"healtogether/cmd/internal/config"
	"healtogether/cmd/internal/domain/mongodb"
	"healtogether/cmd/internal/domain/sqldb"
	"healtogether/cmd/internal/domain/sqldb/repository"
	"healtogether/cmd/internal/service"
)

// appointmentStore is what both the booking and the intake services need
// from the appointment repository.
type appointmentStore interface {
	service.AppointmentRepository
	service.PrescriptionLookup
}

// stores bundles one backend's repositories.
type stores struct {
	Users      service.UserRepository
	Appts      appointmentStore
	Intakes    service.IntakeRepository
	Caretakers service.CaretakerRequestRepository
	Visits     service.VisitRequestRepository

	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// openStores connects the backend named by DB_DRIVER. migrate also creates
// the schema (gorm) or the indexes (MongoDB).
func openStores(ctx context.Context, cfg *config.Config, migrate bool) (*stores, error) {
	if cfg.DBDriver == "mongo" {
		return openMongo(ctx, cfg, migrate)
	}
	return openSQL(cfg, migrate)
}

func openSQL(cfg *config.Config, migrate bool) (*stores, error) {
	db, err := sqldb.Init(sqldb.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("initialize %s database: %w", cfg.DBDriver, err)
	}

	if migrate {
		if err := sqldb.Migrate(db); err != nil {
			_ = closeSQL(db)
			return nil, fmt.Errorf("migrate %s database: %w", cfg.DBDriver, err)
		}
	}

	st := &stores{
		Users:      repository.NewUserRepository(db),
		Appts:      repository.NewAppointmentRepository(db),
		Intakes:    repository.NewIntakeRepository(db),
		Caretakers: repository.NewCaretakerRequestRepository(db),
		Visits:     repository.NewVisitRequestRepository(db),
	}
	st.Ping = func(ctx context.Context) error {
		return sqldb.Ping(ctx, db)
	}
	st.Close = func(context.Context) error {
		return closeSQL(db)
	}
	return st, nil
}

func closeSQL(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openMongo(ctx context.Context, cfg *config.Config, migrate bool) (*stores, error) {
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return nil, err
	}

	if migrate {
		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mongodb.EnsureIndexes(indexCtx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
	}

	st := &stores{
		Users:      mongodb.NewUserRepository(db),
		Appts:      mongodb.NewAppointmentRepository(db),
		Intakes:    mongodb.NewIntakeRepository(db),
		Caretakers: mongodb.NewCaretakerRequestRepository(db),
		Visits:     mongodb.NewVisitRequestRepository(db),
		Close:      client.Disconnect,
	}
	st.Ping = func(ctx context.Context) error {
		return mongodb.Ping(ctx, db)
	}
	return st, nil
}
