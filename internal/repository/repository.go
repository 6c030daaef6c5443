package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"renohub/internal/config"
	"renohub/internal/models"

	postgres "renohub/internal/repository/db"
)

type Repository struct {
	db  *sqlx.DB
	cfg *config.PostgresConfig
}

func NewRepository(db *sqlx.DB, cfg *config.PostgresConfig) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp == "true" {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db.DB)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db.DB)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown == "true" {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

//// Parties

func (repo *Repository) CustomerByUUID(ctx context.Context, UUID string) (models.Customer, error) {
	var customer models.Customer
	err := repo.db.GetContext(ctx, &customer,
		"SELECT id, name, email, created_at FROM customers WHERE id = $1", UUID)
	if err != nil {
		return customer, fmt.Errorf("repository.Repository.CustomerByUUID: %w", err)
	}
	return customer, nil
}

func (repo *Repository) ContractorByUUID(ctx context.Context, UUID string) (models.Contractor, error) {
	var contractor models.Contractor
	err := repo.db.GetContext(ctx, &contractor,
		"SELECT id, company_name, email, phone, created_at FROM contractors WHERE id = $1", UUID)
	if err != nil {
		return contractor, fmt.Errorf("repository.Repository.ContractorByUUID: %w", err)
	}
	return contractor, nil
}

//// Service

func wrapRollbackErr(tx *sqlx.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

// isUniqueViolation detects postgres error 23505, raised when an insert loses
// the race against a uniqueness constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

//// Test utils

func (repo *Repository) TestGetDB() *sqlx.DB {
	return repo.db
}
