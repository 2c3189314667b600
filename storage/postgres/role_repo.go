package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type roleRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRoleRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRoleStorage {
	return &roleRepo{db: db, log: log}
}

func (r *roleRepo) Set(ctx context.Context, userID string, role models.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`
	if _, err := r.db.Exec(ctx, query, userID, role); err != nil {
		return wrapMissingRelation(err)
	}
	return nil
}

// Get returns an empty role when the user has no flag.
func (r *roleRepo) Get(ctx context.Context, userID string) (models.Role, error) {
	var role models.Role
	err := r.db.QueryRow(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", wrapMissingRelation(err)
	}
	return role, nil
}
