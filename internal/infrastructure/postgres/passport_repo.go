package postgres

import (
	"context"
	"fmt"

	"ticketsim/internal/domain/passport"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PassportRepository struct {
	pool *pgxpool.Pool
}

func NewPassportRepository(pool *pgxpool.Pool) *PassportRepository {
	return &PassportRepository{pool: pool}
}

func (r *PassportRepository) List(ctx context.Context) ([]passport.Passport, error) {
	const sql = `SELECT passport_number FROM passports ORDER BY passport_number`

	rows, err := conn(ctx, r.pool).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query passports: %w", err)
	}
	defer rows.Close()

	var passports []passport.Passport
	for rows.Next() {
		var number *string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scan passport: %w", err)
		}
		if number == nil || *number == "" {
			return nil, fmt.Errorf("%w: null passport_number", passport.ErrInvalidPassport)
		}
		passports = append(passports, passport.Passport{Number: *number})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passports: %w", err)
	}

	return passports, nil
}
