// internal/adapters/out/db/restaurant_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	dbcommon "tablenote/internal/adapters/out/db/common"
	restdom "tablenote/internal/domain/restaurant"
)

// RestaurantRepositoryPG はレストラン読み取りの PostgreSQL 実装です。
// CRUD 本体は本コアの対象外のため、lookup のみを提供します。
type RestaurantRepositoryPG struct {
	DB *sql.DB
}

func NewRestaurantRepositoryPG(db *sql.DB) *RestaurantRepositoryPG {
	return &RestaurantRepositoryPG{DB: db}
}

func (r *RestaurantRepositoryPG) FindByID(ctx context.Context, id string) (restdom.Restaurant, error) {
	if r == nil || r.DB == nil {
		return restdom.Restaurant{}, errors.New("restaurant_repository_pg: db is nil")
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `
SELECT id, name, address, created_at
FROM restaurants
WHERE id = $1`
	var rt restdom.Restaurant
	row := run.QueryRowContext(ctx, q, strings.TrimSpace(id))
	if err := row.Scan(&rt.ID, &rt.Name, &rt.Address, &rt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return restdom.Restaurant{}, restdom.ErrNotFound
		}
		return restdom.Restaurant{}, err
	}
	return rt, nil
}
