// internal/adapters/out/db/review_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	dbcommon "tablenote/internal/adapters/out/db/common"
	"tablenote/internal/domain/keyword"
	revdom "tablenote/internal/domain/review"
)

// ReviewRepositoryPG は Review 集約リポジトリの PostgreSQL 実装です。
//
// Tables:
// - reviews(id, author_id, restaurant_id, content, media_status, created_at)
// - review_images(id, review_id, url, ord, is_main)
// - review_image_tooltips(image_id, tooltip_type, x_position, y_position,
//   rating, menu_name, total_price, serving_size, note)
// - review_keywords(review_id, keyword)
//
// Create は集約全体を 1 トランザクションで insert する（cascade create）。
// 後続のブロブ移行はこのトランザクションの外で行われる。
type ReviewRepositoryPG struct {
	DB *sql.DB
}

func NewReviewRepositoryPG(db *sql.DB) *ReviewRepositoryPG {
	return &ReviewRepositoryPG{DB: db}
}

// Create inserts the whole aggregate in one transaction.
func (r *ReviewRepositoryPG) Create(ctx context.Context, rv revdom.Review) (revdom.Review, error) {
	if r == nil || r.DB == nil {
		return revdom.Review{}, errors.New("review_repository_pg: db is nil")
	}

	err := dbcommon.WithinTx(ctx, r.DB, func(ctx context.Context) error {
		run := dbcommon.GetRunner(ctx, r.DB)

		const insReview = `
INSERT INTO reviews (id, author_id, restaurant_id, content, media_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := run.ExecContext(ctx, insReview,
			strings.TrimSpace(rv.ID),
			strings.TrimSpace(rv.AuthorID),
			strings.TrimSpace(rv.RestaurantID),
			rv.Content,
			string(rv.MediaStatus),
			rv.CreatedAt.UTC(),
		); err != nil {
			if dbcommon.IsUniqueViolation(err) {
				return fmt.Errorf("review_repository_pg: duplicate review id: %w", err)
			}
			return err
		}

		const insImage = `
INSERT INTO review_images (id, review_id, url, ord, is_main)
VALUES ($1, $2, $3, $4, $5)`
		const insTooltip = `
INSERT INTO review_image_tooltips
  (image_id, tooltip_type, x_position, y_position, rating, menu_name, total_price, serving_size, note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		for _, img := range rv.Images {
			if _, err := run.ExecContext(ctx, insImage,
				img.ID, rv.ID, img.URL, img.Order, img.IsMain,
			); err != nil {
				return err
			}
			for _, tp := range img.Tooltips {
				if _, err := run.ExecContext(ctx, insTooltip,
					img.ID, string(tp.Type), tp.XPosition, tp.YPosition, tp.Rating,
					tp.MenuName, tp.TotalPrice, tp.ServingSize, tp.Note,
				); err != nil {
					return err
				}
			}
		}

		const insKeyword = `
INSERT INTO review_keywords (review_id, keyword)
VALUES ($1, $2)`
		for _, kw := range rv.Keywords {
			if _, err := run.ExecContext(ctx, insKeyword, rv.ID, string(kw)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return revdom.Review{}, err
	}
	return rv, nil
}

func (r *ReviewRepositoryPG) GetByID(ctx context.Context, id string) (revdom.Review, error) {
	if r == nil || r.DB == nil {
		return revdom.Review{}, errors.New("review_repository_pg: db is nil")
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `
SELECT id, author_id, restaurant_id, content, media_status, created_at
FROM reviews
WHERE id = $1`
	var rv revdom.Review
	var status string
	row := run.QueryRowContext(ctx, q, strings.TrimSpace(id))
	if err := row.Scan(&rv.ID, &rv.AuthorID, &rv.RestaurantID, &rv.Content, &status, &rv.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return revdom.Review{}, revdom.ErrNotFound
		}
		return revdom.Review{}, err
	}
	rv.MediaStatus = revdom.MediaStatus(status)

	images, err := r.loadImages(ctx, run, rv.ID)
	if err != nil {
		return revdom.Review{}, err
	}
	rv.Images = images

	keywords, err := r.loadKeywords(ctx, run, rv.ID)
	if err != nil {
		return revdom.Review{}, err
	}
	rv.Keywords = keywords
	return rv, nil
}

// UpdateImageURL rewrites one image's URL after migration.
func (r *ReviewRepositoryPG) UpdateImageURL(ctx context.Context, reviewID, imageID, url string) error {
	if r == nil || r.DB == nil {
		return errors.New("review_repository_pg: db is nil")
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `
UPDATE review_images
SET url = $1
WHERE review_id = $2 AND id = $3`
	res, err := run.ExecContext(ctx, q, strings.TrimSpace(url), strings.TrimSpace(reviewID), strings.TrimSpace(imageID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return revdom.ErrNotFound
	}
	return nil
}

func (r *ReviewRepositoryPG) MarkMediaReady(ctx context.Context, reviewID string) error {
	if r == nil || r.DB == nil {
		return errors.New("review_repository_pg: db is nil")
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `
UPDATE reviews
SET media_status = $1
WHERE id = $2`
	res, err := run.ExecContext(ctx, q, string(revdom.MediaReady), strings.TrimSpace(reviewID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return revdom.ErrNotFound
	}
	return nil
}

func (r *ReviewRepositoryPG) loadImages(ctx context.Context, run dbcommon.Runner, reviewID string) ([]revdom.ReviewImage, error) {
	const q = `
SELECT id, url, ord, is_main
FROM review_images
WHERE review_id = $1
ORDER BY ord ASC`
	rows, err := run.QueryContext(ctx, q, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []revdom.ReviewImage
	for rows.Next() {
		var img revdom.ReviewImage
		if err := rows.Scan(&img.ID, &img.URL, &img.Order, &img.IsMain); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range images {
		tooltips, err := r.loadTooltips(ctx, run, images[i].ID)
		if err != nil {
			return nil, err
		}
		images[i].Tooltips = tooltips
	}
	return images, nil
}

func (r *ReviewRepositoryPG) loadTooltips(ctx context.Context, run dbcommon.Runner, imageID string) ([]revdom.Tooltip, error) {
	const q = `
SELECT tooltip_type, x_position, y_position, rating, menu_name, total_price, serving_size, note
FROM review_image_tooltips
WHERE image_id = $1`
	rows, err := run.QueryContext(ctx, q, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []revdom.Tooltip
	for rows.Next() {
		var tp revdom.Tooltip
		var typ string
		if err := rows.Scan(&typ, &tp.XPosition, &tp.YPosition, &tp.Rating,
			&tp.MenuName, &tp.TotalPrice, &tp.ServingSize, &tp.Note); err != nil {
			return nil, err
		}
		tp.Type = revdom.TooltipType(typ)
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *ReviewRepositoryPG) loadKeywords(ctx context.Context, run dbcommon.Runner, reviewID string) ([]keyword.Keyword, error) {
	const q = `
SELECT keyword
FROM review_keywords
WHERE review_id = $1`
	rows, err := run.QueryContext(ctx, q, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []keyword.Keyword
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, err
		}
		out = append(out, keyword.Keyword(kw))
	}
	return out, rows.Err()
}
