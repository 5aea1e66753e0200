// Package persistence implements the domain repository interfaces against
// concrete storage: pgx for TagRepository.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/domain/repositories"
	"github.com/kheina-com/tagsvc/internal/shared/apperr"
)

// PgTagRepository is the pgx-backed implementation of
// repositories.TagRepository.
type PgTagRepository struct {
	pool *pgxpool.Pool
}

func NewPgTagRepository(pool *pgxpool.Pool) *PgTagRepository {
	return &PgTagRepository{pool: pool}
}

var _ repositories.TagRepository = (*PgTagRepository)(nil)

// resolvePostID looks up the internal bigint id backing postID's opaque
// string form. The tag service never parses meaning from the string form
// itself; the posts table, owned by the post-directory service, is the
// only place that mapping is resolved.
func (r *PgTagRepository) resolvePostID(ctx context.Context, postID entities.PostID) (int64, error) {
	if postID.Int64() != 0 {
		return postID.Int64(), nil
	}
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM posts WHERE external_id = $1`, postID.String()).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound(fmt.Sprintf("post %q not found", postID.String()))
	}
	if err != nil {
		return 0, apperr.Internal("failed to resolve post id", err)
	}
	return id, nil
}

func (r *PgTagRepository) AddTags(ctx context.Context, postID entities.PostID, userID uuid.UUID, tags []string) error {
	id, err := r.resolvePostID(ctx, postID)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `CALL add_tags($1, $2, $3)`, id, userID, tags)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *PgTagRepository) RemoveTags(ctx context.Context, postID entities.PostID, userID uuid.UUID, tags []string) error {
	id, err := r.resolvePostID(ctx, postID)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `CALL remove_tags($1, $2, $3)`, id, userID, tags)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *PgTagRepository) InheritTag(ctx context.Context, userID uuid.UUID, parent, child string, deprecate bool) error {
	_, err := r.pool.Exec(ctx, `CALL inherit_tag($1, $2, $3, $4)`, userID, parent, child, deprecate)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *PgTagRepository) RemoveInheritance(ctx context.Context, parent, child string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tag_inheritance WHERE parent = $1 AND child = $2`, parent, child)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *PgTagRepository) UpdateTag(ctx context.Context, name string, patch repositories.TagUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&exists); err != nil {
		return apperr.Internal("failed to read tag for update", err)
	}
	if !exists {
		return apperr.NotFound(fmt.Sprintf("tag %q not found", name))
	}

	newName := name
	if patch.Name != nil {
		newName = *patch.Name
	}

	var classID *int
	if patch.Group != nil {
		var id int
		if err := tx.QueryRow(ctx, `SELECT tag_class_to_id($1)`, string(*patch.Group)).Scan(&id); err != nil {
			return apperr.Internal("failed to resolve tag class", err)
		}
		classID = &id
	}

	var ownerID *uuid.UUID
	if patch.OwnerHandle != nil {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT user_to_id($1)`, *patch.OwnerHandle).Scan(&id); err == nil {
			ownerID = &id
		}
	}

	description := patch.Description
	if patch.ClearDescription {
		empty := ""
		description = &empty
	}

	_, err = tx.Exec(ctx, `
		UPDATE tags SET
			name        = COALESCE($2, name),
			class_id    = COALESCE($3, class_id),
			owner       = CASE WHEN $4::boolean THEN $5 ELSE owner END,
			description = COALESCE($6, description),
			deprecated  = COALESCE($7, deprecated)
		WHERE name = $1
	`, name, nullIfSame(newName, name), classID, ownerID != nil, ownerID, description, patch.Deprecated)
	if err != nil {
		return mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("failed to commit tag update", err)
	}
	return nil
}

func nullIfSame(newVal, old string) *string {
	if newVal == old {
		return nil
	}
	return &newVal
}

func (r *PgTagRepository) FetchTagsByPost(ctx context.Context, postID entities.PostID) (entities.TagGroups, *entities.InternalPost, error) {
	var post entities.InternalPost
	var id int64
	var privacy string
	err := r.pool.QueryRow(ctx, `
		SELECT id, uploader, privacy_name FROM posts WHERE external_id = $1
	`, postID.String()).Scan(&id, &post.Uploader, &privacy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperr.NotFound(fmt.Sprintf("post %q not found", postID.String()))
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to fetch post", err)
	}
	post.Privacy = entities.Privacy(privacy)
	post.PostID = entities.NewPostID(postID.String(), id)

	rows, err := r.pool.Query(ctx, `
		SELECT tc.name, t.name
		FROM tag_post tp
		JOIN tags t ON t.name = tp.tag
		JOIN tag_classes tc ON tc.id = t.class_id
		WHERE tp.post_id = $1 AND t.deprecated = false
	`, id)
	if err != nil {
		return nil, nil, apperr.Internal("failed to fetch post tags", err)
	}
	defer rows.Close()

	groups := entities.TagGroups{}
	for rows.Next() {
		var group, tag string
		if err := rows.Scan(&group, &tag); err != nil {
			return nil, nil, apperr.Internal("failed to scan post tag row", err)
		}
		groups[entities.TagGroupName(group)] = append(groups[entities.TagGroupName(group)], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperr.Internal("failed to iterate post tags", err)
	}

	return groups, &post, nil
}

func (r *PgTagRepository) FetchTag(ctx context.Context, name string) (*entities.InternalTag, error) {
	var tag entities.InternalTag
	var owner *uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT t.name, tc.name, t.owner, t.deprecated, t.description
		FROM tags t JOIN tag_classes tc ON tc.id = t.class_id
		WHERE t.name = $1
	`, name).Scan(&tag.Name, &tag.Group, &owner, &tag.Deprecated, &tag.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("tag %q not found", name))
	}
	if err != nil {
		return nil, apperr.Internal("failed to fetch tag", err)
	}
	tag.Owner = owner

	children, err := r.fetchChildren(ctx, name)
	if err != nil {
		return nil, err
	}
	tag.InheritedTags = children
	return &tag, nil
}

func (r *PgTagRepository) fetchChildren(ctx context.Context, parent string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT child FROM tag_inheritance WHERE parent = $1 ORDER BY child`, parent)
	if err != nil {
		return nil, apperr.Internal("failed to fetch inheritance edges", err)
	}
	defer rows.Close()

	var children []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			return nil, apperr.Internal("failed to scan inheritance row", err)
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

func (r *PgTagRepository) FetchUserTags(ctx context.Context, userID uuid.UUID) ([]*entities.InternalTag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.name, tc.name, t.owner, t.deprecated, t.description
		FROM tags t JOIN tag_classes tc ON tc.id = t.class_id
		WHERE t.owner = $1
	`, userID)
	if err != nil {
		return nil, apperr.Internal("failed to fetch user tags", err)
	}
	defer rows.Close()
	return r.scanTags(ctx, rows)
}

func (r *PgTagRepository) FetchAllTags(ctx context.Context) ([]*entities.InternalTag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.name, tc.name, t.owner, t.deprecated, t.description
		FROM tags t JOIN tag_classes tc ON tc.id = t.class_id
	`)
	if err != nil {
		return nil, apperr.Internal("failed to fetch all tags", err)
	}
	defer rows.Close()
	return r.scanTags(ctx, rows)
}

func (r *PgTagRepository) scanTags(ctx context.Context, rows pgx.Rows) ([]*entities.InternalTag, error) {
	var out []*entities.InternalTag
	for rows.Next() {
		var tag entities.InternalTag
		var owner *uuid.UUID
		if err := rows.Scan(&tag.Name, &tag.Group, &owner, &tag.Deprecated, &tag.Description); err != nil {
			return nil, apperr.Internal("failed to scan tag row", err)
		}
		tag.Owner = owner
		out = append(out, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to iterate tag rows", err)
	}

	for _, tag := range out {
		children, err := r.fetchChildren(ctx, tag.Name)
		if err != nil {
			return nil, err
		}
		tag.InheritedTags = children
	}
	return out, nil
}

func (r *PgTagRepository) CountPublicPostsForTag(ctx context.Context, name string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tag_post tp
		JOIN posts p ON p.id = tp.post_id
		WHERE tp.tag = $1 AND p.privacy_name = 'public'
	`, name).Scan(&count)
	if err != nil {
		return 0, apperr.Internal("failed to count public posts for tag", err)
	}
	return count, nil
}

// mapPgError maps Postgres error codes onto apperr kinds: unique_violation
// (duplicate edge / rename collision) -> Conflict, not_null/foreign_key
// (bad class) -> BadRequest, check_violation (cycle guard) -> BadRequest.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.Conflict("duplicate entry").WithDetails("constraint", pgErr.ConstraintName)
		case "23502", "23503", "23514":
			return apperr.BadRequest(pgErr.Message)
		}
	}
	return apperr.Internal("database operation failed", err)
}
