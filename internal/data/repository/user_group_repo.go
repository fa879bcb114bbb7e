package repository

import (
	"context"
	"fmt"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserGroupRepository interface {
	Create(ctx context.Context, group *entity.UserGroup) error
	Update(ctx context.Context, group *entity.UserGroup) error
	FindByID(ctx context.Context, id int64) (*entity.UserGroup, error)
	FindByName(ctx context.Context, name string) (*entity.UserGroup, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*entity.UserGroup, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.UserGroup, error)
	ListAll(ctx context.Context) ([]*entity.UserGroup, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type userGroupRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserGroupRepository(db database.PgxIface, log *zap.Logger) UserGroupRepository {
	return &userGroupRepository{
		db:  db,
		log: log.With(zap.String("repository", "user_group")),
	}
}

const groupColumns = `g.id, g.name, g.created_at, g.updated_at`

func scanGroup(row rowScanner) (*entity.UserGroup, error) {
	var group entity.UserGroup
	if err := row.Scan(
		&group.ID,
		&group.Name,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &group, nil
}

func (gr *userGroupRepository) Create(ctx context.Context, group *entity.UserGroup) error {
	query := `
		INSERT INTO user_groups (name, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING id
	`
	now := time.Now()

	if err := gr.db.QueryRow(ctx, query, group.Name, now).Scan(&group.ID); err != nil {
		err = translate(err)
		gr.log.Error("Failed to create user group",
			zap.Error(err),
			zap.String("name", group.Name),
		)
		return fmt.Errorf("create user group %s: %w", group.Name, err)
	}

	group.CreatedAt, group.UpdatedAt = now, now
	return nil
}

func (gr *userGroupRepository) Update(ctx context.Context, group *entity.UserGroup) error {
	query := `UPDATE user_groups SET name = $2, updated_at = $3 WHERE id = $1`
	now := time.Now()

	result, err := gr.db.Exec(ctx, query, group.ID, group.Name, now)
	if err != nil {
		err = translate(err)
		gr.log.Error("Failed to update user group",
			zap.Error(err),
			zap.Int64("id", group.ID),
		)
		return fmt.Errorf("update user group %d: %w", group.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update user group %d: %w", group.ID, ErrNotFound)
	}

	group.UpdatedAt = now
	return nil
}

// FindByID loads the group together with its members.
func (gr *userGroupRepository) FindByID(ctx context.Context, id int64) (*entity.UserGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM user_groups g WHERE g.id = $1`

	group, err := scanGroup(gr.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		gr.log.Error("Failed to find user group by ID",
			zap.Error(err),
			zap.Int64("id", id),
		)
		return nil, fmt.Errorf("find user group by ID %d: %w", id, err)
	}

	users, err := gr.findUsers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Users = users
	return group, nil
}

func (gr *userGroupRepository) findUsers(ctx context.Context, groupID int64) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN users_groups ug ON ug.user_id = u.id
		WHERE ug.user_group_id = $1
		ORDER BY u.id ASC
	`

	rows, err := gr.db.Query(ctx, query, groupID)
	if err != nil {
		gr.log.Error("Failed to load group members", zap.Error(err), zap.Int64("id", groupID))
		return nil, fmt.Errorf("find users of group %d: %w", groupID, err)
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (gr *userGroupRepository) FindByName(ctx context.Context, name string) (*entity.UserGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM user_groups g WHERE g.name = $1`

	group, err := scanGroup(gr.db.QueryRow(ctx, query, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		gr.log.Error("Failed to find user group by name",
			zap.Error(err),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("find user group by name %s: %w", name, err)
	}

	return group, nil
}

// FindByIDs returns the groups that exist among ids, ordered by id. Callers
// compare lengths to detect unknown ids.
func (gr *userGroupRepository) FindByIDs(ctx context.Context, ids []int64) ([]*entity.UserGroup, error) {
	if len(ids) == 0 {
		return []*entity.UserGroup{}, nil
	}

	query := `SELECT ` + groupColumns + ` FROM user_groups g WHERE g.id = ANY($1) ORDER BY g.id ASC`
	return gr.list(ctx, "find user groups by IDs", query, ids)
}

// FindAll returns one page of groups with their members.
func (gr *userGroupRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.UserGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM user_groups g ORDER BY g.id ASC LIMIT $1 OFFSET $2`

	groups, err := gr.list(ctx, "find all user groups", query, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := gr.attachUsers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// attachUsers loads the members of a whole page in one query.
func (gr *userGroupRepository) attachUsers(ctx context.Context, groups []*entity.UserGroup) error {
	if len(groups) == 0 {
		return nil
	}

	byID := make(map[int64]*entity.UserGroup, len(groups))
	ids := make([]int64, len(groups))
	for i, g := range groups {
		g.Users = []*entity.User{}
		byID[g.ID] = g
		ids[i] = g.ID
	}

	query := `
		SELECT ug.user_group_id, ` + userColumns + `
		FROM users_groups ug
		JOIN users u ON u.id = ug.user_id
		WHERE ug.user_group_id = ANY($1)
		ORDER BY u.id ASC
	`

	rows, err := gr.db.Query(ctx, query, ids)
	if err != nil {
		gr.log.Error("Failed to load members of user groups", zap.Error(err))
		return fmt.Errorf("find members of %d user groups: %w", len(ids), err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID int64
		user, err := scanUser(memberRow{rows: rows, groupID: &groupID})
		if err != nil {
			return fmt.Errorf("scan member row: %w", err)
		}
		if g, ok := byID[groupID]; ok {
			g.Users = append(g.Users, user)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate member rows: %w", err)
	}

	return nil
}

// memberRow scans the leading group id and hands the rest to scanUser.
type memberRow struct {
	rows    pgx.Rows
	groupID *int64
}

func (m memberRow) Scan(dest ...any) error {
	return m.rows.Scan(append([]any{m.groupID}, dest...)...)
}

// ListAll feeds the group choices of the admin user form.
func (gr *userGroupRepository) ListAll(ctx context.Context) ([]*entity.UserGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM user_groups g ORDER BY g.name ASC`
	return gr.list(ctx, "list user groups", query)
}

func (gr *userGroupRepository) list(ctx context.Context, op, query string, args ...any) ([]*entity.UserGroup, error) {
	rows, err := gr.db.Query(ctx, query, args...)
	if err != nil {
		gr.log.Error("Failed to query user groups", zap.Error(err), zap.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	groups := []*entity.UserGroup{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			gr.log.Error("Failed to scan user group row", zap.Error(err))
			return nil, fmt.Errorf("scan user group row: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		gr.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate user group rows: %w", err)
	}

	return groups, nil
}

func (gr *userGroupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := gr.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_groups`).Scan(&count); err != nil {
		gr.log.Error("Database error counting user groups", zap.Error(err))
		return 0, fmt.Errorf("count user groups: %w", err)
	}

	return count, nil
}

// Delete removes the group; memberships cascade, the users remain.
func (gr *userGroupRepository) Delete(ctx context.Context, id int64) error {
	result, err := gr.db.Exec(ctx, `DELETE FROM user_groups WHERE id = $1`, id)
	if err != nil {
		gr.log.Error("Failed to delete user group",
			zap.Error(err),
			zap.Int64("id", id),
		)
		return fmt.Errorf("delete user group %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete user group %d: %w", id, ErrNotFound)
	}

	gr.log.Info("User group deleted", zap.Int64("id", id))
	return nil
}
