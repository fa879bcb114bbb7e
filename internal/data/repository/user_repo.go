package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Save(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, emailFilter string, limit, offset int) ([]*entity.User, error)
	Count(ctx context.Context, emailFilter string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `u.id, u.email, u.password, u.roles, u.created_at, u.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		user     entity.User
		rolesRaw []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&rolesRaw,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var roles []entity.Role
	if len(rolesRaw) > 0 {
		if err := json.Unmarshal(rolesRaw, &roles); err != nil {
			return nil, fmt.Errorf("decode roles of user %d: %w", user.ID, err)
		}
	}
	user.Roles = entity.NewRoleSet(roles...)
	return &user, nil
}

// Create inserts the user and its group memberships in one transaction and
// sets user.ID.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	roles, err := json.Marshal(user.Roles.Strings())
	if err != nil {
		return fmt.Errorf("encode roles: %w", err)
	}
	now := time.Now()

	err = withTx(ctx, ur.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (email, password, roles, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, query, user.Email, user.PasswordHash, roles, now).Scan(&user.ID); err != nil {
			return translate(err)
		}
		return insertMemberships(ctx, tx, user.ID, user.GroupIDs())
	})
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

// Save writes every column and replaces the membership set with user.Groups.
func (ur *userRepository) Save(ctx context.Context, user *entity.User) error {
	roles, err := json.Marshal(user.Roles.Strings())
	if err != nil {
		return fmt.Errorf("encode roles: %w", err)
	}
	now := time.Now()

	err = withTx(ctx, ur.db, func(tx pgx.Tx) error {
		query := `
			UPDATE users
			SET email = $2, password = $3, roles = $4, updated_at = $5
			WHERE id = $1
		`
		result, err := tx.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, roles, now)
		if err != nil {
			return translate(err)
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM users_groups WHERE user_id = $1`, user.ID); err != nil {
			return err
		}
		return insertMemberships(ctx, tx, user.ID, user.GroupIDs())
	})
	if err != nil {
		ur.log.Error("Failed to save user",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}

	user.UpdatedAt = now
	return nil
}

func insertMemberships(ctx context.Context, tx pgx.Tx, userID int64, groupIDs []int64) error {
	for _, groupID := range groupIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO users_groups (user_id, user_group_id) VALUES ($1, $2)`,
			userID, groupID,
		)
		if err != nil {
			return fmt.Errorf("add user %d to group %d: %w", userID, groupID, translate(err))
		}
	}
	return nil
}

// FindByID loads the user together with its groups.
func (ur *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.Int64("user_id", id),
		)
		return nil, fmt.Errorf("find user by ID %d: %w", id, err)
	}

	groups, err := ur.findGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Groups = groups
	return user, nil
}

// FindByEmail does not load groups; it serves login and uniqueness checks.
func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

func (ur *userRepository) findGroups(ctx context.Context, userID int64) ([]*entity.UserGroup, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM user_groups g
		JOIN users_groups ug ON ug.user_group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.id ASC
	`

	rows, err := ur.db.Query(ctx, query, userID)
	if err != nil {
		ur.log.Error("Failed to load user groups", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("find groups of user %d: %w", userID, err)
	}
	defer rows.Close()

	groups := []*entity.UserGroup{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group rows: %w", err)
	}

	return groups, nil
}

// FindAll returns one page ordered by id; an empty filter matches everyone.
func (ur *userRepository) FindAll(ctx context.Context, emailFilter string, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE ($1 = '' OR u.email LIKE '%' || $1 || '%')
		ORDER BY u.id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := ur.db.Query(ctx, query, emailFilter, limit, offset)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.String("email_filter", emailFilter),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	if err := ur.attachGroups(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// attachGroups loads the groups of a whole page in one query.
func (ur *userRepository) attachGroups(ctx context.Context, users []*entity.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[int64]*entity.User, len(users))
	ids := make([]int64, len(users))
	for i, u := range users {
		u.Groups = []*entity.UserGroup{}
		byID[u.ID] = u
		ids[i] = u.ID
	}

	query := `
		SELECT ug.user_id, ` + groupColumns + `
		FROM users_groups ug
		JOIN user_groups g ON g.id = ug.user_group_id
		WHERE ug.user_id = ANY($1)
		ORDER BY g.id ASC
	`

	rows, err := ur.db.Query(ctx, query, ids)
	if err != nil {
		ur.log.Error("Failed to load groups of users", zap.Error(err))
		return fmt.Errorf("find groups of %d users: %w", len(ids), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			group  entity.UserGroup
		)
		if err := rows.Scan(&userID, &group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return fmt.Errorf("scan membership row: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.Groups = append(u.Groups, &group)
		}
	}

	return rows.Err()
}

func (ur *userRepository) Count(ctx context.Context, emailFilter string) (int64, error) {
	query := `SELECT COUNT(*) FROM users u WHERE ($1 = '' OR u.email LIKE '%' || $1 || '%')`

	var count int64
	if err := ur.db.QueryRow(ctx, query, emailFilter).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// Delete removes the user; users_groups and sessions rows cascade.
func (ur *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := ur.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		ur.log.Error("Failed to delete user",
			zap.Error(err),
			zap.Int64("id", id),
		)
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}

	ur.log.Info("User deleted", zap.Int64("id", id))
	return nil
}
