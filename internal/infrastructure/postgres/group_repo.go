package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/repository"
)

const groupColumns = `id, name, description, schedule, location, chronic, master, created_at, updated_at`

type GroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// Create inserts the group and attaches the master as its first player.
// Both writes share one transaction so a group can never exist without
// its master in the player list.
func (r *GroupRepository) Create(ctx context.Context, input repository.CreateGroupInput) (*domain.Group, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO groups (name, description, schedule, location, chronic, master)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+groupColumns,
		input.Name, input.Description, input.Schedule, input.Location, input.Chronic, input.Master,
	)
	g, err := scanGroup(row)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO group_players (group_id, user_id) VALUES ($1, $2)`,
		g.ID, input.Master,
	); err != nil {
		return nil, fmt.Errorf("attach master: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.assemble(ctx, g)
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	g, err := scanGroup(row)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, g)
}

func (r *GroupRepository) List(ctx context.Context, input repository.ListGroupsInput) ([]*domain.Group, int, error) {
	args := []any{}
	where := []string{}

	if input.MemberID != nil {
		args = append(args, *input.MemberID)
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM group_players gp WHERE gp.group_id = groups.id AND gp.user_id = $%d)`,
			len(args)))
	}
	if input.Text != "" {
		args = append(args, "%"+input.Text+"%")
		where = append(where, fmt.Sprintf(
			`(name ILIKE $%d OR description ILIKE $%d)`, len(args), len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM groups %s`, clause), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}

	args = append(args, input.Limit, (input.Page-1)*input.Limit)
	query := fmt.Sprintf(`
		SELECT `+groupColumns+`
		FROM groups
		%s
		ORDER BY id ASC
		LIMIT $%d OFFSET $%d`,
		clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate groups: %w", err)
	}

	for _, g := range groups {
		if _, err := r.assemble(ctx, g); err != nil {
			return nil, 0, err
		}
	}
	return groups, total, nil
}

func (r *GroupRepository) Update(ctx context.Context, id int64, input repository.UpdateGroupInput) (*domain.Group, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE groups
		SET name = $2, description = $3, schedule = $4, location = $5, chronic = $6,
		    master = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+groupColumns,
		id, input.Name, input.Description, input.Schedule, input.Location, input.Chronic, input.Master,
	)
	g, err := scanGroup(row)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, g)
}

func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_players WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

func (r *GroupRepository) RemovePlayer(ctx context.Context, groupID, playerID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM group_players WHERE group_id = $1 AND user_id = $2`,
		groupID, playerID)
	if err != nil {
		return fmt.Errorf("remove player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotInGroup
	}
	return nil
}

// assemble loads players and the master user onto g. Explicit two-step
// fetch, nothing lazy.
func (r *GroupRepository) assemble(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.avatar, u.created_at, u.updated_at
		FROM group_players gp
		JOIN users u ON u.id = gp.user_id
		WHERE gp.group_id = $1
		ORDER BY gp.created_at ASC`,
		g.ID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()

	g.Players = g.Players[:0]
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		g.Players = append(g.Players, u)
		if u.ID == g.Master {
			g.MasterUser = u
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	if g.MasterUser == nil {
		master, err := r.FindMaster(ctx, g.Master)
		if err != nil {
			return nil, err
		}
		g.MasterUser = master
	}
	return g, nil
}

func (r *GroupRepository) FindMaster(ctx context.Context, masterID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, masterID)
	return scanUser(row)
}

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var g domain.Group
	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.Schedule, &g.Location, &g.Chronic,
		&g.Master, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return &g, nil
}
