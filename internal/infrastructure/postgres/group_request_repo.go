package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tabletophq/groupfinder/internal/domain"
)

type GroupRequestRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRequestRepository(pool *pgxpool.Pool) *GroupRequestRepository {
	return &GroupRequestRepository{pool: pool}
}

func (r *GroupRequestRepository) Create(ctx context.Context, groupID, userID int64) (*domain.GroupRequest, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO group_requests (group_id, user_id, status)
		VALUES ($1, $2, 'PENDING')
		RETURNING id, group_id, user_id, status, created_at, updated_at`,
		groupID, userID,
	)

	gr, err := scanGroupRequest(row)
	if err != nil {
		// Concurrent creates for the same pair race on the unique index;
		// the loser gets 23505 and reports the same conflict the
		// read-then-write path would have.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrRequestExists
		}
		return nil, err
	}
	return gr, nil
}

func (r *GroupRequestRepository) FindByGroupAndUser(ctx context.Context, groupID, userID int64) (*domain.GroupRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, group_id, user_id, status, created_at, updated_at
		FROM group_requests
		WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	)
	return scanGroupRequest(row)
}

func (r *GroupRequestRepository) GetByID(ctx context.Context, requestID, groupID int64) (*domain.GroupRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT gr.id, gr.group_id, gr.user_id, gr.status, gr.created_at, gr.updated_at,
		       g.id, g.name, g.master
		FROM group_requests gr
		JOIN groups g ON g.id = gr.group_id
		WHERE gr.id = $1 AND gr.group_id = $2`,
		requestID, groupID,
	)

	var gr domain.GroupRequest
	var g domain.GroupSummary
	err := row.Scan(
		&gr.ID, &gr.GroupID, &gr.UserID, &gr.Status, &gr.CreatedAt, &gr.UpdatedAt,
		&g.ID, &g.Name, &g.Master,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("scan group request: %w", err)
	}
	gr.Group = &g
	return &gr, nil
}

func (r *GroupRequestRepository) ListPendingByMaster(ctx context.Context, masterID int64) ([]*domain.GroupRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gr.id, gr.group_id, gr.user_id, gr.status, gr.created_at, gr.updated_at,
		       g.id, g.name, g.master,
		       u.id, u.username
		FROM group_requests gr
		JOIN groups g ON g.id = gr.group_id
		JOIN users u ON u.id = gr.user_id
		WHERE g.master = $1 AND gr.status = 'PENDING'
		ORDER BY gr.created_at ASC, gr.id ASC`,
		masterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.GroupRequest
	for rows.Next() {
		var gr domain.GroupRequest
		var g domain.GroupSummary
		var u domain.UserSummary
		err := rows.Scan(
			&gr.ID, &gr.GroupID, &gr.UserID, &gr.Status, &gr.CreatedAt, &gr.UpdatedAt,
			&g.ID, &g.Name, &g.Master,
			&u.ID, &u.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("scan group request: %w", err)
		}
		gr.Group = &g
		gr.User = &u
		requests = append(requests, &gr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group requests: %w", err)
	}
	return requests, nil
}

// Accept attaches the requester to the group's players and marks the
// request ACCEPTED in one transaction — a crash between the two writes
// can never leave a member without an accepted request or vice versa.
func (r *GroupRequestRepository) Accept(ctx context.Context, requestID int64) (*domain.GroupRequest, error) {
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
		UPDATE group_requests SET status = 'ACCEPTED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING id, group_id, user_id, status, created_at, updated_at`,
		requestID,
	)
	gr, err := scanGroupRequest(row)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO group_players (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		gr.GroupID, gr.UserID,
	); err != nil {
		return nil, fmt.Errorf("attach player: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return gr, nil
}

func (r *GroupRequestRepository) Delete(ctx context.Context, requestID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM group_requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("delete group request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func scanGroupRequest(row pgx.Row) (*domain.GroupRequest, error) {
	var gr domain.GroupRequest
	err := row.Scan(&gr.ID, &gr.GroupID, &gr.UserID, &gr.Status, &gr.CreatedAt, &gr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("scan group request: %w", err)
	}
	return &gr, nil
}
