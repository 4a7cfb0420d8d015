package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, question, author_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Question, poll.AuthorID, poll.CreatedAt, poll.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryOption := `
		INSERT INTO poll_options (poll_id, id, position, text, votes)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for i, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, poll.ID, opt.ID, i, opt.Text, int64(opt.Votes))
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	return getPoll(ctx, r.db, id)
}

func getPoll(ctx context.Context, q queryer, id string) (*domain.Poll, error) {
	queryPoll := `
		SELECT id, question, author_id, created_at, expires_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	err := q.QueryRowContext(ctx, queryPoll, id).Scan(
		&poll.ID, &poll.Question, &poll.AuthorID, &poll.CreatedAt, &poll.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := fetchOptions(ctx, q, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options
	normalizeTimes(&poll)

	return &poll, nil
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT id, question, author_id, created_at, expires_at
		FROM polls
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.db.QueryContext(ctx, query, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	polls := []*domain.Poll{}
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(&poll.ID, &poll.Question, &poll.AuthorID, &poll.CreatedAt, &poll.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}

	for _, poll := range polls {
		options, err := fetchOptions(ctx, r.db, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options
		normalizeTimes(poll)
	}
	return polls, nil
}

// ApplyVote increments one counter and returns the poll exactly as that
// increment left it.
func (r *pollRepository) ApplyVote(ctx context.Context, pollID, optionID string) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockPoll(ctx, tx, pollID); err != nil {
		return nil, err
	}

	poll, err := applyVote(ctx, tx, pollID, optionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return poll, nil
}

// lockPoll takes the poll row lock, which serializes votes on one poll
// until the transaction ends.
func lockPoll(ctx context.Context, tx *sql.Tx, pollID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM polls WHERE id = $1 FOR UPDATE`, pollID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPollNotFound
		}
		return fmt.Errorf("failed to lock poll: %w", err)
	}
	return nil
}

// applyVote must run inside a transaction holding the poll lock.
func applyVote(ctx context.Context, tx *sql.Tx, pollID, optionID string) (*domain.Poll, error) {
	query := `
		UPDATE poll_options
		SET votes = votes + 1
		WHERE poll_id = $1 AND id = $2
	`
	res, err := tx.ExecContext(ctx, query, pollID, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply vote: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to apply vote: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrOptionNotFound
	}

	return getPoll(ctx, tx, pollID)
}

func fetchOptions(ctx context.Context, q queryer, pollID string) ([]domain.PollOption, error) {
	queryOptions := `
		SELECT id, text, votes
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY position
	`
	rows, err := q.QueryContext(ctx, queryOptions, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	var options []domain.PollOption
	for rows.Next() {
		var (
			opt   domain.PollOption
			votes int64
		)
		if err := rows.Scan(&opt.ID, &opt.Text, &votes); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		opt.Votes = uint64(votes)
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

func normalizeTimes(poll *domain.Poll) {
	poll.CreatedAt = poll.CreatedAt.UTC()
	if poll.ExpiresAt != nil {
		t := poll.ExpiresAt.UTC()
		poll.ExpiresAt = &t
	}
}
