package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

const uniqueViolation = pq.ErrorCode("23505")

type voteRepository struct {
	db *sql.DB
}

var _ ports.VoteRecorder = (*voteRepository)(nil)

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (poll_id, voter_token, option_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, vote.PollID, vote.VoterToken, vote.OptionID, vote.CreatedAt)
	return saveVoteError(err)
}

func saveVoteError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAlreadyVoted
	}
	return fmt.Errorf("failed to save vote: %w", err)
}

// RecordVote stores the voter record and increments the counter in one
// transaction, so a crash can never leave a record without its vote.
func (r *voteRepository) RecordVote(ctx context.Context, vote *domain.Vote) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockPoll(ctx, tx, vote.PollID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO votes (poll_id, voter_token, option_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, query, vote.PollID, vote.VoterToken, vote.OptionID, vote.CreatedAt)
	if err := saveVoteError(err); err != nil {
		return nil, err
	}

	poll, err := applyVote(ctx, tx, vote.PollID, vote.OptionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return poll, nil
}

func (r *voteRepository) DeleteVote(ctx context.Context, pollID, voterToken string) error {
	query := `DELETE FROM votes WHERE poll_id = $1 AND voter_token = $2`
	_, err := r.db.ExecContext(ctx, query, pollID, voterToken)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, pollID, voterToken string) (bool, error) {
	query := `SELECT 1 FROM votes WHERE poll_id = $1 AND voter_token = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, voterToken).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}
