package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
	"voteboard/vote/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository is the relational VoteStore. Every Write is a single-row insert
// committed before return; gorm runs it in its own implicit transaction, so a
// concurrent Tally never sees a partial row.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Write(ctx context.Context, record entities.VoteRecord) error {
	row := voteModelFromRecord(record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVoter
		}
		r.logError("vote_repo_write_failed", err, "voter_id", record.VoterID)
		return domainerrors.ErrStorageUnavailable
	}
	return nil
}

func (r *Repository) Tally(ctx context.Context) ([]entities.TallyRow, error) {
	var rows []tallyScan
	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("vote, COUNT(id) AS count").
		Group("vote").
		Scan(&rows).
		Error
	if err != nil {
		r.logError("vote_repo_tally_failed", err)
		return nil, domainerrors.ErrStorageUnavailable
	}
	items := make([]entities.TallyRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.TallyRow{
			Choice: row.Vote,
			Count:  row.Count,
		})
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "vote",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vote repository operation failed", fields...)
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Vote      string    `gorm:"column:vote"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromRecord(record entities.VoteRecord) voteModel {
	row := voteModel{
		ID:        record.VoterID,
		Vote:      record.Choice,
		CreatedAt: record.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

type tallyScan struct {
	Vote  string `gorm:"column:vote"`
	Count int64  `gorm:"column:count"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.VoteStore = (*Repository)(nil)
