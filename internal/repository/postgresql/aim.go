package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/aim"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type aimRepository struct {
	db *database.DB
}

func NewAimRepository(db *database.DB) aim.AimRepository {
	return &aimRepository{db: db}
}

// GetByEmployeeAndDate implements aim.AimRepository.
func (r *aimRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*aim.DailyAim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, work_description, completion_status,
			   COALESCE(completion_comment, ''), progress_percentage, updated_at
		FROM daily_aims
		WHERE employee_id = $1 AND date = $2
	`

	var a aim.DailyAim
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.WorkDescription, &a.CompletionStatus,
		&a.CompletionComment, &a.ProgressPercentage, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily aim: %w", err)
	}
	return &a, nil
}
