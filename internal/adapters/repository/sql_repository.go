package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
	"github.com/sony/gobreaker"
)

// SQLRepository implements MealPlanRepository, ProfileRepository and AccountRepository using PostgreSQL
// Includes retry logic and circuit breaker for resilience
type SQLRepository struct {
	db         *sql.DB
	planCB     *gobreaker.CircuitBreaker
	profileCB  *gobreaker.CircuitBreaker
	accountCB  *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

// NewSQLRepository creates a new PostgreSQL repository with circuit breakers
func NewSQLRepository(db *sql.DB) *SQLRepository {
	breaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			// A missing row is an answer, not a database failure
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, sql.ErrNoRows)
			},
		})
	}

	return &SQLRepository{
		db:         db,
		planCB:     breaker("database-meal-plans"),
		profileCB:  breaker("database-profiles"),
		accountCB:  breaker("database-accounts"),
		maxRetries: 3,
		retryDelay: 1 * time.Second,
	}
}

// executeWithRetry executes a database operation with retry logic
func (r *SQLRepository) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		// Not transient
		if errors.Is(err, sql.ErrNoRows) || ctx.Err() != nil {
			return err
		}
		if i < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", r.maxRetries, lastErr)
}

// MealPlanRepository implementation

func (r *SQLRepository) SaveMealPlan(ctx context.Context, plan *domain.MealPlan) error {
	body, err := json.Marshal(plan.MealPlanResult)
	if err != nil {
		return fmt.Errorf("failed to encode meal plan: %w", err)
	}

	_, err = r.planCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO meal_plans (id, patient_id, generated_by, generated_at, day_count, source, plan)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`
			_, err := r.db.ExecContext(ctx, query, plan.ID, plan.PatientID, plan.GeneratedBy, plan.GeneratedAt,
				plan.DayCount, string(plan.Source), body)
			return err
		})
	})
	return err
}

const mealPlanColumns = `id, patient_id, generated_by, generated_at, day_count, source, plan`

func (r *SQLRepository) GetLatestMealPlan(ctx context.Context, patientID uuid.UUID) (*domain.MealPlan, error) {
	result, err := r.planCB.Execute(func() (interface{}, error) {
		var plan *domain.MealPlan
		err := r.executeWithRetry(ctx, func() error {
			query := `SELECT ` + mealPlanColumns + ` FROM meal_plans WHERE patient_id = $1 ORDER BY generated_at DESC LIMIT 1`
			var scanErr error
			plan, scanErr = scanMealPlan(r.db.QueryRowContext(ctx, query, patientID))
			return scanErr
		})
		if err != nil {
			return nil, err
		}
		return plan, nil
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMealPlanNotFound
		}
		return nil, err
	}

	return result.(*domain.MealPlan), nil
}

func (r *SQLRepository) ListMealPlans(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*domain.MealPlan, int, error) {
	type page struct {
		plans []*domain.MealPlan
		total int
	}

	result, err := r.planCB.Execute(func() (interface{}, error) {
		var p page
		err := r.executeWithRetry(ctx, func() error {
			p = page{}
			if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meal_plans WHERE patient_id = $1`, patientID).Scan(&p.total); err != nil {
				return err
			}

			query := `SELECT ` + mealPlanColumns + ` FROM meal_plans WHERE patient_id = $1
				ORDER BY generated_at DESC LIMIT $2 OFFSET $3`
			rows, err := r.db.QueryContext(ctx, query, patientID, limit, offset)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				plan, err := scanMealPlan(rows)
				if err != nil {
					return err
				}
				p.plans = append(p.plans, plan)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	if err != nil {
		return nil, 0, err
	}

	p := result.(page)
	return p.plans, p.total, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMealPlan(row rowScanner) (*domain.MealPlan, error) {
	var (
		plan   domain.MealPlan
		source string
		body   []byte
	)
	if err := row.Scan(&plan.ID, &plan.PatientID, &plan.GeneratedBy, &plan.GeneratedAt, &plan.DayCount, &source, &body); err != nil {
		return nil, err
	}

	dayCount := plan.DayCount
	if err := json.Unmarshal(body, &plan.MealPlanResult); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan %s: %w", plan.ID, err)
	}
	// Columns are authoritative over the stored document
	plan.DayCount = dayCount
	plan.Source = domain.Source(source)

	return &plan, nil
}

// ProfileRepository implementation

func (r *SQLRepository) UpsertProfile(ctx context.Context, profile *domain.PatientProfile) error {
	body, err := json.Marshal(profile.Descriptor)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	_, err = r.profileCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO patient_profiles (patient_id, profile, created_at, updated_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (patient_id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = EXCLUDED.updated_at`
			_, err := r.db.ExecContext(ctx, query, profile.PatientID, body, profile.CreatedAt, profile.UpdatedAt)
			return err
		})
	})
	return err
}

func (r *SQLRepository) GetProfile(ctx context.Context, patientID uuid.UUID) (*domain.PatientProfile, error) {
	result, err := r.profileCB.Execute(func() (interface{}, error) {
		var (
			profile domain.PatientProfile
			body    []byte
		)
		err := r.executeWithRetry(ctx, func() error {
			query := `SELECT patient_id, profile, created_at, updated_at FROM patient_profiles WHERE patient_id = $1`
			return r.db.QueryRowContext(ctx, query, patientID).Scan(&profile.PatientID, &body, &profile.CreatedAt, &profile.UpdatedAt)
		})
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, &profile.Descriptor); err != nil {
			return nil, fmt.Errorf("failed to decode profile %s: %w", patientID, err)
		}
		return &profile, nil
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	return result.(*domain.PatientProfile), nil
}

// AccountRepository implementation

// CreateAccount inserts the account unless its ID already exists; the result reports whether a row was written
func (r *SQLRepository) CreateAccount(ctx context.Context, account *domain.Account) (bool, error) {
	result, err := r.accountCB.Execute(func() (interface{}, error) {
		var created bool
		err := r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO accounts (id, email, name, role, approval_status, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING`
			res, err := r.db.ExecContext(ctx, query, account.ID, account.Email, account.Name, account.Role,
				string(account.ApprovalStatus), account.CreatedAt)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			created = affected > 0
			return err
		})
		if err != nil {
			return nil, err
		}
		return created, nil
	})

	if err != nil {
		return false, err
	}

	return result.(bool), nil
}

const accountColumns = `id, email, name, role, approval_status, rejection_reason, approved_by, approved_at, created_at`

func (r *SQLRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	result, err := r.accountCB.Execute(func() (interface{}, error) {
		var account *domain.Account
		err := r.executeWithRetry(ctx, func() error {
			query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
			var scanErr error
			account, scanErr = scanAccount(r.db.QueryRowContext(ctx, query, id))
			return scanErr
		})
		if err != nil {
			return nil, err
		}
		return account, nil
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return result.(*domain.Account), nil
}

// ListAccounts returns accounts of a role, optionally filtered by approval status, oldest first
func (r *SQLRepository) ListAccounts(ctx context.Context, role string, status domain.ApprovalStatus) ([]*domain.Account, error) {
	result, err := r.accountCB.Execute(func() (interface{}, error) {
		var accounts []*domain.Account
		err := r.executeWithRetry(ctx, func() error {
			accounts = []*domain.Account{}

			conditions := []string{"role = $1"}
			args := []interface{}{role}
			if status != "" {
				conditions = append(conditions, "approval_status = $2")
				args = append(args, string(status))
			}
			query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created_at ASC`

			rows, err := r.db.QueryContext(ctx, query, args...)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				account, err := scanAccount(rows)
				if err != nil {
					return err
				}
				accounts = append(accounts, account)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return accounts, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]*domain.Account), nil
}

func (r *SQLRepository) UpdateApproval(ctx context.Context, account *domain.Account) error {
	_, err := r.accountCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `UPDATE accounts SET approval_status = $1, rejection_reason = $2, approved_by = $3, approved_at = $4 WHERE id = $5`
			res, err := r.db.ExecContext(ctx, query, string(account.ApprovalStatus), nullString(account.RejectionReason),
				account.ApprovedBy, account.ApprovedAt, account.ID)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return sql.ErrNoRows
			}
			return nil
		})
	})

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	return err
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account    domain.Account
		status     string
		reason     sql.NullString
		approvedBy uuid.NullUUID
		approvedAt sql.NullTime
	)
	if err := row.Scan(&account.ID, &account.Email, &account.Name, &account.Role, &status, &reason,
		&approvedBy, &approvedAt, &account.CreatedAt); err != nil {
		return nil, err
	}

	account.ApprovalStatus = domain.ApprovalStatus(status)
	account.RejectionReason = reason.String
	if approvedBy.Valid {
		account.ApprovedBy = &approvedBy.UUID
	}
	if approvedAt.Valid {
		account.ApprovedAt = &approvedAt.Time
	}
	return &account, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var (
	_ ports.MealPlanRepository = (*SQLRepository)(nil)
	_ ports.ProfileRepository  = (*SQLRepository)(nil)
	_ ports.AccountRepository  = (*SQLRepository)(nil)
)
