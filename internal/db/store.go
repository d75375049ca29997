package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soaringjerry/valoracion/internal/models"
)

// SQLStore keeps accounts and reviews in a relational database. It satisfies
// services.AccountStore and services.ReviewStore.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
	now     func() time.Time
}

func NewSQLStore(db *sql.DB, d Dialect, logger zerolog.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if d == SQLite {
		pragmas := []string{
			"PRAGMA foreign_keys = ON",
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		}
		for _, stmt := range pragmas {
			if _, err := db.Exec(stmt); err != nil {
				return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
			}
		}
	}
	return &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger.With().Str("component", "store").Str("dialect", string(d)).Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Init creates the tables from the embedded (or overridden) schema scripts.
func (s *SQLStore) Init(ctx context.Context, migrationsDir string) error {
	if err := RunMigrations(ctx, s.db, s.dialect, migrationsDir); err != nil {
		return err
	}
	s.logger.Debug().Msg("schema ready")
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }

// timestamp returns the current time at the precision every dialect stores,
// so values read back compare equal to what was returned on insert.
func (s *SQLStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// insert runs an INSERT and returns the new row id.
func (s *SQLStore) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect == Postgres {
		var id int64
		err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLStore) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	const q = `SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?`
	var (
		acc  models.Account
		hash string
	)
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(q), username).Scan(&acc.ID, &acc.Username, &hash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select account: %w", err)
	}
	acc.PassHash = []byte(hash)
	acc.CreatedAt = acc.CreatedAt.UTC()
	return &acc, nil
}

func (s *SQLStore) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// AddAccount stores a new account. The hash is written as text so every
// driver stores the bcrypt string unchanged.
func (s *SQLStore) AddAccount(ctx context.Context, username string, passHash []byte) (*models.Account, error) {
	if username == "" || len(passHash) == 0 {
		return nil, errors.New("username and password hash required")
	}
	created := s.timestamp()
	id, err := s.insert(ctx, `INSERT INTO accounts (username, pass_hash, created_at) VALUES (?, ?, ?)`,
		username, string(passHash), created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("account %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &models.Account{ID: id, Username: username, PassHash: passHash, CreatedAt: created}, nil
}

func (s *SQLStore) CreateReview(ctx context.Context, in models.NewReview) (*models.Review, error) {
	created := s.timestamp()
	var comment sql.NullString
	if in.Comment != nil {
		comment = sql.NullString{String: *in.Comment, Valid: true}
	}
	id, err := s.insert(ctx,
		`INSERT INTO reviews (q1, q2, q3, q4, comment, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Q1, in.Q2, in.Q3, in.Q4, comment, created, created)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	r := &models.Review{
		ID:        id,
		Q1:        in.Q1,
		Q2:        in.Q2,
		Q3:        in.Q3,
		Q4:        in.Q4,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if in.Comment != nil {
		c := *in.Comment
		r.Comment = &c
	}
	return r, nil
}

// ListReviews returns every review, newest first. Rows created in the same
// instant are ordered by descending id.
func (s *SQLStore) ListReviews(ctx context.Context) ([]*models.Review, error) {
	const q = `SELECT id, q1, q2, q3, q4, comment, created_at, updated_at FROM reviews ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	out := []*models.Review{}
	for rows.Next() {
		var (
			r       models.Review
			comment sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Q1, &r.Q2, &r.Q3, &r.Q4, &comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if comment.Valid {
			c := comment.String
			r.Comment = &c
		}
		r.CreatedAt = r.CreatedAt.UTC()
		r.UpdatedAt = r.UpdatedAt.UTC()
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

func (s *SQLStore) DeleteReview(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM reviews WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete review rows affected: %w", err)
	}
	return n > 0, nil
}

// CountReviews counts rows matching every non-nil answer in f.
func (s *SQLStore) CountReviews(ctx context.Context, f models.ReviewFilter) (int, error) {
	var (
		conds []string
		args  []any
	)
	for i, v := range []*bool{f.Q1, f.Q2, f.Q3, f.Q4} {
		if v == nil {
			continue
		}
		conds = append(conds, fmt.Sprintf("q%d = ?", i+1))
		args = append(args, *v)
	}
	q := `SELECT COUNT(*) FROM reviews`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(q), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}
