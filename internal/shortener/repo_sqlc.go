package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/shortlinks/internal/db/sqlc"
	"github.com/sundayezeilo/shortlinks/internal/errx"
	"github.com/sundayezeilo/shortlinks/internal/idgen"
)

// store is the subset of *db.Store the repository uses.
type store interface {
	CreateLink(ctx context.Context, arg db.CreateLinkParams) (db.Link, error)
	ActiveCodeExists(ctx context.Context, code string) (bool, error)
	GetActiveLinkByCode(ctx context.Context, code string) (db.Link, error)
	ListActiveLinksByCreated(ctx context.Context) ([]db.Link, error)
	ListActiveLinksByClicks(ctx context.Context) ([]db.Link, error)
	SoftDeleteLink(ctx context.Context, code string) (int64, error)
	ExecTx(ctx context.Context, fn func(db.Querier) error) error
}

var _ store = (*db.Store)(nil)

type repo struct {
	s   store
	ids idgen.Generator
}

// RepositoryConfig holds configuration for the repository
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a Repository backed by PostgreSQL.
func NewRepository(s store, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}

	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV7(idgen.WithRetries(1))
	}

	return &repo{
		s:   s,
		ids: config.IDGenerator,
	}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func toDomainLink(x db.Link) (Link, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Link{}, err
	}

	return Link{
		ID:          x.ID,
		Code:        x.Code,
		Target:      x.Target,
		Clicks:      x.Clicks,
		LastClicked: timePtr(x.LastClicked),
		CreatedAt:   createdAt,
		Deleted:     x.Deleted,
	}, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isCodeUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Internal, err)
	}
}

func (r *repo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "shortener.repo.Create"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		link.ID = id
	}

	row, err := r.s.CreateLink(ctx, db.CreateLinkParams{
		ID:     link.ID,
		Code:   link.Code,
		Target: link.Target,
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	created, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return created, nil
}

func (r *repo) CodeExists(ctx context.Context, code string) (bool, error) {
	const op = "shortener.repo.CodeExists"

	exists, err := r.s.ActiveCodeExists(ctx, code)
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return exists, nil
}

func (r *repo) GetByCode(ctx context.Context, code string) (Link, error) {
	const op = "shortener.repo.GetByCode"

	row, err := r.s.GetActiveLinkByCode(ctx, code)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	link, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return link, nil
}

func (r *repo) List(ctx context.Context, order ListOrder) ([]Link, error) {
	const op = "shortener.repo.List"

	var (
		rows []db.Link
		err  error
	)
	switch order {
	case OrderClicks:
		rows, err = r.s.ListActiveLinksByClicks(ctx)
	case OrderCreated:
		rows, err = r.s.ListActiveLinksByCreated(ctx)
	default:
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("unsupported order %v", order))
	}
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	links := make([]Link, 0, len(rows))
	for _, row := range rows {
		link, err := toDomainLink(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		links = append(links, link)
	}
	return links, nil
}

func (r *repo) RecordClick(ctx context.Context, code string) (Link, error) {
	const op = "shortener.repo.RecordClick"

	var updated db.Link
	err := r.s.ExecTx(ctx, func(q db.Querier) error {
		locked, err := q.LockActiveLinkByCode(ctx, code)
		if err != nil {
			return err
		}

		updated, err = q.RecordClick(ctx, locked.ID)
		return err
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	link, err := toDomainLink(updated)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return link, nil
}

func (r *repo) SoftDelete(ctx context.Context, code string) error {
	const op = "shortener.repo.SoftDelete"

	n, err := r.s.SoftDeleteLink(ctx, code)
	if err != nil {
		return mapRepoError(op, err)
	}
	if n == 0 {
		return errx.E(op, errx.NotFound, fmt.Errorf("no active link with code %q", code))
	}
	return nil
}
