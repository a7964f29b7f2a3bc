package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/paulexconde/vaxreview/internal/pkg/store"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const inquiryColumns = "id, user_id, content, user_email, user_phone, is_solved, created_at"

type inquiryDTO struct {
	UserID    int    `db:"user_id"`
	Content   string `db:"content"`
	UserEmail string `db:"user_email"`
	UserPhone string `db:"user_phone"`
}

func (d *inquiryDTO) ToModel(id int) any {
	return &models.Inquiry{
		ID:        id,
		UserID:    d.UserID,
		Content:   d.Content,
		UserEmail: d.UserEmail,
		UserPhone: d.UserPhone,
	}
}

type InquiryRepository struct {
	store store.Datastorer[models.Inquiry]
	pages paginator.Paginator[models.Inquiry]
}

func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	ds := store.NewDataStore[models.Inquiry](db, "inquiries")
	ds.SetHooks(store.Hooks{
		PostDelete: []func(ctx context.Context, tx *sqlx.Tx, id int) error{logInquiryDeleted},
	})
	return &InquiryRepository{store: ds, pages: paginator.NewPaginator[models.Inquiry](ds)}
}

func (r *InquiryRepository) Create(ctx context.Context, q models.Inquiry) (*models.Inquiry, error) {
	model, err := r.store.Create(ctx, &inquiryDTO{
		UserID:    q.UserID,
		Content:   q.Content,
		UserEmail: q.UserEmail,
		UserPhone: q.UserPhone,
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, model.(*models.Inquiry).ID)
}

func (r *InquiryRepository) Get(ctx context.Context, id int) (*models.Inquiry, error) {
	return r.store.Get(ctx, "SELECT "+inquiryColumns+" FROM inquiries WHERE id = $1", id)
}

// MarkSolved flips is_solved once. A second call gets fault.ErrAlreadySolved.
func (r *InquiryRepository) MarkSolved(ctx context.Context, id int) (*models.Inquiry, error) {
	var q models.Inquiry
	err := r.store.Base().GetContext(ctx, &q, "UPDATE inquiries SET is_solved = TRUE WHERE id = $1 AND is_solved = FALSE RETURNING "+inquiryColumns, id)
	if err == nil {
		return &q, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, fault.ErrAlreadySolved
}

// List pages inquiries newest first.
func (r *InquiryRepository) List(ctx context.Context, req paginator.PageRequest) (*paginator.Page[models.Inquiry], error) {
	query := "SELECT " + inquiryColumns + " FROM inquiries ORDER BY created_at DESC, id DESC"
	return r.pages.PaginateQuery(ctx, query, nil, req)
}

func (r *InquiryRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.store.Delete(ctx, id)
}

func logInquiryDeleted(ctx context.Context, tx *sqlx.Tx, id int) error {
	log.Printf("Inquiry %d deleted", id)
	return nil
}
