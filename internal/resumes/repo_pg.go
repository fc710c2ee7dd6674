package resumes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a generation record.
func (r *PGRepo) Create(ctx context.Context, gen Generation) error {
	const query = `
INSERT INTO generated_resumes (
    id, template, pdf_key, pdf_size, docx_key, docx_size, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		gen.ID,
		string(gen.Template),
		gen.PDFKey,
		gen.PDFSize,
		gen.DocxKey,
		gen.DocxSize,
		gen.CreatedAt,
	)
	return err
}

// GetByID returns a generation record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Generation, error) {
	// Non-UUID ids can never match and would make Postgres reject the cast.
	if _, err := uuid.Parse(id); err != nil {
		return Generation{}, ErrNotFound
	}
	const query = `
SELECT id, template, pdf_key, pdf_size, docx_key, docx_size, created_at
FROM generated_resumes
WHERE id = $1
LIMIT 1`
	var (
		gen      Generation
		template string
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&gen.ID,
		&template,
		&gen.PDFKey,
		&gen.PDFSize,
		&gen.DocxKey,
		&gen.DocxSize,
		&gen.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Generation{}, ErrNotFound
		}
		return Generation{}, err
	}
	gen.Template = Template(template)
	return gen, nil
}

var _ Repo = (*PGRepo)(nil)
