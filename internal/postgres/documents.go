package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Document struct {
	ID   string
	Body json.RawMessage
}

// Documents stores schemaless JSON bodies grouped by collection name.
type Documents struct{ DB *pgxpool.Pool }

// List returns the collection in insertion order.
func (d *Documents) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := d.DB.Query(ctx, `SELECT id, body FROM documents WHERE collection=$1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", collection)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var body []byte
		if err := rows.Scan(&doc.ID, &body); err != nil {
			return nil, errors.Wrapf(err, "scan %s", collection)
		}
		doc.Body = body
		out = append(out, doc)
	}
	return out, errors.Wrapf(rows.Err(), "list %s", collection)
}

func (d *Documents) Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	var body []byte
	err := d.DB.QueryRow(ctx, `SELECT body FROM documents WHERE collection=$1 AND id=$2`, collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	return body, true, nil
}

func (d *Documents) Insert(ctx context.Context, collection, id string, body json.RawMessage) error {
	_, err := d.DB.Exec(ctx, `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`, collection, id, string(body))
	return errors.Wrapf(err, "insert %s/%s", collection, id)
}

// Update reports false when no document has that id.
func (d *Documents) Update(ctx context.Context, collection, id string, body json.RawMessage) (bool, error) {
	tag, err := d.DB.Exec(ctx, `UPDATE documents SET body=$3::jsonb, updated_at=now() WHERE collection=$1 AND id=$2`, collection, id, string(body))
	if err != nil {
		return false, errors.Wrapf(err, "update %s/%s", collection, id)
	}
	return tag.RowsAffected() > 0, nil
}

func (d *Documents) Delete(ctx context.Context, collection, id string) (bool, error) {
	tag, err := d.DB.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	if err != nil {
		return false, errors.Wrapf(err, "delete %s/%s", collection, id)
	}
	return tag.RowsAffected() > 0, nil
}
