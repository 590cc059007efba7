package store

import (
	"context"
	"database/sql"
	"fmt"
)

// questionRepo implements QuestionRepo over the Questions and "Insert"
// tables.
type questionRepo struct {
	db *sql.DB
}

func (r *questionRepo) Questions(ctx context.Context) ([]Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.QID, q.IID, q.question, q.marks, q.answer, i.Text
		FROM Questions q
		LEFT JOIN "Insert" i ON q.IID = i.IID
		ORDER BY q.QID`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			q      Question
			iid    sql.NullInt64
			insert sql.NullString
		)
		if err := rows.Scan(&q.QID, &iid, &q.Text, &q.Marks, &q.MarkScheme, &insert); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if iid.Valid {
			v := int(iid.Int64)
			q.IID = &v
		}
		if insert.Valid {
			v := insert.String
			q.InsertText = &v
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return out, nil
}

func (r *questionRepo) Import(ctx context.Context, inserts []Insert, questions []Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, in := range inserts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO "Insert" (IID, Text) VALUES (?, ?)`,
			in.IID, in.Text,
		); err != nil {
			return fmt.Errorf("import insert %d: %w", in.IID, err)
		}
	}

	for _, q := range questions {
		var iid any
		if q.IID != nil {
			iid = *q.IID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO Questions (QID, IID, question, marks, answer) VALUES (?, ?, ?, ?, ?)`,
			q.QID, iid, q.Text, q.Marks, q.MarkScheme,
		); err != nil {
			return fmt.Errorf("import question %d: %w", q.QID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
