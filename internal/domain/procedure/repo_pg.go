package procedure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavi/tavi/internal/platform/db"
)

type procedureRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &procedureRepoPG{pool: pool}
}

func (r *procedureRepoPG) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.pool)
}

const procCols = `id, created_at, updated_at, nome, cognome, data_nascita, altezza, peso,
	fe, vmax, gmax, gmed, ava, anulus_aortico,
	valvola_protesica, protesica_modello, protesica_dimensione,
	to_char(data_procedura, 'YYYY-MM-DD'), ora_inizio, ora_fine, tipo_valvola, modello_valvola,
	dimensione_valvola, pre_dilatazione, post_dilatazione`

var writeCols = []string{
	"nome", "cognome", "data_nascita", "altezza", "peso",
	"fe", "vmax", "gmax", "gmed", "ava", "anulus_aortico",
	"valvola_protesica", "protesica_modello", "protesica_dimensione",
	"data_procedura", "ora_inizio", "ora_fine", "tipo_valvola", "modello_valvola",
	"dimensione_valvola", "pre_dilatazione", "post_dilatazione",
}

// writeArgs follows writeCols.
func writeArgs(p *Procedure) []interface{} {
	return []interface{}{
		p.FirstName, p.LastName, p.BirthDate, p.Height, p.Weight,
		p.EF, p.Vmax, p.Gmax, p.Gmed, p.AVA, p.Annulus,
		p.PriorValve, p.PriorValveModel, p.PriorValveSize,
		p.Date, p.StartTime, p.EndTime, string(p.ValveType), p.ValveModel,
		p.ValveSize, p.PreDilatation, p.PostDilatation,
	}
}

// placeholder renders $n, casting the procedure date column.
func placeholder(col string, n int) string {
	if col == "data_procedura" {
		return fmt.Sprintf("$%d::date", n)
	}
	return fmt.Sprintf("$%d", n)
}

func (r *procedureRepoPG) Create(ctx context.Context, p *Procedure) error {
	p.ID = uuid.New()
	ph := make([]string, len(writeCols))
	for i, c := range writeCols {
		ph[i] = placeholder(c, i+2)
	}
	args := append([]interface{}{p.ID}, writeArgs(p)...)

	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO tavi_procedure (id, `+strings.Join(writeCols, ", ")+`)
		VALUES ($1, `+strings.Join(ph, ", ")+`)
		RETURNING created_at, updated_at`, args...,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert procedure: %w", err)
	}
	return nil
}

func (r *procedureRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	p, err := scanProcedure(r.conn(ctx).QueryRow(ctx,
		`SELECT `+procCols+` FROM tavi_procedure WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

func (r *procedureRepoPG) Update(ctx context.Context, p *Procedure) error {
	sets := make([]string, len(writeCols))
	for i, c := range writeCols {
		sets[i] = c + "=" + placeholder(c, i+2)
	}
	args := append([]interface{}{p.ID}, writeArgs(p)...)

	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE tavi_procedure SET `+strings.Join(sets, ", ")+`, updated_at=NOW()
		WHERE id = $1 RETURNING created_at, updated_at`, args...,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return err
}

func (r *procedureRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM tavi_procedure WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// where builds the filter clause. The period is counted back from the
// database's current date.
func where(f Filters) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(nome ILIKE $%d OR cognome ILIKE $%d OR modello_valvola ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	if f.ValveType != "" && f.ValveType != "all" {
		args = append(args, f.ValveType)
		conds = append(conds, fmt.Sprintf("tipo_valvola = $%d", len(args)))
	}
	if days := f.PeriodDays(); days > 0 {
		args = append(args, days)
		conds = append(conds, fmt.Sprintf("data_procedura >= CURRENT_DATE - $%d::int", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const newestFirst = ` ORDER BY data_procedura DESC, ora_inizio DESC`

func (r *procedureRepoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*Procedure, int, error) {
	cond, args := where(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM tavi_procedure`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	items, err := r.query(ctx,
		`SELECT `+procCols+` FROM tavi_procedure`+cond+newestFirst+
			fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *procedureRepoPG) All(ctx context.Context, f Filters) ([]*Procedure, error) {
	cond, args := where(f)
	return r.query(ctx, `SELECT `+procCols+` FROM tavi_procedure`+cond+newestFirst, args...)
}

func (r *procedureRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM tavi_procedure`).Scan(&n)
	return n, err
}

func (r *procedureRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Procedure, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Procedure
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	var valveType string
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.FirstName, &p.LastName, &p.BirthDate, &p.Height, &p.Weight,
		&p.EF, &p.Vmax, &p.Gmax, &p.Gmed, &p.AVA, &p.Annulus,
		&p.PriorValve, &p.PriorValveModel, &p.PriorValveSize,
		&p.Date, &p.StartTime, &p.EndTime, &valveType, &p.ValveModel,
		&p.ValveSize, &p.PreDilatation, &p.PostDilatation,
	)
	if err != nil {
		return nil, err
	}
	p.ValveType = ValveType(valveType)
	return &p, nil
}
