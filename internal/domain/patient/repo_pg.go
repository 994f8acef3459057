package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavi/tavi/internal/platform/db"
)

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.pool)
}

const patientCols = `p.id, p.created_at, p.updated_at,
	p.nome, p.cognome, p.data_nascita, p.luogo_nascita, p.codice_fiscale, p.telefono, p.email,
	p.provenienza, p.sesso, p.priority, p.altezza, p.peso, p.note,
	p.ambulatorio_fattori, p.anamnesi_cardiologica, p.apr, p.visita_odierna, p.conclusioni,
	p.medico_titolo, p.medico_nome, p.medico_specializzando_titolo, p.medico_specializzando_nome,
	p.procedurale_allergia_mdc, p.procedurale_preparazione_mdc, p.procedurale_creatinina,
	p.procedurale_egfr, p.procedurale_hb, p.procedurale_altro, p.data_tavi,
	p.procedurale_ecg_ritmo_sinusale, p.procedurale_ecg_fa, p.procedurale_ecg_bbs, p.procedurale_ecg_bbd,
	p.procedurale_ecg_eas, p.procedurale_ecg_bav_primo, p.procedurale_ecg_ritmo_stimolato,
	p.procedurale_anestesia, p.procedurale_coronarografia, p.procedurale_coronarografia_note,
	p.procedurale_pacemaker, p.procedurale_pacemaker_note,
	p.procedurale_accesso_principale_fem, p.procedurale_accesso_principale_altro,
	p.procedurale_accesso_protezione, p.procedurale_accesso_protezione_note, p.procedurale_altri_accessi,
	p.procedurale_diametro_pallone_femorale, p.procedurale_guida_safari, p.procedurale_protezione_osti,
	p.procedurale_valvuloplastica, p.procedurale_valvuloplastica_note,
	p.procedurale_bioprotesi_modello, p.procedurale_bioprotesi_dimensione`

const withStatusFrom = ` FROM patient p JOIN patient_status s ON s.patient_id = p.id`

// fieldArgs returns the writable columns in insert order, starting at nome.
func fieldArgs(p *Patient) []interface{} {
	factors := p.RiskFactors
	if factors == nil {
		factors = []string{}
	}
	return []interface{}{
		p.FirstName, p.LastName, p.BirthDate, p.BirthPlace, p.TaxCode, p.Phone, p.Email,
		p.Referral, p.Sex, p.Priority, p.Height, p.Weight, p.Note,
		factors, p.CardioHistory, p.HomeTherapy, p.TodayVisit, p.Conclusions,
		p.PhysicianTitle, p.PhysicianName, p.ResidentTitle, p.ResidentName,
		string(p.ContrastAllergy), p.ContrastPreparation, p.Creatinine,
		p.EGFR, p.Hb, p.Other, p.TAVIDate,
		p.ECGSinusRhythm, p.ECGAtrialFib, p.ECGLBBB, p.ECGRBBB,
		p.ECGLAFB, p.ECGFirstAVB, p.ECGPaced,
		string(p.Anesthesia), string(p.Coronarography), p.CoronarographyNote,
		string(p.Pacemaker), p.PacemakerNote,
		string(p.MainAccess), p.MainAccessOther,
		string(p.ProtectionAccess), p.ProtectionNote, p.OtherAccesses,
		p.FemoralBalloon, p.SafariGuide, string(p.OstiaProtection),
		string(p.Valvuloplasty), p.ValvuloplastyNote,
		p.BioprosthesisModel, p.BioprosthesisSize,
	}
}

var fieldCols = strings.Fields(strings.NewReplacer("p.", "", ",", " ").Replace(
	patientCols[strings.Index(patientCols, "p.nome"):]))

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ",")
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	args := append([]interface{}{p.ID}, fieldArgs(p)...)

	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx,
			`INSERT INTO patient (id, `+strings.Join(fieldCols, ", ")+`)
			VALUES (`+placeholders(1, len(args))+`)
			RETURNING created_at, updated_at`, args...,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert patient: %w", err)
		}
		_, err = r.conn(ctx).Exec(ctx,
			`INSERT INTO patient_status (patient_id, status) VALUES ($1, $2)`, p.ID, string(StatusToEvaluate))
		if err != nil {
			return fmt.Errorf("insert patient status: %w", err)
		}
		return nil
	})
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*WithStatus, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+`, s.status, s.created_at`+withStatusFrom+` WHERE p.id = $1`, id)
	ws, err := scanWithStatus(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ws, err
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	sets := make([]string, len(fieldCols))
	for i, c := range fieldCols {
		sets[i] = fmt.Sprintf("%s=$%d", c, i+2)
	}
	args := append([]interface{}{p.ID}, fieldArgs(p)...)

	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE patient SET `+strings.Join(sets, ", ")+`, updated_at=NOW()
		WHERE id = $1 RETURNING created_at, updated_at`, args...,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithStatus, int, error) {
	var where []string
	var args []interface{}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(p.nome ILIKE $%d OR p.cognome ILIKE $%d OR p.codice_fiscale ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	if f.Status != "" {
		s, err := ParseStatus(f.Status)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, string(s))
		where = append(where, fmt.Sprintf("s.status = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+withStatusFrom+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+`, s.status, s.created_at`+withStatusFrom+cond+
			fmt.Sprintf(` ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*WithStatus
	for rows.Next() {
		ws, err := scanWithStatus(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ws)
	}
	return items, total, rows.Err()
}

// SetStatus moves the patient to s; the status timestamp restarts.
func (r *patientRepoPG) SetStatus(ctx context.Context, id uuid.UUID, s Status) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		var exists bool
		if err := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_status WHERE patient_id = $1`, id); err != nil {
			return fmt.Errorf("clear patient status: %w", err)
		}
		if _, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO patient_status (patient_id, status) VALUES ($1, $2)`, id, string(s)); err != nil {
			return fmt.Errorf("insert patient status: %w", err)
		}
		return nil
	})
}

func (r *patientRepoPG) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT status, COUNT(*) FROM patient_status GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int, len(Statuses))
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[Status(s)] = n
	}
	return counts, rows.Err()
}

func scanWithStatus(row pgx.Row) (*WithStatus, error) {
	var p Patient
	var status string
	var statusAt time.Time
	var allergy, anesthesia, coro, pacemaker, access, protection, ostia, valvulo string

	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt,
		&p.FirstName, &p.LastName, &p.BirthDate, &p.BirthPlace, &p.TaxCode, &p.Phone, &p.Email,
		&p.Referral, &p.Sex, &p.Priority, &p.Height, &p.Weight, &p.Note,
		&p.RiskFactors, &p.CardioHistory, &p.HomeTherapy, &p.TodayVisit, &p.Conclusions,
		&p.PhysicianTitle, &p.PhysicianName, &p.ResidentTitle, &p.ResidentName,
		&allergy, &p.ContrastPreparation, &p.Creatinine,
		&p.EGFR, &p.Hb, &p.Other, &p.TAVIDate,
		&p.ECGSinusRhythm, &p.ECGAtrialFib, &p.ECGLBBB, &p.ECGRBBB,
		&p.ECGLAFB, &p.ECGFirstAVB, &p.ECGPaced,
		&anesthesia, &coro, &p.CoronarographyNote,
		&pacemaker, &p.PacemakerNote,
		&access, &p.MainAccessOther,
		&protection, &p.ProtectionNote, &p.OtherAccesses,
		&p.FemoralBalloon, &p.SafariGuide, &ostia,
		&valvulo, &p.ValvuloplastyNote,
		&p.BioprosthesisModel, &p.BioprosthesisSize,
		&status, &statusAt,
	)
	if err != nil {
		return nil, err
	}

	p.ContrastAllergy = YesNo(allergy)
	p.Anesthesia = Anesthesia(anesthesia)
	p.Coronarography = Coronarography(coro)
	p.Pacemaker = YesNo(pacemaker)
	p.MainAccess = AccessSite(access)
	p.ProtectionAccess = YesNo(protection)
	p.OstiaProtection = YesNo(ostia)
	p.Valvuloplasty = YesNo(valvulo)

	return &WithStatus{Patient: &p, Status: Status(status).Label(), StatusCreatedAt: statusAt}, nil
}
