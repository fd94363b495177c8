package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"accreditations/internal/common"
	"accreditations/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// SQLStore keeps records in a single table reachable through database/sql.
// Queries use $n placeholders in ascending order, which both PostgreSQL
// (pgx stdlib) and SQLite bind positionally.
type SQLStore struct {
	db    *sql.DB
	table string
}

func NewSQLStore(db *sql.DB, table string) *SQLStore {
	if table == "" {
		table = "records"
	}
	return &SQLStore{db: db, table: table}
}

// columns lists every persisted attribute except id, in bind order.
var columns = []string{
	"given_names", "surnames", "nationality", "national_id", "phone", "city", "age",
	"accreditation_number", "accreditation_year", "gazette_number", "decision_number",
	"updated_id_copy", "mental_health_cert", "mental_health_cert_expiry",
	"credential", "work_proof", "resume",
	"active_at_defense_office", "defense_office_address",
	"inactive", "inactive_reason",
	"currently_employed", "employer",
	"renewal1_date", "renewal1_gazette_number", "renewal1_decision_number",
	"renewal2_date", "renewal2_gazette_number", "renewal2_decision_number",
	"renewal3_date", "renewal3_gazette_number", "renewal3_decision_number",
	"renewal4_date", "renewal4_gazette_number", "renewal4_decision_number",
}

var selectColumns = "id, " + strings.Join(columns, ", ")

func (s *SQLStore) Create(ctx context.Context, rec *models.Record) error {
	ph := make([]string, len(columns))
	for i := range columns {
		ph[i] = "$" + strconv.Itoa(i+1)
	}

	query := `INSERT INTO ` + s.table + ` (` + strings.Join(columns, ", ") + `)
		VALUES (` + strings.Join(ph, ", ") + `)
		RETURNING id`

	if err := s.db.QueryRowContext(ctx, query, recordArgs(rec)...).Scan(&rec.ID); err != nil {
		return translate(err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (*models.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM ` + s.table + ` WHERE id = $1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return rec, nil
}

func (s *SQLStore) Update(ctx context.Context, rec *models.Record) error {
	set := make([]string, len(columns))
	for i, c := range columns {
		set[i] = c + " = $" + strconv.Itoa(i+1)
	}

	query := `UPDATE ` + s.table + ` SET ` + strings.Join(set, ", ") +
		` WHERE id = $` + strconv.Itoa(len(columns)+1)

	args := append(recordArgs(rec), rec.ID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	return expectAffected(res)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	return expectAffected(res)
}

func (s *SQLStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindByNationalID(ctx context.Context, nationalID string) (*models.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM ` + s.table + `
		WHERE national_id = $1
		ORDER BY id
		LIMIT 1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, nationalID))
	if err != nil {
		return nil, translate(err)
	}
	return rec, nil
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&n)
	return n, err
}

func (s *SQLStore) CountByCity(ctx context.Context) ([]models.CityCount, error) {
	query := `
		SELECT COALESCE(city, ''), COUNT(id)
		FROM ` + s.table + `
		GROUP BY COALESCE(city, '')
		ORDER BY 1`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CityCount, 0)
	for rows.Next() {
		var c models.CityCount
		if err := rows.Scan(&c.City, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) Ages(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT age FROM `+s.table+` WHERE age IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int, 0)
	for rows.Next() {
		var age int
		if err := rows.Scan(&age); err != nil {
			return nil, err
		}
		out = append(out, age)
	}
	return out, rows.Err()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func recordArgs(r *models.Record) []any {
	args := []any{
		r.GivenNames, r.Surnames, r.Nationality, r.NationalID, r.Phone, nullIfEmpty(r.City), nullInt(r.Age),
		r.AccreditationNumber, r.AccreditationYear, r.GazetteNumber, r.DecisionNumber,
		r.UpdatedIDCopy, r.MentalHealthCert, nullDate(r.MentalHealthCertExpiry),
		r.Credential, r.WorkProof, r.Resume,
		r.ActiveAtDefenseOffice, r.DefenseOfficeAddress,
		r.Inactive, r.InactiveReason,
		r.CurrentlyEmployed, r.Employer,
	}
	for _, rn := range r.Renewals {
		args = append(args, nullDate(rn.Date), nullIfEmpty(rn.GazetteNumber), nullIfEmpty(rn.DecisionNumber))
	}
	return args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	var (
		r    models.Record
		text [24]sql.NullString
		age  sql.NullInt64
		exp  sql.NullTime
		ren  [models.RenewalCount]sql.NullTime
	)

	dest := []any{
		&r.ID,
		&text[0], &text[1], &text[2], &r.NationalID, &text[3], &text[4], &age,
		&text[5], &r.AccreditationYear, &text[6], &text[7],
		&text[8], &text[9], &exp,
		&text[10], &text[11], &text[12],
		&r.ActiveAtDefenseOffice, &text[13],
		&r.Inactive, &text[14],
		&r.CurrentlyEmployed, &text[15],
	}
	for i := range models.RenewalCount {
		dest = append(dest, &ren[i], &text[16+2*i], &text[17+2*i])
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	r.GivenNames, r.Surnames, r.Nationality = text[0].String, text[1].String, text[2].String
	r.Phone, r.City = text[3].String, text[4].String
	r.AccreditationNumber, r.GazetteNumber, r.DecisionNumber = text[5].String, text[6].String, text[7].String
	r.UpdatedIDCopy, r.MentalHealthCert = text[8].String, text[9].String
	r.Credential, r.WorkProof, r.Resume = text[10].String, text[11].String, text[12].String
	r.DefenseOfficeAddress, r.InactiveReason, r.Employer = text[13].String, text[14].String, text[15].String
	r.MentalHealthCertExpiry = datePtr(exp)
	if age.Valid {
		a := int(age.Int64)
		r.Age = &a
	}
	for i := range models.RenewalCount {
		r.Renewals[i] = models.Renewal{
			Date:           datePtr(ren[i]),
			GazetteNumber:  text[16+2*i].String,
			DecisionNumber: text[17+2*i].String,
		}
	}

	return &r, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the common sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", common.ErrDuplicateKey, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// nullDate binds a calendar date as UTC midnight.
func nullDate(p *time.Time) any {
	if p == nil {
		return nil
	}
	return time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, time.UTC)
}

func datePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	d := time.Date(t.Time.Year(), t.Time.Month(), t.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
