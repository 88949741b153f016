// Package storage persists the FinanceState aggregate in SQLite. Every
// mutation bumps a single state version so projections can be memoized and
// change events carry a monotonic ordinal. Reads always materialize a
// complete snapshot; the projection engine never sees a half-written state.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

const dateLayout = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Version returns the current state version.
func (r *Repository) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, `SELECT version FROM state_meta WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read state version: %w", err)
	}
	return v, nil
}

func bumpVersion(ctx context.Context, tx *sql.Tx) (int64, error) {
	var v int64
	err := tx.QueryRowContext(ctx,
		`UPDATE state_meta SET version = version + 1 WHERE id = 1 RETURNING version`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("bump state version: %w", err)
	}
	return v, nil
}

// mutate runs fn inside a transaction and bumps the state version when it
// succeeds, returning the new version.
func (r *Repository) mutate(ctx context.Context, fn func(*sql.Tx) error) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return 0, err
	}
	version, err := bumpVersion(ctx, tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return version, nil
}

// --- scan helpers -----------------------------------------------------

// parseStoredAmount coerces a stored amount to a decimal, logging and
// zeroing anything unparsable so one bad row never poisons a snapshot.
func parseStoredAmount(table, id, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		slog.Warn("Unparsable stored amount, treating as zero", "table", table, "id", id, "value", s)
		return decimal.Zero
	}
	return d
}

func parseStoredDate(table, id, s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		slog.Warn("Unparsable stored date", "table", table, "id", id, "value", s)
		return time.Time{}
	}
	return t
}

func parseStoredDatePtr(table, id string, s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseStoredDate(table, id, s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func fmtDate(t time.Time) string { return t.UTC().Format(dateLayout) }

func fmtDatePtr(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return fmtDate(*t)
}

// --- snapshot ---------------------------------------------------------

// LoadState reads the entire aggregate, legacy debts included, as one
// immutable snapshot value.
func (r *Repository) LoadState(ctx context.Context) (core.FinanceState, error) {
	state := core.FinanceState{}

	version, err := r.Version(ctx)
	if err != nil {
		return state, err
	}
	state.Version = version

	if state.Incomes, err = r.listIncomes(ctx); err != nil {
		return state, err
	}
	if state.Expenses, err = r.listExpenses(ctx); err != nil {
		return state, err
	}
	if state.Loans, state.Debts, err = r.listLoans(ctx); err != nil {
		return state, err
	}
	if state.CreditCards, err = r.listCreditCards(ctx); err != nil {
		return state, err
	}
	if state.Goals, err = r.listGoals(ctx); err != nil {
		return state, err
	}
	return state, nil
}

func (r *Repository) listIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, date, frequency, end_date, source, company FROM incomes ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in              core.Income
			amount, date    string
			endDate         sql.NullString
		)
		if err := rows.Scan(&in.ID, &amount, &date, &in.Frequency, &endDate, &in.Source, &in.Company); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Kind = core.KindIncome
		in.Amount = parseStoredAmount("incomes", in.ID, amount)
		in.Date = parseStoredDate("incomes", in.ID, date)
		in.EndDate = parseStoredDatePtr("incomes", in.ID, endDate)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *Repository) listExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, category, description, date, frequency, end_date, next_payment_date
		 FROM expenses ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e                core.Expense
			amount, date     string
			endDate, nextPay sql.NullString
		)
		if err := rows.Scan(&e.ID, &amount, &e.Category, &e.Description, &date, &e.Frequency, &endDate, &nextPay); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Kind = core.KindExpense
		e.Amount = parseStoredAmount("expenses", e.ID, amount)
		e.Date = parseStoredDate("expenses", e.ID, date)
		e.EndDate = parseStoredDatePtr("expenses", e.ID, endDate)
		e.NextPaymentDate = parseStoredDatePtr("expenses", e.ID, nextPay)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) listLoans(ctx context.Context) (loans, debts []core.Loan, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total, paid, duration, frequency, start_date, last_payment_date, category, legacy
		 FROM loans ORDER BY start_date, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l                 core.Loan
			total, paid, date string
			lastPay           sql.NullString
			legacy            int
		)
		if err := rows.Scan(&l.ID, &l.Name, &total, &paid, &l.Duration, &l.Frequency, &date, &lastPay, &l.Category, &legacy); err != nil {
			return nil, nil, fmt.Errorf("scan loan: %w", err)
		}
		l.Kind = core.KindLoan
		l.Total = parseStoredAmount("loans", l.ID, total)
		l.Paid = parseStoredAmount("loans", l.ID, paid)
		l.StartDate = parseStoredDate("loans", l.ID, date)
		l.LastPaymentDate = parseStoredDatePtr("loans", l.ID, lastPay)
		if legacy != 0 {
			debts = append(debts, l)
		} else {
			loans = append(loans, l)
		}
	}
	return loans, debts, rows.Err()
}

func (r *Repository) listCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bank, card_name, last4_digits, credit_limit, current_debt, min_payment,
		        cut_date, payment_date, interest_rate, frequency, status
		 FROM credit_cards ORDER BY bank, id`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		var (
			c                                       core.CreditCard
			limit, debt, minPay, payDate, interest  string
			cutDate                                 sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Bank, &c.CardName, &c.Last4Digits, &limit, &debt, &minPay,
			&cutDate, &payDate, &interest, &c.Frequency, &c.Status); err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		c.Kind = core.KindCreditCard
		c.CreditLimit = parseStoredAmount("credit_cards", c.ID, limit)
		c.CurrentDebt = parseStoredAmount("credit_cards", c.ID, debt)
		c.MinPayment = parseStoredAmount("credit_cards", c.ID, minPay)
		c.InterestRate = parseStoredAmount("credit_cards", c.ID, interest)
		c.CutDate = parseStoredDatePtr("credit_cards", c.ID, cutDate)
		c.PaymentDate = parseStoredDate("credit_cards", c.ID, payDate)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) listGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount, deadline FROM goals ORDER BY deadline, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g               core.Goal
			target, current string
			deadline        sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Kind = core.KindGoal
		g.TargetAmount = parseStoredAmount("goals", g.ID, target)
		g.CurrentAmount = parseStoredAmount("goals", g.ID, current)
		if d := parseStoredDatePtr("goals", g.ID, deadline); d != nil {
			g.Deadline = *d
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// --- mutations --------------------------------------------------------

func (r *Repository) CreateIncome(ctx context.Context, in core.Income) (core.Income, int64, error) {
	if in.ID == "" {
		in.ID = core.NewID()
	}
	in.Kind = core.KindIncome
	version, err := r.mutate(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO incomes (id, amount, date, frequency, end_date, source, company)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.ID, in.Amount.String(), fmtDate(in.Date), in.Frequency, fmtDatePtr(in.EndDate), in.Source, in.Company)
		if err != nil {
			return fmt.Errorf("insert income: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Income{}, 0, err
	}
	slog.InfoContext(ctx, "Income saved", "id", in.ID, "amount", in.Amount.String(), "frequency", in.Frequency)
	return in, version, nil
}

func (r *Repository) UpdateIncome(ctx context.Context, in core.Income) (int64, error) {
	return r.mutate(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE incomes SET amount = ?, date = ?, frequency = ?, end_date = ?, source = ?, company = ?
			 WHERE id = ?`,
			in.Amount.String(), fmtDate(in.Date), in.Frequency, fmtDatePtr(in.EndDate), in.Source, in.Company, in.ID)
		if err != nil {
			return fmt.Errorf("update income: %w", err)
		}
		return requireRow(res, "income", in.ID)
	})
}

func (r *Repository) DeleteIncome(ctx context.Context, id string) (int64, error) {
	return r.deleteByID(ctx, "incomes", "income", id)
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, int64, error) {
	if e.ID == "" {
		e.ID = core.NewID()
	}
	e.Kind = core.KindExpense
	e.Category = core.NormalizeCategory(e.Category)
	version, err := r.mutate(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, amount, category, description, date, frequency, end_date, next_payment_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Amount.String(), e.Category, e.Description, fmtDate(e.Date), e.Frequency,
			fmtDatePtr(e.EndDate), fmtDatePtr(e.NextPaymentDate))
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, 0, err
	}
	slog.InfoContext(ctx, "Expense saved", "id", e.ID, "description", e.Description, "amount", e.Amount.String())
	return e, version, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) (int64, error) {
	e.Category = core.NormalizeCategory(e.Category)
	return r.mutate(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET amount = ?, category = ?, description = ?, date = ?, frequency = ?,
			        end_date = ?, next_payment_date = ?
			 WHERE id = ?`,
			e.Amount.String(), e.Category, e.Description, fmtDate(e.Date), e.Frequency,
			fmtDatePtr(e.EndDate), fmtDatePtr(e.NextPaymentDate), e.ID)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		return requireRow(res, "expense", e.ID)
	})
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) (int64, error) {
	return r.deleteByID(ctx, "expenses", "expense", id)
}

func (r *Repository) CreateLoan(ctx context.Context, l core.Loan) (core.Loan, int64, error) {
	if l.ID == "" {
		l.ID = core.NewID()
	}
	l.Kind = core.KindLoan
	version, err := r.mutate(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO loans (id, name, total, paid, duration, frequency, start_date, last_payment_date, category, legacy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
			l.ID, l.Name, l.Total.String(), l.Paid.String(), l.Duration, l.Frequency,
			fmtDate(l.StartDate), fmtDatePtr(l.LastPaymentDate), l.Category)
		if err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Loan{}, 0, err
	}
	slog.InfoContext(ctx, "Loan saved", "id", l.ID, "name", l.Name, "total", l.Total.String())
	return l, version, nil
}

func (r *Repository) UpdateLoan(ctx context.Context, l core.Loan) (int64, error) {
	return r.mutate(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE loans SET name = ?, total = ?, paid = ?, duration = ?, frequency = ?,
			        start_date = ?, last_payment_date = ?, category = ?
			 WHERE id = ?`,
			l.Name, l.Total.String(), l.Paid.String(), l.Duration, l.Frequency,
			fmtDate(l.StartDate), fmtDatePtr(l.LastPaymentDate), l.Category, l.ID)
		if err != nil {
			return fmt.Errorf("update loan: %w", err)
		}
		return requireRow(res, "loan", l.ID)
	})
}

func (r *Repository) DeleteLoan(ctx context.Context, id string) (int64, error) {
	return r.deleteByID(ctx, "loans", "loan", id)
}

func (r *Repository) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, int64, error) {
	if c.ID == "" {
		c.ID = core.NewID()
	}
	c.Kind = core.KindCreditCard
	version, err := r.mutate(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credit_cards (id, bank, card_name, last4_digits, credit_limit, current_debt,
			        min_payment, cut_date, payment_date, interest_rate, frequency, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Bank, c.CardName, c.Last4Digits, c.CreditLimit.String(), c.CurrentDebt.String(),
			c.MinPayment.String(), fmtDatePtr(c.CutDate), fmtDate(c.PaymentDate),
			c.InterestRate.String(), c.Frequency, c.Status)
		if err != nil {
			return fmt.Errorf("insert credit card: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.CreditCard{}, 0, err
	}
	slog.InfoContext(ctx, "Credit card saved", "id", c.ID, "bank", c.Bank, "card", c.CardName)
	return c, version, nil
}

func (r *Repository) UpdateCreditCard(ctx context.Context, c core.CreditCard) (int64, error) {
	return r.mutate(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE credit_cards SET bank = ?, card_name = ?, last4_digits = ?, credit_limit = ?,
			        current_debt = ?, min_payment = ?, cut_date = ?, payment_date = ?,
			        interest_rate = ?, frequency = ?, status = ?
			 WHERE id = ?`,
			c.Bank, c.CardName, c.Last4Digits, c.CreditLimit.String(), c.CurrentDebt.String(),
			c.MinPayment.String(), fmtDatePtr(c.CutDate), fmtDate(c.PaymentDate),
			c.InterestRate.String(), c.Frequency, c.Status, c.ID)
		if err != nil {
			return fmt.Errorf("update credit card: %w", err)
		}
		return requireRow(res, "credit card", c.ID)
	})
}

func (r *Repository) DeleteCreditCard(ctx context.Context, id string) (int64, error) {
	return r.deleteByID(ctx, "credit_cards", "credit card", id)
}

func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, int64, error) {
	if g.ID == "" {
		g.ID = core.NewID()
	}
	g.Kind = core.KindGoal
	version, err := r.mutate(ctx, func(tx *sql.Tx) error {
		var deadline any
		if !g.Deadline.IsZero() {
			deadline = fmtDate(g.Deadline)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, name, target_amount, current_amount, deadline)
			 VALUES (?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), deadline)
		if err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Goal{}, 0, err
	}
	slog.InfoContext(ctx, "Goal saved", "id", g.ID, "name", g.Name)
	return g, version, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) (int64, error) {
	return r.mutate(ctx, func(tx *sql.Tx) error {
		var deadline any
		if !g.Deadline.IsZero() {
			deadline = fmtDate(g.Deadline)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, deadline = ? WHERE id = ?`,
			g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), deadline, g.ID)
		if err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		return requireRow(res, "goal", g.ID)
	})
}

func (r *Repository) DeleteGoal(ctx context.Context, id string) (int64, error) {
	return r.deleteByID(ctx, "goals", "goal", id)
}

func (r *Repository) deleteByID(ctx context.Context, table, label, id string) (int64, error) {
	return r.mutate(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", label, err)
		}
		return requireRow(res, label, id)
	})
}

// ErrNotFound is returned when a mutation targets a missing record.
var ErrNotFound = core.ErrNotFound

func requireRow(res sql.Result, label, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s %s: %w", label, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", label, id, ErrNotFound)
	}
	return nil
}
