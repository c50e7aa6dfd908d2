package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/domain/auth"
	"nomina/internal/domain/employee"
	"nomina/internal/domain/vacation"
	"nomina/internal/platform/config"
)

// Seed provisions the initial admin account and a default salary level
// table for the current year. It is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(1) FROM employees WHERE email = $1`, cfg.SeedAdminEmail).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			hash, err := auth.HashPassword(cfg.SeedAdminPassword)
			if err != nil {
				return err
			}
			if _, err := pool.Exec(ctx, `
        INSERT INTO employees (email, name, role, allowance_hours, active, password_hash)
        VALUES ($1, 'Administrator', 'admin', 0, true, $2)
      `, cfg.SeedAdminEmail, hash); err != nil {
				return err
			}
			slog.Info("seeded admin account", "email", cfg.SeedAdminEmail)
		}
	}

	year := time.Now().Year()
	var levels int
	if err := pool.QueryRow(ctx, `SELECT COUNT(1) FROM salary_levels WHERE year = $1`, year).Scan(&levels); err != nil {
		return err
	}
	if levels == 0 {
		for level := 1; level <= 21; level++ {
			base := 1100.0 + float64(level-1)*85
			trienio := 20.0 + float64(level-1)*1.5
			if _, err := pool.Exec(ctx, `
        INSERT INTO salary_levels (year, level, base_salary, trienio_value)
        VALUES ($1,$2,$3,$4)
      `, year, level, base, trienio); err != nil {
				return err
			}
		}
		slog.Info("seeded salary level table", "year", year)
	}

	return nil
}

// ReconcileBalances replays every employee's vacation history and
// force-writes the stored balance fields. This is the import/repair step:
// steady-state flows derive balances by replay and never read the stored
// counters.
func ReconcileBalances(ctx context.Context, pool *pgxpool.Pool, opts vacation.ReplayOptions) (int, error) {
	employees := employee.NewStore(pool)
	vacations := vacation.NewService(vacation.NewStore(pool), employees, opts)

	all, err := employees.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, e := range all {
		balance, err := vacations.BalanceFor(ctx, e.Email)
		if err != nil {
			slog.Warn("balance replay failed", "email", e.Email, "err", err)
			continue
		}
		if err := employees.OverwriteStoredBalance(ctx, e.Email, balance.Available, balance.Pending); err != nil {
			slog.Warn("balance overwrite failed", "email", e.Email, "err", err)
			continue
		}
		updated++
	}
	return updated, nil
}
