package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
)

// StoreRepository is the Postgres obligation store and notification log.
type StoreRepository struct {
	db       *sqlx.DB
	strategy retry.Strategy
}

func NewStoreRepository(db *sqlx.DB, strategy retry.Strategy) *StoreRepository {
	return &StoreRepository{
		db:       db,
		strategy: strategy,
	}
}

// FetchActive loads every active obligation with its vehicle, owner and
// active device tokens in one pass.
func (r *StoreRepository) FetchActive(ctx context.Context) ([]*model.Obligation, error) {
	query := `
    SELECT v.id, v.tipo, v.fecha_vencimiento, v.activo, v.r30, v.r15, v.r7, v.r1, v.last_notified_at,
           veh.alias, veh.plate,
           o.id AS owner_id, o.username, o.email, o.plan, o.phone, o.whatsapp_enabled, o.notification_days,
           COALESCE(array_remove(array_agg(t.token), NULL), '{}') AS push_tokens
    FROM vigencias v
    JOIN vehicles veh ON veh.id = v.vehicle_id
    JOIN owners o ON o.id = veh.owner_id
    LEFT JOIN fcm_tokens t ON t.owner_id = o.id AND t.is_active = TRUE
    WHERE v.activo = TRUE
    GROUP BY v.id, veh.alias, veh.plate, o.id
    ORDER BY v.fecha_vencimiento
`
	var rows *sqlx.Rows
	err := retry.DoContext(ctx, r.strategy, func() error {
		var queryErr error
		rows, queryErr = r.db.QueryxContext(ctx, query)
		return queryErr
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching active obligations: %w", err)
	}
	defer rows.Close()

	result := []*model.Obligation{}

	for rows.Next() {
		var (
			id               int64
			tipo             string
			dueDate          time.Time
			active           bool
			r30, r15, r7, r1 bool
			lastNotifiedAt   *time.Time
			alias            string
			plate            string
			ownerID          int64
			username         string
			email            string
			plan             string
			phone            string
			whatsappEnabled  bool
			notificationDays pq.Int64Array
			pushTokens       pq.StringArray
		)

		if err := rows.Scan(
			&id,
			&tipo,
			&dueDate,
			&active,
			&r30,
			&r15,
			&r7,
			&r1,
			&lastNotifiedAt,
			&alias,
			&plate,
			&ownerID,
			&username,
			&email,
			&plan,
			&phone,
			&whatsappEnabled,
			&notificationDays,
			&pushTokens,
		); err != nil {
			return nil, fmt.Errorf("failed to scan obligation row: %w", err)
		}

		kindValid, err := internaltypes.DocumentKindFromString(tipo)
		if err != nil {
			zlog.Logger.Error().Err(err).Int64("id", id).Str("tipo", tipo).Msg("invalid document kind in postgres")
			continue
		}

		planValid, err := internaltypes.PlanTierFromString(plan)
		if err != nil {
			zlog.Logger.Error().Err(err).Int64("owner_id", ownerID).Str("plan", plan).Msg("invalid plan in postgres")
			continue
		}

		days := make([]int, len(notificationDays))
		for i, d := range notificationDays {
			days[i] = int(d)
		}

		result = append(result, &model.Obligation{
			ID:             id,
			Kind:           kindValid,
			DueDate:        dueDate,
			Active:         active,
			R30:            r30,
			R15:            r15,
			R7:             r7,
			R1:             r1,
			LastNotifiedAt: lastNotifiedAt,
			Vehicle: model.Vehicle{
				Alias: alias,
				Plate: plate,
			},
			Owner: model.Owner{
				ID:               ownerID,
				Username:         username,
				Email:            email,
				Plan:             planValid,
				Phone:            phone,
				WhatsAppEnabled:  whatsappEnabled,
				NotificationDays: days,
				PushTokens:       []string(pushTokens),
			},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning obligation rows: %w", err)
	}

	return result, nil
}

// Record appends one entry to the notification log. The log is append-only;
// nothing in the engine updates or deletes entries.
func (r *StoreRepository) Record(ctx context.Context, entry model.LogEntry) error {
	query := `INSERT INTO notification_log (vigencia_id, run_id, channel, status, message)
		VALUES ($1, $2, $3, $4, $5)`

	err := retry.DoContext(ctx, r.strategy, func() error {
		_, execErr := r.db.ExecContext(
			ctx,
			query,
			entry.ObligationID,
			entry.RunID,
			entry.Channel.String(),
			entry.Status.String(),
			entry.Message,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("error inserting notification log entry: %w", err)
	}

	return nil
}

// DeactivateToken marks a stale or malformed device token inactive so the
// push channel stops fanning out to it.
func (r *StoreRepository) DeactivateToken(ctx context.Context, token string) error {
	query := `UPDATE fcm_tokens SET is_active = FALSE WHERE token = $1`

	err := retry.DoContext(ctx, r.strategy, func() error {
		_, execErr := r.db.ExecContext(ctx, query, token)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("error deactivating token: %w", err)
	}

	return nil
}
