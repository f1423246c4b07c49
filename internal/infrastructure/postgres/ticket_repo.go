package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ticketsim/internal/domain/ticket"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ticketColumns = []string{
	"unique_id",
	"transaction_id",
	"seat_number",
	"passport_number",
	"check_in_type",
	"checkin_time",
	"passed_security_time",
}

// maxTicketsPerStatement keeps a single upsert under the protocol limit of
// 65535 bind parameters.
var maxTicketsPerStatement = 65535 / len(ticketColumns)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

// Upsert writes tickets in chunks keyed by unique_id. On conflict every other
// column is overwritten. It returns the number of rows sent.
func (r *TicketRepository) Upsert(ctx context.Context, tickets []ticket.Ticket, chunkSize int) (int, error) {
	if chunkSize <= 0 || chunkSize > maxTicketsPerStatement {
		chunkSize = maxTicketsPerStatement
	}

	db := conn(ctx, r.pool)
	written := 0
	for start := 0; start < len(tickets); start += chunkSize {
		end := min(start+chunkSize, len(tickets))
		batch := tickets[start:end]

		if _, err := db.Exec(ctx, upsertTicketsSQL(len(batch)), ticketArgs(batch)...); err != nil {
			return written, fmt.Errorf("upsert tickets [%d:%d]: %w", start, end, err)
		}
		written += len(batch)
	}

	return written, nil
}

func (r *TicketRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]ticket.Ticket, error) {
	const sql = `
		SELECT unique_id, transaction_id, seat_number, passport_number,
		       check_in_type, checkin_time, passed_security_time
		FROM tickets
		WHERE transaction_id = $1
		ORDER BY seat_number ASC
	`

	rows, err := conn(ctx, r.pool).Query(ctx, sql, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []ticket.Ticket
	for rows.Next() {
		var (
			t    ticket.Ticket
			seat int64
			kind string
		)
		if err := rows.Scan(&t.UniqueID, &t.TransactionID, &seat, &t.PassportNumber, &kind, &t.CheckinTime, &t.PassedSecurityTime); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.SeatNumber = int(seat)
		t.CheckInType = ticket.CheckInType(kind)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}

	return tickets, nil
}

func upsertTicketsSQL(rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO tickets (")
	b.WriteString(strings.Join(ticketColumns, ", "))
	b.WriteString(") VALUES ")

	n := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range ticketColumns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}

	b.WriteString(" ON CONFLICT (unique_id) DO UPDATE SET ")
	for i, col := range ticketColumns[1:] {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(col)
	}
	return b.String()
}

func ticketArgs(tickets []ticket.Ticket) []any {
	args := make([]any, 0, len(tickets)*len(ticketColumns))
	for _, t := range tickets {
		var security *time.Time
		if t.PassedSecurityTime != nil {
			s := *t.PassedSecurityTime
			security = &s
		}
		args = append(args,
			t.UniqueID,
			t.TransactionID,
			int64(t.SeatNumber),
			t.PassportNumber,
			string(t.CheckInType),
			t.CheckinTime,
			security,
		)
	}
	return args
}
