package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nikolayk812/effective-orders/internal/domain"
)

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func pgState(s domain.PurchaseState) pgtype.Text {
	value, ok := s.Column()
	return pgtype.Text{String: value, Valid: ok}
}

func pgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func timeValue(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func pgInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func int8Value(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func marshalPayment(payment map[string]string) ([]byte, error) {
	if len(payment) == 0 {
		return []byte("{}"), nil
	}

	b, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return b, nil
}

func unmarshalPayment(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var payment map[string]string
	if err := json.Unmarshal(b, &payment); err != nil {
		return nil, fmt.Errorf("payment[%s] is not valid: %w", b, err)
	}
	if len(payment) == 0 {
		return nil, nil
	}
	return payment, nil
}

func marshalAddress(a *domain.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}

	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return b, nil
}

func unmarshalAddress(b []byte) (*domain.Address, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var a domain.Address
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("address[%s] is not valid: %w", b, err)
	}
	return &a, nil
}
