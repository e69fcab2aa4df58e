package shortener

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Link is one short code pointing at a target URL.
// ID is a surrogate key: codes repeat across deleted rows.
type Link struct {
	ID          uuid.UUID
	Code        string
	Target      string
	Clicks      int64
	LastClicked *time.Time
	CreatedAt   time.Time
	Deleted     bool
}

// ListOrder selects how active links are sorted.
type ListOrder uint8

const (
	// OrderCreated lists newest links first.
	OrderCreated ListOrder = iota
	// OrderClicks lists the most clicked links first.
	OrderClicks
)

func (o ListOrder) String() string {
	switch o {
	case OrderCreated:
		return "created"
	case OrderClicks:
		return "clicks"
	default:
		return fmt.Sprintf("ListOrder(%d)", o)
	}
}

// ParseListOrder maps the sort query value to a ListOrder.
// An empty value selects OrderCreated.
func ParseListOrder(s string) (ListOrder, error) {
	switch s {
	case "", "created":
		return OrderCreated, nil
	case "clicks":
		return OrderClicks, nil
	default:
		return 0, fmt.Errorf("unknown sort %q (must be one of: created, clicks)", s)
	}
}
