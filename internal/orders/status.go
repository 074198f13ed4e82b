package orders

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var allStatuses = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func (s Status) Valid() bool { return allStatuses[s] }

// Terminal: tidak ada transisi keluar lagi.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CheckTransition memvalidasi transisi status order.
// DELIVERED -> DELIVERED dibiarkan sebagai no-op idempotent.
func CheckTransition(from, to Status) error {
	switch {
	case from == StatusCancelled:
		return InvalidStatef("cannot update status of cancelled order")
	case from == StatusDelivered && to != StatusDelivered:
		return InvalidStatef("cannot change status of delivered order")
	}
	return nil
}

func CanTransition(from, to Status) bool {
	return CheckTransition(from, to) == nil
}
