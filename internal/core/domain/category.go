package domain

// CategoryKind restricts which event kinds may reference a category.
type CategoryKind string

const (
	IncomeCategory  CategoryKind = "INCOME"
	ExpenseCategory CategoryKind = "EXPENSE"
)

// IsValid reports whether k is a known category kind.
func (k CategoryKind) IsValid() bool {
	return k == IncomeCategory || k == ExpenseCategory
}

// Accepts reports whether an event of the given kind may be filed under this category.
func (k CategoryKind) Accepts(kind EventKind) bool {
	switch kind {
	case Income:
		return k == IncomeCategory
	case Expense:
		return k == ExpenseCategory
	default:
		return false
	}
}

// Category classifies income and expense events.
type Category struct {
	CategoryID string       `json:"categoryID"`
	OwnerID    string       `json:"ownerID"`
	Name       string       `json:"name"`
	Kind       CategoryKind `json:"kind"`
	IconTag    string       `json:"iconTag"`
	Timestamps
}
