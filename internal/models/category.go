package models

// CategoryKind mirrors the kind column CHECK constraint.
type CategoryKind string

// Category represents a row of the categories table.
type Category struct {
	CategoryID string       `db:"category_id"`
	OwnerID    string       `db:"owner_id"`
	Name       string       `db:"name"`
	Kind       CategoryKind `db:"kind"`
	IconTag    string       `db:"icon_tag"`
	Timestamps
}
