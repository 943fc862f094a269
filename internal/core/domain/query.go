package domain

import "time"

// EventView is an event joined with the display data of what it references.
type EventView struct {
	Event
	SourceAccountName      string `json:"sourceAccountName"`
	SourceAccountIcon      string `json:"sourceAccountIcon"`
	DestinationAccountName string `json:"destinationAccountName,omitempty"`
	DestinationAccountIcon string `json:"destinationAccountIcon,omitempty"`
	CategoryName           string `json:"categoryName,omitempty"`
	CategoryIcon           string `json:"categoryIcon,omitempty"`
}

// EventFilter narrows an event listing. From is inclusive and To exclusive.
type EventFilter struct {
	From      *time.Time
	To        *time.Time
	Search    string
	Limit     int
	NextToken *string
}

// EventPage is one page of an event listing, newest first.
type EventPage struct {
	Events    []EventView
	NextToken *string
}
