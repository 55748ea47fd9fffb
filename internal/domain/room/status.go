package room

import "fmt"

// Status represents the current state of a room.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusCleaning    Status = "cleaning"
)

var knownStatuses = map[Status]struct{}{
	StatusAvailable:   {},
	StatusOccupied:    {},
	StatusMaintenance: {},
	StatusCleaning:    {},
}

// IsValid returns true if the status is a recognized room status.
func (s Status) IsValid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid room status: %s", s)
	}
	return status, nil
}
