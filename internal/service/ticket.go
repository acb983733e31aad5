package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const ticketPrefix = "TKT-"

// NewTicketID returns a unique, time-ordered ticket id such as
// TKT-01920C5E-7A1B-7C3D-9E4F-0123456789AB.
func NewTicketID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uuid v7: %w", err)
	}
	return ticketPrefix + strings.ToUpper(id.String()), nil
}
