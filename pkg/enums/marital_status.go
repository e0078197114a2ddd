package enums

import (
	"fmt"
	"slices"
)

type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "single"
	MaritalStatusMarried  MaritalStatus = "married"
	MaritalStatusDivorced MaritalStatus = "divorced"
	MaritalStatusWidowed  MaritalStatus = "widowed"
)

var validMaritalStatuses = []MaritalStatus{
	MaritalStatusSingle,
	MaritalStatusMarried,
	MaritalStatusDivorced,
	MaritalStatusWidowed,
}

func (m MaritalStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaritalStatus.
func (m MaritalStatus) IsValid() bool {
	for _, candidate := range validMaritalStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaritalStatus converts raw input into a MaritalStatus.
func ParseMaritalStatus(value string) (MaritalStatus, error) {
	for _, candidate := range validMaritalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid marital status %q", value)
}

// MaritalStatuses returns every known marital status.
func MaritalStatuses() []MaritalStatus {
	return slices.Clone(validMaritalStatuses)
}
