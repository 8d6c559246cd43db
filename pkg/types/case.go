package types

import "time"

// Case types assigned by the migration classifier. A case created directly
// may carry any free-form type; these are the categories the keyword
// classifier can produce.
const (
	CaseTypeInheritance    = "inheritance"
	CaseTypeFamilyStatus   = "family_status"
	CaseTypeCommercial     = "commercial"
	CaseTypeCriminal       = "criminal"
	CaseTypeRealEstate     = "real_estate"
	CaseTypeLabor          = "labor"
	CaseTypeAdministrative = "administrative"
	CaseTypeRental         = "rental"
	CaseTypeGeneral        = "general"
)

// Case complexity levels.
const (
	ComplexityBasic        = "basic"
	ComplexityIntermediate = "intermediate"
	ComplexityAdvanced     = "advanced"
)

// Case statuses.
const (
	CaseStatusActive    = "active"
	CaseStatusArchived  = "archived"
	CaseStatusCompleted = "completed"
)

// validCaseStatuses is the set of recognized case status values.
var validCaseStatuses = map[string]bool{
	CaseStatusActive:    true,
	CaseStatusArchived:  true,
	CaseStatusCompleted: true,
}

// Case represents a legal case, the root entity of the store. Deleting a
// case cascades to its stages, comments, tasks, exports, and search index
// entries; analytics events recorded against it survive as audit history.
type Case struct {
	CaseID      string    // UUID v7, generated on creation.
	Name        string    // Human-readable name (required, non-empty).
	CaseType    string    // Legal category (one of the CaseType constants, or free-form).
	PartyRole   string    // Role of the represented party (plaintiff, defendant, ...). Optional.
	Complexity  string    // One of the Complexity constants.
	Status      string    // One of the CaseStatus constants.
	Tags        []string  // Free-form labels; migrated cases carry "migrated" and "legacy".
	Description string    // Optional.
	CreatedAt   time.Time // Timestamp of creation.
	UpdatedAt   time.Time // Timestamp of last modification.
}

// SetStatus sets the case status. Returns ErrInvalidStatus if the value is
// not recognized. Idempotent.
func (c *Case) SetStatus(status string) error {
	if !validCaseStatuses[status] {
		return ErrInvalidStatus
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// HasTag reports whether the case carries the given tag.
func (c *Case) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
