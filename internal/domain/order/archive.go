package order

import (
	"fmt"
	"time"

	"github.com/shopadmin/backend/internal/domain/shared"
)

// ArchiveKind selects which archive collection a terminal order moves to
type ArchiveKind string

const (
	ArchiveCancelled ArchiveKind = "cancelled"
	ArchiveCompleted ArchiveKind = "completed"
)

// ArchiveKinds returns both archive kinds
func ArchiveKinds() []ArchiveKind {
	return []ArchiveKind{ArchiveCancelled, ArchiveCompleted}
}

// ArchiveKindFor returns the archive kind for a terminal status
func ArchiveKindFor(status Status) (ArchiveKind, error) {
	switch status {
	case StatusCancelled:
		return ArchiveCancelled, nil
	case StatusCompleted:
		return ArchiveCompleted, nil
	}
	return "", shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Only completed or cancelled orders can be archived, order is %s", status))
}

// Status returns the status every order in this archive reports
func (k ArchiveKind) Status() Status {
	if k == ArchiveCancelled {
		return StatusCancelled
	}
	return StatusCompleted
}

// IsValid returns true for the two known kinds
func (k ArchiveKind) IsValid() bool {
	return k == ArchiveCancelled || k == ArchiveCompleted
}

// ArchivedOrder is a full copy of a live order stored in an archive collection.
// Its document id is the original order id.
type ArchivedOrder struct {
	Order
	Kind       ArchiveKind
	UserName   string
	UserEmail  string
	ArchivedAt *time.Time
}

// NewArchivedOrder builds the archive copy of o. The order must be terminal.
func NewArchivedOrder(o *Order, owner Owner, at time.Time) (*ArchivedOrder, error) {
	kind, err := o.ArchiveKind()
	if err != nil {
		return nil, err
	}

	copied := *o
	copied.Fields = cloneFields(o.Fields)
	copied.Products = append([]LineItem(nil), o.Products...)
	copied.Status = kind.Status()

	archivedAt := at
	return &ArchivedOrder{
		Order:      copied,
		Kind:       kind,
		UserName:   owner.DisplayName(),
		UserEmail:  owner.DisplayEmail(),
		ArchivedAt: &archivedAt,
	}, nil
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
