package repositories

import (
	"fieldops/internal/database"
)

type Repository struct {
	Resource       ResourceRepository
	Shift          ShiftRepository
	Checklist      ChecklistRepository
	Pendency       PendencyRepository
	Reconciliation ReconciliationRepository
}

func New(db database.DB) Repository {
	return Repository{
		Resource:       NewResourceRepository(db),
		Shift:          NewShiftRepository(db), // Shift repo needs cache for the read endpoints
		Checklist:      NewChecklistRepository(db),
		Pendency:       NewPendencyRepository(db),
		Reconciliation: NewReconciliationRepository(db),
	}
}
