package service

import "github.com/om-chauahan/eventhub/internal/models"

// CanCreateEvents reports whether r may create events and list the ones it organizes.
func CanCreateEvents(r models.Requester) bool {
	return r.Role == models.RoleOrganizer || r.Role == models.RoleAdmin
}

// CanManageEvent reports whether r may update, delete or restyle e.
func CanManageEvent(r models.Requester, e *models.Event) bool {
	return r.Role == models.RoleAdmin || e.OrganizerID == r.ID
}

func IsAdmin(r models.Requester) bool {
	return r.Role == models.RoleAdmin
}
