package service

import "github.com/taskhub/taskhub/store"

// DashboardService produces read-only task counts by status.
type DashboardService struct {
	store *store.Store
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(s *store.Store) *DashboardService {
	return &DashboardService{store: s}
}

// DashboardView aggregates task counts. TotalUsers is nil on the
// caller-scoped view: "not applicable" rather than zero.
type DashboardView struct {
	TotalTasks      int  `json:"totalTasks"`
	CompletedTasks  int  `json:"completedTasks"`
	PendingTasks    int  `json:"pendingTasks"`
	InProgressTasks int  `json:"inProgressTasks"`
	CancelledTasks  int  `json:"cancelledTasks"`
	TotalUsers      *int `json:"totalUsers,omitempty"`
}

// AdminView counts across all tasks and includes the user total.
func (s *DashboardService) AdminView() (*DashboardView, error) {
	v, err := s.counts(nil)
	if err != nil {
		return nil, err
	}
	users, err := s.store.CountUsers()
	if err != nil {
		return nil, err
	}
	v.TotalUsers = &users
	return v, nil
}

// UserView counts only the tasks assigned to the caller. TotalUsers is
// omitted.
func (s *DashboardService) UserView(userID int64) (*DashboardView, error) {
	return s.counts(&userID)
}

func (s *DashboardService) counts(assignedUserID *int64) (*DashboardView, error) {
	byStatus, err := s.store.CountTasksByStatus(assignedUserID)
	if err != nil {
		return nil, err
	}
	v := &DashboardView{
		CompletedTasks:  byStatus[store.StatusCompleted],
		PendingTasks:    byStatus[store.StatusToDo],
		InProgressTasks: byStatus[store.StatusInProgress],
		CancelledTasks:  byStatus[store.StatusCancelled],
	}
	for _, n := range byStatus {
		v.TotalTasks += n
	}
	return v, nil
}
