package enums

// DashboardStatus tracks the lifecycle of a user's snapshot computation.
type DashboardStatus string

const (
	DashboardIdle    DashboardStatus = "idle"
	DashboardLoading DashboardStatus = "loading"
	DashboardReady   DashboardStatus = "ready"
	DashboardError   DashboardStatus = "error"
)
