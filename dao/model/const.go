// Constants matching the enum columns in the database.
package model

// User role in the platform
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Issue priority
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Issue type
type IssueType string

const (
	IssueTypeTask  IssueType = "TASK"
	IssueTypeBug   IssueType = "BUG"
	IssueTypeStory IssueType = "STORY"
	IssueTypeEpic  IssueType = "EPIC"
)

// Issue status
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "TODO"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusDone       IssueStatus = "DONE"
)

// System setting keys
const (
	SettingSiteTitle     = "siteTitle"
	SettingDashboardName = "dashboardName"
	SettingDashboardLogo = "dashboardLogo"
)

// System setting defaults, returned when the row does not exist yet.
const (
	DefaultSiteTitle     = "Project Management System"
	DefaultDashboardName = "ProjectManager"
	DefaultDashboardLogo = "P"
)
