package models

import "time"

// Actions recorded in the activity log
const (
	ActionRegister       = "REGISTER"
	ActionLogin          = "LOGIN"
	ActionUpload         = "UPLOAD"
	ActionFetchUsers     = "FETCH_USERS"
	ActionApproveUser    = "APPROVE_USER"
	ActionDeleteUser     = "DELETE_USER"
	ActionFetchFiles     = "FETCH_FILES"
	ActionApproveFile    = "APPROVE_FILE"
	ActionDeleteFile     = "DELETE_FILE"
	ActionFetchLogs      = "FETCH_LOGS"
	ActionBackupDatabase = "BACKUP_DATABASE"
	ActionDownloadBackup = "DOWNLOAD_BACKUP"
)

// Outcomes
const (
	ActivitySuccess = "SUCCESS"
	ActivityFail    = "FAIL"
)

// ActivityLog is one append-only audit entry.
type ActivityLog struct {
	ID        int64     `json:"id"`
	UserID    *string   `json:"user_id"`
	UserName  *string   `json:"user_name"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}

// NewActivity builds an entry for the given actor; actorID may be empty for
// events that happen before authentication.
func NewActivity(actorID, action string, success bool, message string) *ActivityLog {
	entry := &ActivityLog{
		Action:  action,
		Status:  ActivityFail,
		Message: message,
	}
	if success {
		entry.Status = ActivitySuccess
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	return entry
}
