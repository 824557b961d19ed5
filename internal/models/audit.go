package models

import "time"

// Audited console actions.
const (
	AuditActionLogin         = "LOGIN"
	AuditActionLogout        = "LOGOUT"
	AuditActionRegister      = "REGISTER"
	AuditActionUserUpdate    = "USER_UPDATE"
	AuditActionPasswordReset = "PASSWORD_RESET"
	AuditActionSettingsSave  = "SETTINGS_SAVE"
	AuditActionAssetUpload   = "ASSET_UPLOAD"
	AuditActionCoursesSave   = "COURSES_SAVE"
	AuditActionExport        = "EXPORT"
)

// AuditLog is stored in the audit_logs collection.
type AuditLog struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
