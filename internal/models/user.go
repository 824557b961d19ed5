package models

import "strings"

// Role separates console operators from learners.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Capability is a single console permission carried in access tokens.
type Capability string

const (
	CapabilityManageStudents Capability = "manageStudents"
	CapabilityManageBranding Capability = "manageBranding"
	CapabilityManageSite     Capability = "manageSite"
)

// AllCapabilities lists every capability a console operator can hold.
var AllCapabilities = []Capability{CapabilityManageStudents, CapabilityManageBranding, CapabilityManageSite}

// ValidCapability reports whether c is a known capability.
func ValidCapability(c Capability) bool {
	for _, known := range AllCapabilities {
		if known == c {
			return true
		}
	}
	return false
}

// Mark is one recorded exam result.
type Mark struct {
	Label string `json:"label"`
	Score int    `json:"score"`
	Date  string `json:"date"`
}

// User is the document stored at users/<indexNumber>.
type User struct {
	IndexNumber   string         `json:"indexNumber"`
	Name          string         `json:"name"`
	Contact       string         `json:"contact"`
	PasswordHash  string         `json:"passwordHash"`
	School        string         `json:"school"`
	Birthday      string         `json:"birthday"`
	ExamYear      string         `json:"examYear"`
	Role          Role           `json:"role"`
	Capabilities  []Capability   `json:"capabilities,omitempty"`
	ActiveCourses []string       `json:"activeCourses"`
	Marks         []Mark         `json:"marks"`
	WatchTime     map[string]int `json:"watchTime"`
}

// HasCapability reports whether the user holds c.
func (u *User) HasCapability(c Capability) bool {
	for _, held := range u.Capabilities {
		if held == c {
			return true
		}
	}
	return false
}

// HasCourse reports whether courseID is in the user's active courses.
func (u *User) HasCourse(courseID string) bool {
	for _, id := range u.ActiveCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// Public strips the password hash before the user leaves the API.
func (u User) Public() UserView {
	return UserView{
		IndexNumber:   u.IndexNumber,
		Name:          u.Name,
		Contact:       u.Contact,
		School:        u.School,
		Birthday:      u.Birthday,
		ExamYear:      u.ExamYear,
		Role:          u.Role,
		Capabilities:  u.Capabilities,
		ActiveCourses: u.ActiveCourses,
		Marks:         u.Marks,
		WatchTime:     u.WatchTime,
	}
}

// UserView is the response shape of a user.
type UserView struct {
	IndexNumber   string         `json:"indexNumber"`
	Name          string         `json:"name"`
	Contact       string         `json:"contact"`
	School        string         `json:"school"`
	Birthday      string         `json:"birthday"`
	ExamYear      string         `json:"examYear"`
	Role          Role           `json:"role"`
	Capabilities  []Capability   `json:"capabilities,omitempty"`
	ActiveCourses []string       `json:"activeCourses"`
	Marks         []Mark         `json:"marks"`
	WatchTime     map[string]int `json:"watchTime"`
}

// Profile holds the caller-supplied fields of a new registration.
type Profile struct {
	Name         string
	Contact      string
	PasswordHash string
	School       string
	Birthday     string
	ExamYear     string
}

// Pagination contains list metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NormalizeContact is the canonical form a contact is stored and looked up under.
func NormalizeContact(contact string) string {
	return strings.TrimSpace(contact)
}
