package store

import (
	"time"

	"gorm.io/datatypes"
)

// Turn is one message inside a conversation. A user turn and the
// assistant reply that answers it share the same ID so the client can
// correlate them.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation keeps its full turn history as a JSON document, so an
// append is a whole-row update (last write wins, see Repo.UpsertConversation).
type Conversation struct {
	ID        string                     `gorm:"primaryKey;size:26" json:"id"`
	StudentID string                     `gorm:"size:36;index;not null" json:"-"`
	Title     string                     `gorm:"size:255;not null" json:"title"`
	Turns     datatypes.JSONSlice[Turn]  `json:"turns"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

func (Conversation) TableName() string { return "assistant_conversations" }

type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"` // 1..5
}

type Student struct {
	ID          string                     `gorm:"primaryKey;size:36" json:"id"`
	Name        string                     `gorm:"size:128;not null" json:"name"`
	Email       string                     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	BranchField string                     `gorm:"size:128" json:"branch_field"`
	CourseName  string                     `gorm:"size:128" json:"course_name"`
	University  string                     `gorm:"size:255" json:"university"`
	Skills      datatypes.JSONSlice[Skill] `json:"skills"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

func (Student) TableName() string { return "students" }

type AssessmentResult struct {
	ID             uint64                      `gorm:"primaryKey;autoIncrement" json:"-"`
	StudentID      string                      `gorm:"size:36;uniqueIndex;not null" json:"-"`
	RiasecCode     string                      `gorm:"size:8" json:"riasec_code"`
	CareerClusters datatypes.JSONSlice[string] `json:"career_clusters"`
	Strengths      datatypes.JSONSlice[string] `json:"strengths"`
	CompletedAt    time.Time                   `json:"completed_at"`
}

func (AssessmentResult) TableName() string { return "assessment_results" }

type CareerProgress struct {
	ID                    uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	StudentID             string    `gorm:"size:36;uniqueIndex;not null" json:"-"`
	ApplicationsSubmitted int       `json:"applications_submitted"`
	SavedOpportunities    int       `json:"saved_opportunities"`
	CoursesEnrolled       int       `json:"courses_enrolled"`
	CoursesCompleted      int       `json:"courses_completed"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (CareerProgress) TableName() string { return "career_progress" }

type Opportunity struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Company     string                      `gorm:"size:255" json:"company"`
	Location    string                      `gorm:"size:128" json:"location"`
	SkillsReq   datatypes.JSONSlice[string] `json:"skills_required"`
	SalaryRange string                      `gorm:"size:64" json:"salary_range"`
	Active      bool                        `gorm:"index;default:true" json:"active"`
	CreatedAt   time.Time                   `json:"created_at"`
}

func (Opportunity) TableName() string { return "opportunities" }
