package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/common"
	"gorm.io/gorm"
)

// ErrNotFound is returned for any lookup that matched no row.
var ErrNotFound = errors.New("record not found")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// AutoMigrate creates the tables the assistant reads and writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Student{},
		&AssessmentResult{},
		&CareerProgress{},
		&Opportunity{},
		&Conversation{},
	)
}

func (r *Repo) GetProfile(ctx context.Context, studentID string) (*Student, error) {
	var s Student
	if err := r.db.WithContext(ctx).First(&s, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) GetAssessment(ctx context.Context, studentID string) (*AssessmentResult, error) {
	var a AssessmentResult
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) GetProgress(ctx context.Context, studentID string) (*CareerProgress, error) {
	var p CareerProgress
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListOpportunities returns up to limit active listings, newest first.
func (r *Repo) ListOpportunities(ctx context.Context, limit int) ([]Opportunity, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var out []Opportunity
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetConversation(ctx context.Context, id, studentID string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", id, studentID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListConversations returns id/title/timestamps (no turn bodies),
// most recently updated first.
func (r *Repo) ListConversations(ctx context.Context, studentID string, limit int) ([]Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []Conversation
	if err := r.db.WithContext(ctx).
		Select("id", "student_id", "title", "created_at", "updated_at").
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertConversation writes the full turn document in one statement.
// With no id it creates the row (assigning a ULID); with an id it
// replaces the stored turns. Last write wins; there is no
// optimistic-concurrency check on concurrent appends to the same
// conversation.
func (r *Repo) UpsertConversation(ctx context.Context, c *Conversation) error {
	if len(c.Turns) == 0 {
		return fmt.Errorf("refusing to persist conversation with no turns")
	}
	if c.ID == "" {
		id, err := common.NewULID()
		if err != nil {
			return err
		}
		c.ID = id
		return r.db.WithContext(ctx).Create(c).Error
	}

	res := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ? AND student_id = ?", c.ID, c.StudentID).
		Updates(map[string]any{
			"turns":      c.Turns,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
