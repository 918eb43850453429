package preferences

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanderlist/wanderlist/internal/models"
)

var (
	ErrConstraintViolation = errors.New("preference constraint violation")
)

// Repository persists at most one Preference per user.
type Repository interface {
	// Get returns nil, nil when the user has no preference yet.
	Get(ctx context.Context, userID uint) (*Preference, error)
	// Upsert inserts or overwrites the user's preference atomically.
	Upsert(ctx context.Context, p *Preference) error
}

// GormRepository stores preferences in the preferences and preference_tags tables.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Get(ctx context.Context, userID uint) (*Preference, error) {
	var rec models.PreferenceRecord
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("user_id = ?", userID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromRecord(&rec), nil
}

func (r *GormRepository) Upsert(ctx context.Context, p *Preference) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.PreferenceRecord{
			UserID:      p.UserID,
			Destination: p.Destination,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		// the unique index on user_id turns a concurrent second insert into an update
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"destination", "updated_at"}),
		}).Create(&rec).Error; err != nil {
			return err
		}
		var stored models.PreferenceRecord
		if err := tx.Select("id").Where("user_id = ?", p.UserID).First(&stored).Error; err != nil {
			return err
		}
		if err := tx.Where("preference_id = ?", stored.ID).Delete(&models.PreferenceTag{}).Error; err != nil {
			return err
		}
		tags := toTags(stored.ID, p)
		if len(tags) == 0 {
			return nil
		}
		return tx.Create(&tags).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		return fmt.Errorf("upsert preference: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

func toTags(prefID uint, p *Preference) []models.PreferenceTag {
	tags := make([]models.PreferenceTag, 0, len(p.Interests)+len(p.Food))
	for i, t := range p.Interests {
		tags = append(tags, models.PreferenceTag{PreferenceID: prefID, Kind: models.TagKindInterest, Tag: t, Position: i})
	}
	for i, t := range p.Food {
		tags = append(tags, models.PreferenceTag{PreferenceID: prefID, Kind: models.TagKindFood, Tag: t, Position: i})
	}
	return tags
}

func fromRecord(rec *models.PreferenceRecord) *Preference {
	p := &Preference{
		UserID:      rec.UserID,
		Destination: rec.Destination,
		UpdatedAt:   rec.UpdatedAt,
	}
	tags := append([]models.PreferenceTag(nil), rec.Tags...)
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Position < tags[j].Position })
	for _, t := range tags {
		switch t.Kind {
		case models.TagKindInterest:
			p.Interests = append(p.Interests, t.Tag)
		case models.TagKindFood:
			p.Food = append(p.Food, t.Tag)
		}
	}
	return p
}

// MemoryRepository is an in-process Repository used for tests and local runs
// without a database.
type MemoryRepository struct {
	mu    sync.Mutex
	store map[uint]Preference
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[uint]Preference)}
}

func (m *MemoryRepository) Get(ctx context.Context, userID uint) (*Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[userID]
	if !ok {
		return nil, nil
	}
	return clone(&p), nil
}

func (m *MemoryRepository) Upsert(ctx context.Context, p *Preference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	m.store[p.UserID] = *clone(p)
	return nil
}

func clone(p *Preference) *Preference {
	c := *p
	c.Interests = append([]string(nil), p.Interests...)
	c.Food = append([]string(nil), p.Food...)
	return &c
}
