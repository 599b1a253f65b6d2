package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"lumira/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&ReadingModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveReading inserts the reading. Inserting an id that already exists is
// not an error: the original row wins and its id is returned.
func (s *GormStore) SaveReading(ctx context.Context, r domain.Reading) (string, error) {
	model, err := toModel(r)
	if err != nil {
		return "", err
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&model)
	if res.Error != nil {
		return "", fmt.Errorf("save reading: %w", res.Error)
	}
	return r.ID, nil
}

// GetReading loads one reading by id.
func (s *GormStore) GetReading(ctx context.Context, id string) (domain.Reading, error) {
	var model ReadingModel
	res := s.db.WithContext(ctx).First(&model, "id = ?", id)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return domain.Reading{}, ErrNotFound
		}
		return domain.Reading{}, fmt.Errorf("get reading: %w", res.Error)
	}
	return fromModel(model)
}

// ListReadingsByOwner returns the owner's readings, newest first.
func (s *GormStore) ListReadingsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Reading, error) {
	var models []ReadingModel
	res := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if res.Error != nil {
		return nil, fmt.Errorf("list readings: %w", res.Error)
	}
	out := make([]domain.Reading, 0, len(models))
	for _, model := range models {
		reading, err := fromModel(model)
		if err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, nil
}

func toModel(r domain.Reading) (ReadingModel, error) {
	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return ReadingModel{}, fmt.Errorf("marshal tags: %w", err)
	}
	return ReadingModel{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Tags:          datatypes.JSON(tags),
		ImageRef:      r.ImageRef,
		NarrativeText: r.NarrativeText,
		AudioURL:      r.AudioURL,
		Visibility:    string(r.Visibility),
		CreatedAt:     r.CreatedAt,
	}, nil
}

func fromModel(m ReadingModel) (domain.Reading, error) {
	var tags domain.ReadingTags
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return domain.Reading{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	return domain.Reading{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		Tags:          tags,
		ImageRef:      m.ImageRef,
		NarrativeText: m.NarrativeText,
		AudioURL:      m.AudioURL,
		Visibility:    domain.Visibility(m.Visibility),
		CreatedAt:     m.CreatedAt,
	}, nil
}
