package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/promptparty/backend/internal/game"
)

type roomSnapshot struct {
	ID    string `gorm:"primaryKey"`
	State string `gorm:"type:jsonb"`
}

func (roomSnapshot) TableName() string { return "room_snapshots" }

// PostgresStore holds one row per room. Save replaces all rows in a single
// transaction so the table always reflects exactly one full snapshot.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&roomSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate room_snapshots: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Load(ctx context.Context) (map[string]game.State, error) {
	var rows []roomSnapshot
	if err := p.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load room snapshots: %w", err)
	}

	rooms := make(map[string]game.State, len(rows))
	for _, row := range rows {
		var state game.State
		if err := json.Unmarshal([]byte(row.State), &state); err != nil {
			return nil, fmt.Errorf("decode room %q: %w", row.ID, err)
		}
		rooms[row.ID] = state
	}
	return rooms, nil
}

func (p *PostgresStore) Save(ctx context.Context, rooms map[string]game.State) error {
	rows := make([]roomSnapshot, 0, len(rooms))
	for id, state := range rooms {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode room %q: %w", id, err)
		}
		rows = append(rows, roomSnapshot{ID: id, State: string(data)})
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&roomSnapshot{}).Error; err != nil {
			return fmt.Errorf("clear room snapshots: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("write room snapshots: %w", err)
		}
		return nil
	})
}
