package identity

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// record is one persisted identity. Slot lets several clients share a table.
type record struct {
	Slot     string `gorm:"primaryKey"`
	PlayerID string `gorm:"not null"`
	Name     string `gorm:"not null"`
	Room     string `gorm:"not null"`
}

func (record) TableName() string { return "client_identities" }

// GormStore persists identities through gorm.
type GormStore struct {
	db   *gorm.DB
	slot string
}

// OpenPostgres connects to dsn and migrates the identity table.
func OpenPostgres(dsn, slot string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db, slot)
}

func NewGormStore(db *gorm.DB, slot string) (*GormStore, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate identities: %w", err)
	}
	return &GormStore{db: db, slot: slot}, nil
}

func (g *GormStore) Load(ctx context.Context) (Identity, error) {
	var rec record
	err := g.db.WithContext(ctx).First(&rec, "slot = ?", g.slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	return Identity{PlayerID: rec.PlayerID, Name: rec.Name, Room: rec.Room}, nil
}

func (g *GormStore) Save(ctx context.Context, id Identity) error {
	rec := record{Slot: g.slot, PlayerID: id.PlayerID, Name: id.Name, Room: id.Room}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}

func (g *GormStore) Clear(ctx context.Context) error {
	return g.db.WithContext(ctx).Delete(&record{}, "slot = ?", g.slot).Error
}

// Close releases the underlying connection pool.
func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
