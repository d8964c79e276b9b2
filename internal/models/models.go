package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TeamInfo stores NBA team reference data.
type TeamInfo struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Abbr      string `gorm:"uniqueIndex;size:8" json:"abbr"`
	Name      string `gorm:"size:64" json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrackedPlayer is a player whose game log is refreshed in the background.
type TrackedPlayer struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PlayerID    int        `gorm:"uniqueIndex" json:"player_id"`
	Name        string     `gorm:"size:128" json:"name"`
	TeamAbbr    string     `gorm:"size:8" json:"team_abbr"`
	Active      bool       `gorm:"default:true" json:"active"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SelectionState persists a client's dashboard selections keyed by owner.
type SelectionState struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OwnerKey  string         `gorm:"uniqueIndex;size:128" json:"owner_key"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AutoMigrate runs schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&TeamInfo{},
		&TrackedPlayer{},
		&SelectionState{},
	)
}

// GetSelectionByOwner loads the selection state for an owner key.
func GetSelectionByOwner(db *gorm.DB, ownerKey string) (*SelectionState, error) {
	var state SelectionState
	if err := db.Where("owner_key = ?", ownerKey).First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// UpsertSelection creates or replaces the selection payload for an owner key.
func UpsertSelection(db *gorm.DB, ownerKey string, payload datatypes.JSON) (*SelectionState, error) {
	var state SelectionState
	err := db.Where("owner_key = ?", ownerKey).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		state = SelectionState{OwnerKey: ownerKey, Payload: payload}
		if err := db.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	state.Payload = payload
	if err := db.Save(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// ActiveTrackedPlayers lists players flagged for background refresh.
func ActiveTrackedPlayers(db *gorm.DB) ([]TrackedPlayer, error) {
	var players []TrackedPlayer
	if err := db.Where("active = ?", true).Order("id asc").Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// UpsertTrackedPlayer inserts a player into the tracking table or reactivates it.
func UpsertTrackedPlayer(db *gorm.DB, playerID int, name, teamAbbr string) (*TrackedPlayer, error) {
	var tp TrackedPlayer
	err := db.Where("player_id = ?", playerID).First(&tp).Error
	if err == gorm.ErrRecordNotFound {
		tp = TrackedPlayer{PlayerID: playerID, Name: name, TeamAbbr: teamAbbr, Active: true}
		if err := db.Create(&tp).Error; err != nil {
			return nil, err
		}
		return &tp, nil
	}
	if err != nil {
		return nil, err
	}
	tp.Name = name
	tp.TeamAbbr = teamAbbr
	tp.Active = true
	if err := db.Save(&tp).Error; err != nil {
		return nil, err
	}
	return &tp, nil
}

// MarkPlayerFetched records a successful background fetch.
func MarkPlayerFetched(db *gorm.DB, playerID int, at time.Time) error {
	return db.Model(&TrackedPlayer{}).
		Where("player_id = ?", playerID).
		Update("last_fetched", at).Error
}

// SeedTeams inserts any missing team reference rows.
func SeedTeams(db *gorm.DB, teams map[string]string) error {
	for abbr, name := range teams {
		var existing TeamInfo
		err := db.Where("abbr = ?", abbr).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&TeamInfo{Abbr: abbr, Name: name}).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
