// Package transfer provides JSON snapshot export/import for the three stored
// collections: events, weather_cache and settings.
package transfer

import (
	"time"

	"github.com/olegiv/daylog-go/internal/model"
)

// SnapshotVersion is the current version of the snapshot format.
const SnapshotVersion = "1.0"

// Snapshot is the complete serialized state of a daylog database.
type Snapshot struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Events     []model.Event      `json:"events,omitempty"`
	Weather    []model.WeatherDay `json:"weather,omitempty"`
	Settings   []model.Setting    `json:"settings,omitempty"`
}
