package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// HypocenterIntensityKind is the "ttl" value of hypocenter/seismic-intensity bulletins.
const HypocenterIntensityKind = "震源・震度情報"

// issuedAtLayout is the "ctt" timestamp format, in Japan Standard Time.
const issuedAtLayout = "20060102150405"

var jst = time.FixedZone("JST", 9*60*60)

// FeedRecord is one entry of the JMA list feed. Only Kind and Coordinates are
// required; the rest are carried through when present.
type FeedRecord struct {
	Kind         string `json:"ttl"`
	Coordinates  string `json:"cod"`
	EventID      string `json:"eid,omitempty"`
	OriginTime   string `json:"at,omitempty"`
	Area         string `json:"anm,omitempty"`
	Magnitude    string `json:"mag,omitempty"`
	MaxIntensity string `json:"maxi,omitempty"`
	IssuedAt     string `json:"ctt,omitempty"`
}

// CoordinateTriple is a parsed coordinate string. RawDepth is in metres as
// encoded in the feed (negative = below sea level).
type CoordinateTriple struct {
	Latitude  float64
	Longitude float64
	RawDepth  float64
}

// DepthKm converts the raw depth to kilometres below the surface.
func (c CoordinateTriple) DepthKm() float64 {
	return -0.001 * c.RawDepth
}

// EarthquakeRecord is a located earthquake ready for downstream use.
type EarthquakeRecord struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Depth     float64 `json:"depth_km" yaml:"depth_km"`

	EventID      string    `json:"event_id,omitempty" yaml:"event_id,omitempty"`
	OriginTime   time.Time `json:"origin_time,omitempty" yaml:"origin_time,omitempty"`
	Area         string    `json:"area,omitempty" yaml:"area,omitempty"`
	Magnitude    string    `json:"magnitude,omitempty" yaml:"magnitude,omitempty"`
	MaxIntensity string    `json:"max_intensity,omitempty" yaml:"max_intensity,omitempty"`
	IssuedAt     time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	FetchedAt    time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// NewEarthquakeRecord builds a record from a parsed triple and the feed entry it
// came from. Unparseable origin or issue times are left zero.
func NewEarthquakeRecord(c CoordinateTriple, rec FeedRecord) EarthquakeRecord {
	var origin, issued time.Time
	if rec.OriginTime != "" {
		if t, err := time.Parse(time.RFC3339, rec.OriginTime); err == nil {
			origin = t
		}
	}
	if rec.IssuedAt != "" {
		if t, err := time.ParseInLocation(issuedAtLayout, rec.IssuedAt, jst); err == nil {
			issued = t
		}
	}
	return EarthquakeRecord{
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		Depth:        c.DepthKm(),
		EventID:      rec.EventID,
		OriginTime:   origin,
		Area:         rec.Area,
		Magnitude:    rec.Magnitude,
		MaxIntensity: rec.MaxIntensity,
		IssuedAt:     issued,
		FetchedAt:    clock.Now(),
	}
}

// Key identifies the earthquake. All bulletins for one event share it, so it is
// the Kafka message key. The JMA event ID is used when present; otherwise a
// deterministic hash of the location and origin time.
func (r EarthquakeRecord) Key() string {
	if r.EventID != "" {
		return r.EventID
	}
	return "quake-" + shortHash(fmt.Sprintf("%.4f|%.4f|%.3f|%s", r.Latitude, r.Longitude, r.Depth, r.OriginTime.UTC().Format(time.RFC3339)))
}

// RevisionKey identifies one bulletin of an earthquake. JMA reissues a bulletin
// under the same event ID when the hypocenter or intensity is revised; each
// revision gets a distinct key. The issue time is used when present, otherwise
// a hash of the reported values.
func (r EarthquakeRecord) RevisionKey() string {
	if !r.IssuedAt.IsZero() {
		return r.Key() + "@" + r.IssuedAt.In(jst).Format(issuedAtLayout)
	}
	return r.Key() + "@" + shortHash(fmt.Sprintf("%.4f|%.4f|%.3f|%s|%s", r.Latitude, r.Longitude, r.Depth, r.Magnitude, r.MaxIntensity))
}

func shortHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
