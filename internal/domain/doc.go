// Package domain models Japan Meteorological Agency (JMA) earthquake bulletins.
//
// # Data Source
//
// The JMA publishes a rolling list of recent seismic bulletins at
// https://www.jma.go.jp/bosai/quake/data/list.json. The list is a JSON array of
// flat objects, one per bulletin. Several bulletin kinds share the list; only
// hypocenter/seismic-intensity reports carry a usable hypocenter.
//
// # Feed Conventions
//
// Bulletin kind ("ttl"):
//
//	"震度速報"         intensity-only quick report, no hypocenter
//	"震源に関する情報"   hypocenter only
//	"震源・震度情報"     hypocenter and seismic intensity  ← the kind we keep
//
// Coordinate string ("cod"):
//
//	"<lat><lon><depth>/"  →  e.g. "+36.1+140.7-30000/"
//	lat:   signed, two integer digits plus fraction (degrees)
//	lon:   signed, three integer digits plus fraction (degrees)
//	depth: signed metres relative to sea level, negative = below
//	A trailing slash terminates the string.
//
// Depth conversion:
//
//	depth_km = -0.001 * raw_depth_m   →  "-30000" becomes 30 km below the surface.
//
// Other fields used when present: "eid" (event ID), "at" (origin time, RFC 3339
// with +09:00 offset), "anm" (epicenter area name), "mag" (magnitude as text),
// "maxi" (maximum seismic intensity as text), "ctt" (bulletin issue time,
// yyyyMMddHHmmss in JST). Everything else is ignored.
//
// # Revisions
//
// A revised bulletin keeps its "eid" and gets a new "ctt". [EarthquakeRecord.Key]
// names the event; [EarthquakeRecord.RevisionKey] names one bulletin of it.
//
// # Error Model
//
// Parsing is total: malformed coordinate strings are reported through a
// [Reporter] and the record is dropped. No parse failure becomes a Go error.
package domain
