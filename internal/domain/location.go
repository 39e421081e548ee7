package domain

type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyModerate Difficulty = "MODERATE"
	DifficultyHard     Difficulty = "HARD"
)

// Location is a curated hiking spot. The catalog is seeded by operators
// and read-only to clients; teams reference locations by id.
type Location struct {
	ID          int32      `json:"id"`
	Name        string     `json:"name"`
	Region      string     `json:"region"`
	Difficulty  Difficulty `json:"difficulty"`
	DistanceKm  float64    `json:"distance_km"`
	ElevationM  int32      `json:"elevation_m"`
	Description string     `json:"description"`
	CoverURL    string     `json:"cover_url"`
	CreatedOn   string     `json:"created_on"`
}
