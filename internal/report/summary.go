package report

// PhilosopherStats aggregates one philosopher's activity over the whole run.
type PhilosopherStats struct {
	ID         int    `json:"id"`
	Meals      int    `json:"meals"`
	Sleeps     int    `json:"sleeps"`
	Thinks     int    `json:"thinks"`
	Died       bool   `json:"died"`
	DiedAt     *int64 `json:"died_at,omitempty"`
	ReachedCap bool   `json:"reached_cap"`
}

// Summary holds the aggregate verdict for one verified run.
type Summary struct {
	Clean            bool               `json:"clean"`
	FatalCount       int                `json:"fatal_count"`
	WarningCount     int                `json:"warning_count"`
	PhilosopherCount int                `json:"philosopher_count"`
	EventCount       int                `json:"event_count"`
	FirstDeath       *int64             `json:"first_death,omitempty"`
	AllFed           bool               `json:"all_fed"`
	LastTimestamp    int64              `json:"last_timestamp"`
	Philosophers     []PhilosopherStats `json:"philosophers"`
}
