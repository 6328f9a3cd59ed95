package probe

import "github.com/google/uuid"

// generateGameIDs returns n fresh game ids. The mock provider derives a
// stable matchup from any id, so random ids exercise new matchups each run.
func generateGameIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}
