// Package utils holds small generators shared across core components.
package utils

import (
	"fmt"
	"math/rand"
)

var (
	adjectives = []string{
		"Silent", "Swift", "Shadow", "Crimson", "Iron", "Ghost", "Lone", "Night",
		"Grey", "Hollow", "Quiet", "Last", "Sharp", "Cold", "Final", "Covert",
	}

	nouns = []string{
		"Wolf", "Raven", "Viper", "Falcon", "Fox", "Hunter", "Blade", "Specter",
		"Jackal", "Reaper", "Cipher", "Phantom", "Owl", "Hawk", "Panther", "Asset",
	}
)

// GenerateCodename creates a random player codename in the format
// "<Adjective> <Noun> <3 digit int>", used when a player hasn't set a
// display alias.
func GenerateCodename(r *rand.Rand) string {
	adj := adjectives[r.Intn(len(adjectives))]
	noun := nouns[r.Intn(len(nouns))]
	number := r.Intn(900) + 100 // 3-digit number, 100-999
	return fmt.Sprintf("%s %s %d", adj, noun, number)
}
