// Package profile defines usage profiles and the quota rule applied to
// background removal.
package profile

import "time"

// Profile tracks how many images a visitor has produced and whether they paid.
type Profile struct {
	ID              string    `json:"id"`
	ImagesGenerated int       `json:"imagesGenerated"`
	Paid            bool      `json:"paid"`
	CreatedAt       time.Time `json:"createdAt"`
	Changed         time.Time `json:"changed"`
}

// CanGenerate reports whether the profile may start another removal given
// the free allowance.
func (p *Profile) CanGenerate(freeLimit int) bool {
	if p == nil {
		return true
	}
	return p.Paid || p.ImagesGenerated < freeLimit
}

// Remaining is the number of free removals left, or -1 for paid profiles.
func (p *Profile) Remaining(freeLimit int) int {
	if p == nil {
		return freeLimit
	}
	if p.Paid {
		return -1
	}
	if left := freeLimit - p.ImagesGenerated; left > 0 {
		return left
	}
	return 0
}

// Repository defines the operations for persisting Profile entities.
type Repository interface {
	FindByID(id string) (*Profile, error)
	Ensure(id string) (*Profile, error)
	IncrementImagesGenerated(id string) error
	SetPaid(id string, paid bool) error
}
