package domain

import "math"

// Star bounds for a single rating.
const (
	MinStars = 1
	MaxStars = 5
)

// UnratedBucket is the floor average of a product nobody has rated. It lies
// outside [MinStars, MaxStars] so it never equals a requested bucket.
const UnratedBucket = -1

// Rating is one user's score for a product. A product holds at most one
// rating per user.
type Rating struct {
	Star     int    `json:"star"`
	PostedBy string `json:"posted_by"`
}

// FloorAverage returns floor(mean(star)) over ratings, or UnratedBucket when
// there are none.
func FloorAverage(ratings []Rating) int {
	if len(ratings) == 0 {
		return UnratedBucket
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Star
	}
	return int(math.Floor(float64(sum) / float64(len(ratings))))
}

// UpsertRating sets userID's star on ratings in place, appending a new entry
// when the user has not rated yet. Earlier entries keep their order.
func UpsertRating(ratings []Rating, userID string, star int) []Rating {
	for i := range ratings {
		if ratings[i].PostedBy == userID {
			ratings[i].Star = star
			return ratings
		}
	}
	return append(ratings, Rating{Star: star, PostedBy: userID})
}

// ValidStar reports whether star is an acceptable rating value.
func ValidStar(star int) bool {
	return star >= MinStars && star <= MaxStars
}
