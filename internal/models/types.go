package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicate reports an insert rejected by a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// Account is an administrator identity. PassHash is a bcrypt digest and is
// never serialised.
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is one submitted survey response: four yes/no answers and an
// optional free-text comment.
type Review struct {
	ID        int64     `json:"id"`
	Q1        bool      `json:"q1"`
	Q2        bool      `json:"q2"`
	Q3        bool      `json:"q3"`
	Q4        bool      `json:"q4"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Answers returns q1..q4 in question order.
func (r *Review) Answers() [4]bool {
	return [4]bool{r.Q1, r.Q2, r.Q3, r.Q4}
}

// NewReview carries validated input for a review insert.
type NewReview struct {
	Q1, Q2, Q3, Q4 bool
	Comment        *string
}

// ReviewFilter restricts a count to rows whose answers match every non-nil
// field. The zero value matches all rows.
type ReviewFilter struct {
	Q1, Q2, Q3, Q4 *bool
}

// Question returns a filter that matches rows where question n (1..4) equals v.
// It panics for any other n.
func Question(n int, v bool) ReviewFilter {
	var f ReviewFilter
	switch n {
	case 1:
		f.Q1 = &v
	case 2:
		f.Q2 = &v
	case 3:
		f.Q3 = &v
	case 4:
		f.Q4 = &v
	default:
		panic(fmt.Sprintf("models: question %d out of range 1..4", n))
	}
	return f
}

// Stats holds the aggregate counts shown on the dashboard. Percentages are
// left to the client.
type Stats struct {
	Total int `json:"total"`
	Q1    int `json:"q1"`
	Q2    int `json:"q2"`
	Q3    int `json:"q3"`
	Q4    int `json:"q4"`
}
