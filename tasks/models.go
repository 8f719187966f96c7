package tasks

import "time"

// Task is one pending gloss-embedding job for a word in a wordlist.
type Task struct {
	Wordlist  string
	WordID    int64
	Model     string
	Reason    string
	Attempts  int
	NextRunAt time.Time
	StartedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
