package model

import "time"

// Project is a folder of renders. The ID is system generated and immutable
// for the project's lifetime; the name is mutable but never empty after
// trimming.
type Project struct {
	ID        ProjectID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// Renders is ordered most-recent-first.
	Renders []ImageRef `json:"renders"`
	// Collaborators holds the emails a share grant was recorded for. The
	// actual permission grant is delivered by the identity collaborator.
	Collaborators []string `json:"collaborators,omitempty"`
}
