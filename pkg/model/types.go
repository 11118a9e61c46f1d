package model

import "github.com/google/uuid"

// MemberID is the type for team member IDs.
type MemberID string

// ProjectID is the type for project IDs.
type ProjectID string

// ImageID is the type for uploaded image IDs.
type ImageID string

// JobID is the type for asynchronous job IDs.
type JobID string

// NewMemberID returns a fresh team member ID.
func NewMemberID() MemberID { return MemberID(uuid.NewString()) }

// NewProjectID returns a fresh project ID.
func NewProjectID() ProjectID { return ProjectID(uuid.NewString()) }

// NewImageID returns a fresh image ID.
func NewImageID() ImageID { return ImageID(uuid.NewString()) }

// NewJobID returns a fresh job ID.
func NewJobID() JobID { return JobID(uuid.NewString()) }
