package tasks

import "errors"

// Sentinel kinds for task errors.
var (
	ErrEmptyContent  = errors.New("title and feature banks must not be empty")
	ErrInvalidQuota  = errors.New("tier has no daily tasks")
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskCompleted = errors.New("task already completed")
)
