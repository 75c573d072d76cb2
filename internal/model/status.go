package model

// TaskStatus represents the status of a download item
type TaskStatus string

const (
	// TaskStatusPending means the item is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusResolving means metadata is being fetched
	TaskStatusResolving TaskStatus = "Resolving"

	// TaskStatusDownloading means a stream transfer is in progress
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusMerging means video and audio are being multiplexed
	TaskStatusMerging TaskStatus = "Merging"

	// TaskStatusCompleted means the item finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusSkipped means the item was private or unavailable
	TaskStatusSkipped TaskStatus = "Skipped"

	// TaskStatusCancelled means the user aborted the request
	TaskStatusCancelled TaskStatus = "Cancelled"

	// TaskStatusError means the item failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the item is being worked on
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusResolving || ts == TaskStatusDownloading || ts == TaskStatusMerging
}

// IsFinished returns true if the item reached a terminal state
func (ts TaskStatus) IsFinished() bool {
	switch ts {
	case TaskStatusCompleted, TaskStatusSkipped, TaskStatusCancelled, TaskStatusError:
		return true
	}
	return false
}
