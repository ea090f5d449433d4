package models

import "testing"

func TestValidJobTransition(t *testing.T) {
	allowed := []struct{ from, to JobStatus }{
		{JobPosted, JobInProgress},
		{JobPosted, JobCancelled},
		{JobInProgress, JobCompleted},
		{JobInProgress, JobCancelled},
	}
	for _, tc := range allowed {
		if !ValidJobTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to JobStatus }{
		{JobPosted, JobCompleted},
		{JobInProgress, JobPosted},
		{JobCompleted, JobPosted},
		{JobCompleted, JobCancelled},
		{JobCancelled, JobPosted},
		{JobCancelled, JobInProgress},
		{JobPosted, JobPosted},
	}
	for _, tc := range denied {
		if ValidJobTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestJobStatusActive(t *testing.T) {
	if !JobPosted.Active() || !JobInProgress.Active() {
		t.Error("posted and in_progress are active statuses")
	}
	if JobCompleted.Active() || JobCancelled.Active() {
		t.Error("completed and cancelled are not active statuses")
	}
}
