package cron

import (
	"Huddle/internal/job"
	"Huddle/internal/pkg/ratelimit"
	"Huddle/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(schedule string) *Manager {
	return NewCronManager(schedule,
		job.NewReconcileJob(service.NewSessionRegistry()),
		job.NewLimiterSweepJob(ratelimit.NewPool(1, 1, time.Minute)))
}

func TestRegisterJobs(t *testing.T) {
	mgr := newManager("0 */5 * * * *")
	require.NoError(t, mgr.RegisterJobs())
	assert.Equal(t, 2, mgr.Entries())
}

func TestRegisterJobsWithoutReconcile(t *testing.T) {
	mgr := newManager("")
	require.NoError(t, mgr.RegisterJobs())
	assert.Equal(t, 1, mgr.Entries())
}

func TestRegisterJobsRejectsBadSchedule(t *testing.T) {
	assert.Error(t, newManager("every now and then").RegisterJobs())
}
