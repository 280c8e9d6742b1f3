package sweep

import (
	"context"
	"time"

	"github.com/xiebiao/circulation/internal/infrastructure/scheduler"
)

// 定时任务名
const (
	JobSweep     = "circulation-sweep"
	JobReminders = "due-reminders"
)

// Jobs 构造定时任务
// spec为空的任务不注册
func Jobs(sweep *RunSweepUseCase, reminders *DueRemindersUseCase, sweepSpec, reminderSpec string) []scheduler.Job {
	var jobs []scheduler.Job
	if sweep != nil && sweepSpec != "" {
		jobs = append(jobs, scheduler.Job{
			Name:    JobSweep,
			Spec:    sweepSpec,
			Timeout: 10 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := sweep.Execute(ctx, RunSweepRequest{})
				return err
			},
		})
	}
	if reminders != nil && reminderSpec != "" {
		jobs = append(jobs, scheduler.Job{
			Name:    JobReminders,
			Spec:    reminderSpec,
			Timeout: 10 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := reminders.Execute(ctx, time.Time{})
				return err
			},
		})
	}
	return jobs
}
