package pipeline

// workerCount bounds a worker pool: at least one worker, never more than
// there are tasks.
func workerCount(configured, tasks int) int {
	if configured < 1 {
		configured = 1
	}
	if configured > tasks {
		configured = tasks
	}
	return configured
}
