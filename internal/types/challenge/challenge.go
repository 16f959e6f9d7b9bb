package challenge

import "time"

type TaskType string

const (
	TaskDaily  TaskType = "daily"
	TaskUnique TaskType = "unique"
)

// ParseTaskType accepts only the two literal task types.
func ParseTaskType(s string) (TaskType, bool) {
	switch TaskType(s) {
	case TaskDaily:
		return TaskDaily, true
	case TaskUnique:
		return TaskUnique, true
	}
	return "", false
}

type Task struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type Challenge struct {
	ID          int64     `json:"id" db:"id"`
	CategoryID  int64     `json:"categoryId" db:"category_id"`
	Title       string    `json:"title" db:"title"`
	Tagline     string    `json:"tagline" db:"tagline"`
	Description string    `json:"description" db:"description"`
	Days        int       `json:"days" db:"days"`
	CardImage   string    `json:"cardImage" db:"card_image"`
	DailyTasks  []Task    `json:"dailyTasks" db:"daily_tasks"`
	UniqueTasks []Task    `json:"uniqueTasks" db:"unique_tasks"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Tasks returns the list matching the task type.
func (c *Challenge) Tasks(t TaskType) []Task {
	if t == TaskUnique {
		return c.UniqueTasks
	}
	return c.DailyTasks
}

func (c *Challenge) HasTask(t TaskType, id int) bool {
	for _, task := range c.Tasks(t) {
		if task.ID == id {
			return true
		}
	}
	return false
}
