package models

// CalendarQuery selects the displayed month and an optional navigation step.
type CalendarQuery struct {
	Month     string `form:"month"`
	Direction string `form:"direction"`
}
